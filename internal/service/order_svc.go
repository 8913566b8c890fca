package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"allegro_dev_v1_202608/internal/api/dto"
	"allegro_dev_v1_202608/internal/model"
	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/pkg/allegro"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 事件流单页大小
const eventPageSize = 100

// 订单摄取错误
var (
	ErrNoCredential = errors.New("该账号没有可用的 access token，请先完成授权")
)

// ==================== OrderService ====================

// OrderService 订单摄取与查询服务
type OrderService struct {
	credRepo     repository.CredentialRepository
	clientRepo   repository.ClientRepository
	orderRepo    repository.OrderRepository
	lineItemRepo repository.LineItemRepository
	client       *allegro.Client
}

// NewOrderService 创建订单服务
func NewOrderService(
	credRepo repository.CredentialRepository,
	clientRepo repository.ClientRepository,
	orderRepo repository.OrderRepository,
	lineItemRepo repository.LineItemRepository,
	client *allegro.Client,
) *OrderService {
	return &OrderService{
		credRepo:     credRepo,
		clientRepo:   clientRepo,
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		client:       client,
	}
}

// ==================== 订单摄取 ====================

// SyncOrders 拉取事件流并逐单落库
// 流程：事件列表 -> 逐单详情 -> 买家/订单 Upsert -> 订单行补全 + Upsert
// 事件列表拉取失败整次失败；单个订单详情失败只记入报告，不中断批次
// 重复运行是幂等的：同样的上游数据第二次跑不会新增任何行
func (s *OrderService) SyncOrders(ctx context.Context, ownerID int64) (*dto.SyncOrdersResponse, error) {
	// 1. 凭证检查
	cred, err := s.credRepo.GetByOwnerID(ctx, ownerID)
	if err != nil || cred.AccessToken == "" {
		return nil, ErrNoCredential
	}

	result := &dto.SyncOrdersResponse{
		FailedCheckoutFormIDs: []string{},
	}

	// 2. 游标分页拉事件，短页即最后一页
	// 上游旧版只读首页；这里按游标读完整个事件窗口，幂等性不受影响
	from := ""
	for {
		events, err := s.client.GetOrderEvents(ctx, cred.AccessToken, from, eventPageSize)
		if err != nil {
			return nil, fmt.Errorf("拉取订单事件失败: %w", err)
		}

		for _, ev := range events.Events {
			checkoutFormID := ev.Order.CheckoutForm.ID
			if checkoutFormID == "" {
				continue
			}
			result.TotalEvents++

			created, err := s.syncCheckoutForm(ctx, ownerID, cred.AccessToken, checkoutFormID)
			if err != nil {
				result.FailedCheckoutFormIDs = append(result.FailedCheckoutFormIDs, checkoutFormID)
				log.Printf("[Sync] 订单 [%s] 处理失败: %v", checkoutFormID, err)
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}

		if len(events.Events) < eventPageSize {
			break
		}
		from = events.Events[len(events.Events)-1].ID
	}

	log.Printf("[Sync] Owner [%d] 摄取完成：新建 %d，更新 %d，失败 %d",
		ownerID, result.Created, result.Updated, len(result.FailedCheckoutFormIDs))
	return result, nil
}

// syncCheckoutForm 同步单个订单：详情拉取 + 买家/订单/订单行落库
func (s *OrderService) syncCheckoutForm(ctx context.Context, ownerID int64, accessToken, checkoutFormID string) (bool, error) {
	form, err := s.client.GetCheckoutForm(ctx, accessToken, checkoutFormID)
	if err != nil {
		return false, fmt.Errorf("拉取详情失败: %w", err)
	}

	// 1. 买家 Upsert (以 allegro_id 为键，重复摄取不产生重复行)
	phoneNumber := form.Buyer.PhoneNumber
	buyer, err := s.clientRepo.Upsert(ctx, &model.Client{
		AllegroID:   form.Buyer.ID,
		Login:       form.Buyer.Login,
		Email:       form.Buyer.Email,
		FirstName:   form.Buyer.FirstName,
		LastName:    form.Buyer.LastName,
		PhoneNumber: phoneNumber,
	})
	if err != nil {
		return false, fmt.Errorf("买家落库失败: %w", err)
	}

	// 2. 订单 Upsert (以 checkout_form_id 为键)
	existing, err := s.orderRepo.GetByCheckoutFormID(ctx, form.ID)
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return false, fmt.Errorf("订单查询失败: %w", err)
	}

	order := &model.Order{
		CheckoutFormID:      form.ID,
		BuyerID:             buyer.ID,
		OwnerID:             ownerID,
		Status:              form.Status, // 未知状态原样透传
		AllegroUpdatedAt:    parseTime(form.UpdatedAt),
		DeliveryMethodName:  form.Delivery.Method.Name,
		DeliveryCostAmount:  parseAmount(form.Delivery.Cost.Amount),
		DeliveryStreet:      form.Delivery.Address.Street,
		DeliveryCity:        form.Delivery.Address.City,
		DeliveryPostCode:    form.Delivery.Address.ZipCode,
		DeliveryCountryCode: form.Delivery.Address.CountryCode,
		TotalToPayAmount:    parseAmount(form.Summary.TotalToPay.Amount),
		Currency:            form.Summary.TotalToPay.Currency,
	}
	if form.Payment != nil {
		order.PaymentID = form.Payment.ID
		order.PaymentType = form.Payment.Type
	}

	// 保留原始 JSON，排障用
	if raw, err := json.Marshal(form); err == nil {
		order.RawData = datatypes.JSON(raw)
	}

	if isNew {
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return false, fmt.Errorf("订单创建失败: %w", err)
		}
	} else {
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return false, fmt.Errorf("订单更新失败: %w", err)
		}
	}

	// 3. 订单行
	if err := s.syncLineItems(ctx, order.ID, accessToken, form.LineItems); err != nil {
		return isNew, err
	}

	return isNew, nil
}

// syncLineItems 落库订单行，逐行做尽力而为的 Offer 详情补全
func (s *OrderService) syncLineItems(ctx context.Context, orderID int64, accessToken string, items []allegro.LineItem) error {
	for _, it := range items {
		item := &model.LineItem{
			OrderID:     orderID,
			LineItemID:  it.ID,
			OfferID:     it.Offer.ID,
			OfferName:   it.Offer.Name,
			Quantity:    it.Quantity,
			PriceAmount: parseAmount(it.Price.Amount),
			BoughtAt:    parseTime(it.BoughtAt),
		}

		// Offer 详情补全：失败不致命，基础字段照常落库
		offer, err := s.client.GetOfferDetails(ctx, accessToken, it.Offer.ID)
		if err != nil {
			log.Printf("[Sync] 订单行 [%s] Offer [%s] 详情补全失败: %v", it.ID, it.Offer.ID, err)
		} else {
			enrichLineItem(item, offer)
		}

		if err := s.lineItemRepo.Upsert(ctx, item); err != nil {
			return fmt.Errorf("订单行 [%s] 落库失败: %w", it.ID, err)
		}
	}
	return nil
}

// enrichLineItem 把 Offer 详情中的补全字段写入订单行
func enrichLineItem(item *model.LineItem, offer *allegro.OfferDetails) {
	if len(offer.Images) > 0 {
		u := offer.Images[0].URL
		item.ImageURL = &u
	}
	if offer.External != nil && offer.External.ID != "" {
		sku := offer.External.ID
		item.ExternalSKU = &sku
	}
	if offer.SellingMode != nil && offer.SellingMode.Format != "" {
		format := offer.SellingMode.Format
		item.OfferFormat = &format
	}
	if offer.Publication != nil && offer.Publication.EndingAt != nil {
		if t := parseTime(*offer.Publication.EndingAt); !t.IsZero() {
			item.AuctionEndTime = &t
		}
	}
}

// ==================== 订单查询 ====================

// ListOrders 本地订单列表
func (s *OrderService) ListOrders(ctx context.Context, req *dto.ListOrdersRequest) (*dto.ListOrdersResponse, error) {
	filter := repository.OrderFilter{
		OwnerID:  req.OwnerID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	// 解析日期
	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &endOfDay
		}
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}

	list := make([]dto.OrderListItem, len(orders))
	for i, order := range orders {
		buyerLogin := ""
		if order.Buyer != nil {
			buyerLogin = order.Buyer.Login
		}
		list[i] = dto.OrderListItem{
			ID:               order.ID,
			CheckoutFormID:   order.CheckoutFormID,
			BuyerLogin:       buyerLogin,
			Status:           order.Status,
			ItemCount:        len(order.LineItems),
			TotalToPay:       order.GetTotalToPay(),
			Currency:         order.Currency,
			AllegroUpdatedAt: order.AllegroUpdatedAt,
		}
	}

	return &dto.ListOrdersResponse{Total: total, List: list}, nil
}

// GetOrderDetail 本地订单详情
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID int64) (*dto.OrderDetailResponse, error) {
	order, err := s.orderRepo.GetByIDWithRelations(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在")
	}

	resp := &dto.OrderDetailResponse{
		ID:               order.ID,
		CheckoutFormID:   order.CheckoutFormID,
		Status:           order.Status,
		AllegroUpdatedAt: order.AllegroUpdatedAt,
		Delivery: dto.DeliveryVO{
			MethodName:  order.DeliveryMethodName,
			Cost:        order.GetDeliveryCost(),
			Street:      order.DeliveryStreet,
			City:        order.DeliveryCity,
			PostCode:    order.DeliveryPostCode,
			CountryCode: order.DeliveryCountryCode,
		},
		PaymentID:   order.PaymentID,
		PaymentType: order.PaymentType,
		TotalToPay:  order.GetTotalToPay(),
		Currency:    order.Currency,
	}

	if order.Buyer != nil {
		resp.Buyer = &dto.BuyerVO{
			ID:          order.Buyer.ID,
			AllegroID:   order.Buyer.AllegroID,
			Login:       order.Buyer.Login,
			Email:       order.Buyer.Email,
			FirstName:   order.Buyer.FirstName,
			LastName:    order.Buyer.LastName,
			PhoneNumber: order.Buyer.PhoneNumber,
		}
	}

	items := make([]dto.LineItemVO, len(order.LineItems))
	for i, item := range order.LineItems {
		items[i] = dto.LineItemVO{
			ID:             item.ID,
			LineItemID:     item.LineItemID,
			OfferID:        item.OfferID,
			OfferName:      item.OfferName,
			Quantity:       item.Quantity,
			Price:          item.GetPrice(),
			BoughtAt:       item.BoughtAt,
			ImageURL:       item.ImageURL,
			ExternalSKU:    item.ExternalSKU,
			OfferFormat:    item.OfferFormat,
			AuctionEndTime: item.AuctionEndTime,
		}
	}
	resp.LineItems = items

	return resp, nil
}

// ==================== 解析辅助 ====================

// parseTime 解析 Allegro 的 RFC3339 时间戳，解析失败返回零值
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseAmount 把 "123.45" 形式的金额解析成 grosz (1/100 单位) 整数
// 非法输入按 0 处理，原始值在 RawData 里仍可追溯
func parseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}
	// 补齐/截断到两位小数
	if len(fracPart) > 2 {
		fracPart = fracPart[:2]
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return total
}
