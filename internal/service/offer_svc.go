package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"allegro_dev_v1_202608/internal/api/dto"
	"allegro_dev_v1_202608/internal/model"
	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/pkg/allegro"

	"github.com/google/uuid"
)

// 发布时长白名单
var allowedDurations = map[string]bool{
	"P3D": true, "P5D": true, "P7D": true, "P10D": true, "P20D": true, "P30D": true,
}

// ==================== OfferService ====================

// OfferService Offer 校验与发布服务
type OfferService struct {
	credRepo repository.CredentialRepository
	client   *allegro.Client
}

// NewOfferService 创建 Offer 服务
func NewOfferService(credRepo repository.CredentialRepository, client *allegro.Client) *OfferService {
	return &OfferService{credRepo: credRepo, client: client}
}

// BuildPayload 对表单输入做全量校验并构建发布请求体
// 校验不通过时返回逐字段错误列表，payload 为 nil
func (s *OfferService) BuildPayload(req *dto.OfferCreateRequest) (*allegro.OfferPayload, []dto.FieldError) {
	var errs []dto.FieldError
	addErr := func(field, msg string) {
		errs = append(errs, dto.FieldError{Field: field, Message: msg})
	}

	// 创建方式
	switch req.CreationMethod {
	case dto.CreationFromScratch:
	case dto.CreationFromEAN:
		if strings.TrimSpace(req.EanCode) == "" {
			addErr("ean_code", "该创建方式必须提供 EAN 码")
		}
	case dto.CreationFromExisting:
		if strings.TrimSpace(req.ExistingOfferID) == "" {
			addErr("existing_offer_id", "该创建方式必须提供已有 Offer 的 ID")
		}
	default:
		addErr("creation_method", "未知的创建方式")
	}

	// 基础字段
	if strings.TrimSpace(req.Title) == "" {
		addErr("title", "标题不能为空")
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		addErr("category_id", "必须选择类目")
	}
	if req.Stock <= 0 {
		addErr("stock", "库存必须大于 0")
	}
	if !allowedDurations[req.PublicationDuration] {
		addErr("publication_duration", "发布时长必须是 P3D/P5D/P7D/P10D/P20D/P30D 之一")
	}
	if strings.TrimSpace(req.ShippingRatesID) == "" {
		addErr("shipping_rates_id", "必须选择运费模板")
	}

	// 销售模式与价格互斥规则
	var sellingMode allegro.SellingMode
	switch req.SellingMode {
	case model.OfferFormatBuyNow:
		if req.PriceBuyNow == "" {
			addErr("price_buy_now", "一口价模式必须填写一口价")
		}
		if req.PriceAuctionStart != "" {
			addErr("price_auction_start", "一口价模式不能填写起拍价")
		}
		if price, ok := normalizePrice(req.PriceBuyNow); ok {
			sellingMode = allegro.SellingMode{
				Format: model.OfferFormatBuyNow,
				Price:  &allegro.Money{Amount: price, Currency: "PLN"},
			}
		} else if req.PriceBuyNow != "" {
			addErr("price_buy_now", "一口价格式非法")
		}
	case model.OfferFormatAuction:
		if req.PriceAuctionStart == "" {
			addErr("price_auction_start", "拍卖模式必须填写起拍价")
		}
		if req.PriceBuyNow != "" {
			addErr("price_buy_now", "拍卖模式不能填写一口价")
		}
		if price, ok := normalizePrice(req.PriceAuctionStart); ok {
			sellingMode = allegro.SellingMode{
				Format:        model.OfferFormatAuction,
				StartingPrice: &allegro.Money{Amount: price, Currency: "PLN"},
			}
		} else if req.PriceAuctionStart != "" {
			addErr("price_auction_start", "起拍价格式非法")
		}
	default:
		addErr("selling_mode", "销售模式必须是 BUY_NOW 或 AUCTION")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	// 图片：按行切分，去掉空行，第一张为主图
	var images []allegro.OfferImage
	for _, line := range strings.Split(req.ImageURLs, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			images = append(images, allegro.OfferImage{URL: u})
		}
	}

	// 动态参数：选中字典值走 valuesIds，自由文本走 values
	params := make([]allegro.OfferParameter, 0, len(req.Parameters))
	for _, p := range req.Parameters {
		if p.ID == "" {
			continue
		}
		param := allegro.OfferParameter{ID: p.ID}
		if p.ValueID != "" {
			param.ValuesIDs = []string{p.ValueID}
		} else if p.Value != "" {
			param.Values = []string{p.Value}
		} else {
			continue
		}
		params = append(params, param)
	}

	payload := &allegro.OfferPayload{
		Name:        req.Title,
		Category:    allegro.CategoryRef{ID: req.CategoryID},
		SellingMode: sellingMode,
		Stock:       allegro.Stock{Available: req.Stock, Unit: "UNIT"},
		Publication: allegro.Publication{Duration: req.PublicationDuration},
		Delivery:    allegro.OfferDelivery{ShippingRates: allegro.ShippingRatesRef{ID: req.ShippingRatesID}},
		Description: allegro.OfferDescription{
			Sections: []allegro.DescriptionSection{{
				Items: []allegro.DescriptionItem{{Type: "TEXT", Content: req.DescriptionHTML}},
			}},
		},
		Images:     images,
		Parameters: params,
	}

	return payload, nil
}

// Publish 提交发布命令，返回受理的 command id
// 发布是异步受理的，command id 用于后续在 Allegro 侧追踪
func (s *OfferService) Publish(ctx context.Context, ownerID int64, payload *allegro.OfferPayload) (*dto.PublishOfferResponse, error) {
	cred, err := s.credRepo.GetByOwnerID(ctx, ownerID)
	if err != nil || cred.AccessToken == "" {
		return nil, ErrNoCredential
	}

	commandID := uuid.NewString()
	resp, err := s.client.PublishOffer(ctx, cred.AccessToken, commandID, payload)
	if err != nil {
		return nil, fmt.Errorf("提交发布命令失败: %w", err)
	}

	log.Printf("[Offer] Owner [%d] 发布命令已受理: %s", ownerID, resp.ID)
	return &dto.PublishOfferResponse{CommandID: resp.ID}, nil
}

// normalizePrice 把用户输入的价格串规范成两位小数形式，非法或非正值返回 false
func normalizePrice(s string) (string, bool) {
	amount := parseAmount(s)
	if amount <= 0 {
		return "", false
	}
	return model.FormatAmount(amount), true
}
