package repository

import (
	"context"
	"time"

	"allegro_dev_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	OwnerID   int64
	Status    string
	BuyerID   int64
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByCheckoutFormID(ctx context.Context, checkoutFormID string) (*model.Order, error)
	GetByIDWithRelations(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByCheckoutFormID(ctx context.Context, checkoutFormID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("checkout_form_id = ?", checkoutFormID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByIDWithRelations(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("LineItems").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	// 应用过滤条件
	if filter.OwnerID > 0 {
		db = db.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.BuyerID > 0 {
		db = db.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.StartDate != nil {
		db = db.Where("allegro_updated_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("allegro_updated_at <= ?", filter.EndDate)
	}

	// 计算总数
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	// 默认按平台更新时间倒序
	err := db.
		Preload("Buyer").
		Preload("LineItems").
		Order("allegro_updated_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

// ==================== LineItemRepository 订单行仓库 ====================

// LineItemRepository 订单行仓库接口
type LineItemRepository interface {
	// Upsert 按 line_item_id 冲突更新
	Upsert(ctx context.Context, item *model.LineItem) error
	GetByLineItemID(ctx context.Context, lineItemID string) (*model.LineItem, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]model.LineItem, error)
	CountByOrderID(ctx context.Context, orderID int64) (int64, error)
}

type lineItemRepo struct {
	db *gorm.DB
}

// NewLineItemRepository 创建订单行仓库
func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &lineItemRepo{db: db}
}

func (r *lineItemRepo) Upsert(ctx context.Context, item *model.LineItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "line_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_id", "offer_id", "offer_name",
			"quantity", "price_amount", "bought_at",
			"image_url", "external_sku", "offer_format", "auction_end_time",
			"updated_at",
		}),
	}).Create(item).Error
}

func (r *lineItemRepo) GetByLineItemID(ctx context.Context, lineItemID string) (*model.LineItem, error) {
	var item model.LineItem
	err := r.db.WithContext(ctx).Where("line_item_id = ?", lineItemID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *lineItemRepo) GetByOrderID(ctx context.Context, orderID int64) ([]model.LineItem, error) {
	var items []model.LineItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *lineItemRepo) CountByOrderID(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LineItem{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}
