package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// 订单状态常量 (Allegro checkout form status)
// 未知状态值原样透传入库，不视为错误
const (
	OrderStatusBought             = "BOUGHT"               // 已拍下
	OrderStatusFilledIn           = "FILLED_IN"            // 已填写表单
	OrderStatusReadyForProcessing = "READY_FOR_PROCESSING" // 可发货
)

// Offer 格式常量
const (
	OfferFormatBuyNow        = "BUY_NOW"       // 一口价
	OfferFormatAuction       = "AUCTION"       // 竞拍
	OfferFormatAdvertisement = "ADVERTISEMENT" // 广告位
)

// ==================== Order 订单主表 ====================

// Order Allegro 订单 (checkout form)
// 以 checkout_form_id 作为天然唯一键 Upsert；默认按平台更新时间倒序展示
type Order struct {
	BaseModel

	CheckoutFormID string `gorm:"size:255;uniqueIndex;not null"`

	// 买家是引用关系不是从属关系：有订单引用时买家不允许删除 (RESTRICT)
	BuyerID int64   `gorm:"index;not null"`
	Buyer   *Client `gorm:"foreignKey:BuyerID;constraint:OnDelete:RESTRICT"`

	// 卖家 (系统用户)
	OwnerID int64 `gorm:"index;not null"`

	Status           string    `gorm:"size:50;index"`
	AllegroUpdatedAt time.Time `gorm:"index"`

	// 配送信息 (平铺存储，来自 delivery 子结构)
	DeliveryMethodName  string `gorm:"size:255"`
	DeliveryCostAmount  int64  // grosz (1/100 PLN) 为单位
	DeliveryStreet      string `gorm:"size:255"`
	DeliveryCity        string `gorm:"size:255"`
	DeliveryPostCode    string `gorm:"size:20"`
	DeliveryCountryCode string `gorm:"size:2"`

	// 支付信息 (平台可能整体不给)
	PaymentID   *string `gorm:"size:255"`
	PaymentType *string `gorm:"size:50"`

	TotalToPayAmount int64
	Currency         string `gorm:"size:10;default:'PLN'"`

	// 原始 checkout form JSON，排障与后续字段扩展用
	RawData datatypes.JSON `gorm:"type:jsonb"`

	// 订单行从属于订单，随订单级联删除
	LineItems []LineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// GetTotalToPay 格式化应付金额
func (o *Order) GetTotalToPay() string {
	return FormatAmount(o.TotalToPayAmount)
}

// GetDeliveryCost 格式化运费
func (o *Order) GetDeliveryCost() string {
	return FormatAmount(o.DeliveryCostAmount)
}

// ==================== LineItem 订单行 ====================

// LineItem 订单行
// 以 line_item_id 作为天然唯一键 Upsert
// 补全字段 (图片/SKU/格式/竞拍结束时间) 是尽力而为：Offer 详情拉取失败时保持 NULL
type LineItem struct {
	BaseModel

	OrderID    int64  `gorm:"index;not null"`
	LineItemID string `gorm:"size:255;uniqueIndex;not null"`

	OfferID     string `gorm:"size:255;index"`
	OfferName   string `gorm:"size:255"`
	Quantity    int
	PriceAmount int64 // grosz 为单位
	BoughtAt    time.Time

	// 补全字段
	ImageURL       *string `gorm:"size:1024"`
	ExternalSKU    *string `gorm:"size:255;index"`
	OfferFormat    *string `gorm:"size:20"`
	AuctionEndTime *time.Time
}

func (LineItem) TableName() string {
	return "line_items"
}

// GetPrice 格式化单价
func (li *LineItem) GetPrice() string {
	return FormatAmount(li.PriceAmount)
}

// FormatAmount 把 grosz 金额还原为两位小数字符串
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
