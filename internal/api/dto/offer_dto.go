package dto

// ==================== Offer 发布 ====================

// 创建方式常量
const (
	CreationFromScratch  = "FROM_SCRATCH"  // 从零新建
	CreationFromEAN      = "FROM_EAN"      // 按 EAN 码挂靠产品
	CreationFromExisting = "FROM_EXISTING" // 克隆已有 Offer
)

// OfferCreateRequest 发布 Offer 的表单输入
type OfferCreateRequest struct {
	CreationMethod  string `json:"creation_method"`
	EanCode         string `json:"ean_code"`
	ExistingOfferID string `json:"existing_offer_id"`

	OwnerID    int64  `json:"owner_id"`
	Title      string `json:"title"`
	CategoryID string `json:"category_id"`

	DescriptionHTML string `json:"description_html"`
	// 每行一个公开可访问的图片 URL，第一张为主图
	ImageURLs string `json:"image_urls"`

	SellingMode       string `json:"selling_mode"` // BUY_NOW | AUCTION
	PriceBuyNow       string `json:"price_buy_now"`
	PriceAuctionStart string `json:"price_auction_start"`

	Stock               int    `json:"stock"`
	PublicationDuration string `json:"publication_duration"` // P3D/P5D/P7D/P10D/P20D/P30D
	ShippingRatesID     string `json:"shipping_rates_id"`

	// 类目动态参数，来自类目参数模板
	Parameters []OfferParameterInput `json:"parameters"`
}

// OfferParameterInput 单个动态参数输入
// ValueID 非空表示选中了字典值，否则取 Value 自由文本
type OfferParameterInput struct {
	ID      string `json:"id"`
	ValueID string `json:"value_id"`
	Value   string `json:"value"`
}

// FieldError 校验失败明细
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PublishOfferResponse 发布受理结果
type PublishOfferResponse struct {
	CommandID string `json:"command_id"`
}
