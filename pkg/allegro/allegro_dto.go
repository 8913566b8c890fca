package allegro

// Allegro REST API 响应结构定义
// 字段与官方 JSON 一一对应，可能缺失的字段统一用指针表达，
// 避免业务层对 map 做动态取值（静默空值是线上事故的根源）

// ==================== OAuth Token ====================

// TokenResponse Token 签发/刷新响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ==================== 订单事件流 ====================

// OrderEventsResponse GET /order/events 响应
type OrderEventsResponse struct {
	Events []OrderEvent `json:"events"`
}

// OrderEvent 单条订单事件
type OrderEvent struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	OccurredAt string        `json:"occurredAt"`
	Order      EventOrderRef `json:"order"`
}

// EventOrderRef 事件内的订单引用
type EventOrderRef struct {
	CheckoutForm CheckoutFormRef `json:"checkoutForm"`
}

// CheckoutFormRef 仅含 ID 的订单引用
type CheckoutFormRef struct {
	ID string `json:"id"`
}

// ==================== 订单详情 (Checkout Form) ====================

// CheckoutForm GET /order/checkout-forms/{id} 响应
type CheckoutForm struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	UpdatedAt string     `json:"updatedAt"`
	Buyer     Buyer      `json:"buyer"`
	Delivery  Delivery   `json:"delivery"`
	Payment   *Payment   `json:"payment"`
	Summary   Summary    `json:"summary"`
	LineItems []LineItem `json:"lineItems"`
}

// Buyer 买家信息
type Buyer struct {
	ID          string  `json:"id"`
	Login       string  `json:"login"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
}

// Delivery 配送信息
type Delivery struct {
	Method  DeliveryMethod  `json:"method"`
	Cost    Money           `json:"cost"`
	Address DeliveryAddress `json:"address"`
}

// DeliveryMethod 配送方式
type DeliveryMethod struct {
	Name string `json:"name"`
}

// DeliveryAddress 收货地址
type DeliveryAddress struct {
	Street      string `json:"street"`
	City        string `json:"city"`
	ZipCode     string `json:"zipCode"`
	CountryCode string `json:"countryCode"`
}

// Payment 支付信息 (可能整体缺失)
type Payment struct {
	ID   *string `json:"id"`
	Type *string `json:"type"`
}

// Summary 金额汇总
type Summary struct {
	TotalToPay Money `json:"totalToPay"`
}

// Money 金额 (Allegro 以字符串传递，如 "123.45")
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// LineItem 订单行
type LineItem struct {
	ID       string   `json:"id"`
	Offer    OfferRef `json:"offer"`
	Quantity int      `json:"quantity"`
	Price    Money    `json:"price"`
	BoughtAt string   `json:"boughtAt"`
}

// OfferRef 订单行内的 Offer 引用
type OfferRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ==================== Offer 详情 (用于补全订单行) ====================

// OfferDetails GET /sale/offers/{id} 响应 (只取业务需要的字段)
type OfferDetails struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Images      []OfferImage      `json:"images"`
	External    *ExternalRef      `json:"external"`
	SellingMode *SellingModeInfo  `json:"sellingMode"`
	Publication *OfferPublication `json:"publication"`
}

// OfferImage 图片
type OfferImage struct {
	URL string `json:"url"`
}

// ExternalRef 卖家外部编号 (SKU)
type ExternalRef struct {
	ID string `json:"id"`
}

// SellingModeInfo 销售模式
type SellingModeInfo struct {
	Format string `json:"format"`
}

// OfferPublication 发布信息
type OfferPublication struct {
	EndingAt *string `json:"endingAt"`
}

// ==================== 销售元数据 ====================

// ShippingRatesResponse GET /sale/shipping-rates 响应
type ShippingRatesResponse struct {
	ShippingRates []ShippingRate `json:"shippingRates"`
}

// ShippingRate 运费模板
type ShippingRate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoriesResponse GET /sale/categories 响应
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// Category 类目
type Category struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Leaf   bool         `json:"leaf"`
	Parent *CategoryRef `json:"parent,omitempty"`
}

// CategoryRef 类目引用
type CategoryRef struct {
	ID string `json:"id"`
}

// ==================== Offer 发布 ====================

// OfferPayload PUT /sale/offer-publication-commands/{commandId} 请求体
type OfferPayload struct {
	Name        string           `json:"name"`
	Category    CategoryRef      `json:"category"`
	SellingMode SellingMode      `json:"sellingMode"`
	Stock       Stock            `json:"stock"`
	Publication Publication      `json:"publication"`
	Delivery    OfferDelivery    `json:"delivery"`
	Description OfferDescription `json:"description"`
	Images      []OfferImage     `json:"images"`
	Parameters  []OfferParameter `json:"parameters"`
}

// SellingMode 销售模式: BUY_NOW 携带 price，AUCTION 携带 startingPrice，二者互斥
type SellingMode struct {
	Format        string `json:"format"`
	Price         *Money `json:"price,omitempty"`
	StartingPrice *Money `json:"startingPrice,omitempty"`
}

// Stock 库存
type Stock struct {
	Available int    `json:"available"`
	Unit      string `json:"unit"`
}

// Publication 发布时长 (ISO-8601 周期，如 P10D)
type Publication struct {
	Duration string `json:"duration"`
}

// OfferDelivery 配送设置
type OfferDelivery struct {
	ShippingRates ShippingRatesRef `json:"shippingRates"`
}

// ShippingRatesRef 运费模板引用
type ShippingRatesRef struct {
	ID string `json:"id"`
}

// OfferDescription 商品描述
type OfferDescription struct {
	Sections []DescriptionSection `json:"sections"`
}

// DescriptionSection 描述段落
type DescriptionSection struct {
	Items []DescriptionItem `json:"items"`
}

// DescriptionItem 描述条目
type DescriptionItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// OfferParameter 类目动态参数
// 选中字典值时填 ValuesIDs，自由输入时填 Values
type OfferParameter struct {
	ID        string   `json:"id"`
	Values    []string `json:"values,omitempty"`
	ValuesIDs []string `json:"valuesIds,omitempty"`
}

// PublishResponse 发布命令受理响应
type PublishResponse struct {
	ID string `json:"id"`
}
