package dto

import "time"

// ==================== 订单同步 ====================

// SyncOrdersResponse 一次摄取运行的结果报告
type SyncOrdersResponse struct {
	TotalEvents           int      `json:"total_events"`
	Created               int      `json:"created"`
	Updated               int      `json:"updated"`
	FailedCheckoutFormIDs []string `json:"failed_checkout_form_ids"`
}

// ==================== 订单查询 ====================

// ListOrdersRequest 订单列表查询参数
type ListOrdersRequest struct {
	OwnerID   int64  `form:"owner_id"`
	Status    string `form:"status"`
	StartDate string `form:"start_date"` // 2006-01-02
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderListItem `json:"list"`
}

// OrderListItem 列表行
type OrderListItem struct {
	ID               int64     `json:"id"`
	CheckoutFormID   string    `json:"checkout_form_id"`
	BuyerLogin       string    `json:"buyer_login"`
	Status           string    `json:"status"`
	ItemCount        int       `json:"item_count"`
	TotalToPay       string    `json:"total_to_pay"`
	Currency         string    `json:"currency"`
	AllegroUpdatedAt time.Time `json:"allegro_updated_at"`
}

// OrderDetailResponse 订单详情响应
type OrderDetailResponse struct {
	ID               int64        `json:"id"`
	CheckoutFormID   string       `json:"checkout_form_id"`
	Status           string       `json:"status"`
	AllegroUpdatedAt time.Time    `json:"allegro_updated_at"`
	Buyer            *BuyerVO     `json:"buyer"`
	Delivery         DeliveryVO   `json:"delivery"`
	PaymentID        *string      `json:"payment_id"`
	PaymentType      *string      `json:"payment_type"`
	TotalToPay       string       `json:"total_to_pay"`
	Currency         string       `json:"currency"`
	LineItems        []LineItemVO `json:"line_items"`
}

// BuyerVO 买家视图
type BuyerVO struct {
	ID          int64   `json:"id"`
	AllegroID   string  `json:"allegro_id"`
	Login       string  `json:"login"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

// DeliveryVO 配送视图
type DeliveryVO struct {
	MethodName  string `json:"method_name"`
	Cost        string `json:"cost"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostCode    string `json:"post_code"`
	CountryCode string `json:"country_code"`
}

// LineItemVO 订单行视图
type LineItemVO struct {
	ID             int64      `json:"id"`
	LineItemID     string     `json:"line_item_id"`
	OfferID        string     `json:"offer_id"`
	OfferName      string     `json:"offer_name"`
	Quantity       int        `json:"quantity"`
	Price          string     `json:"price"`
	BoughtAt       time.Time  `json:"bought_at"`
	ImageURL       *string    `json:"image_url"`
	ExternalSKU    *string    `json:"external_sku"`
	OfferFormat    *string    `json:"offer_format"`
	AuctionEndTime *time.Time `json:"auction_end_time"`
}
