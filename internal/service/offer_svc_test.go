package service

import (
	"testing"

	"allegro_dev_v1_202608/internal/api/dto"
)

// ==================== 测试辅助 ====================

// validOfferRequest 一份能通过全部校验的基准表单
func validOfferRequest() *dto.OfferCreateRequest {
	return &dto.OfferCreateRequest{
		CreationMethod:      dto.CreationFromScratch,
		OwnerID:             1,
		Title:               "Czerwony kubek ceramiczny",
		CategoryID:          "cat-123",
		DescriptionHTML:     "<p>Opis produktu</p>",
		ImageURLs:           "https://img.example/1.jpg\n\nhttps://img.example/2.jpg\n",
		SellingMode:         "BUY_NOW",
		PriceBuyNow:         "49.99",
		Stock:               10,
		PublicationDuration: "P10D",
		ShippingRatesID:     "rates-1",
		Parameters: []dto.OfferParameterInput{
			{ID: "p1", ValueID: "v100"},
			{ID: "p2", Value: "bawełna"},
			{ID: "p3"}, // 空参数直接丢弃
		},
	}
}

func hasFieldError(errs []dto.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// ==================== 校验规则 ====================

func TestBuildPayload_Valid(t *testing.T) {
	svc := NewOfferService(nil, nil)

	payload, errs := svc.BuildPayload(validOfferRequest())
	if len(errs) > 0 {
		t.Fatalf("基准表单不应有校验错误: %v", errs)
	}

	if payload.Name != "Czerwony kubek ceramiczny" {
		t.Errorf("标题不符: %s", payload.Name)
	}
	if payload.Category.ID != "cat-123" {
		t.Errorf("类目不符: %s", payload.Category.ID)
	}
	if payload.SellingMode.Format != "BUY_NOW" {
		t.Errorf("销售模式不符: %s", payload.SellingMode.Format)
	}
	if payload.SellingMode.Price == nil || payload.SellingMode.Price.Amount != "49.99" {
		t.Errorf("一口价不符: %+v", payload.SellingMode.Price)
	}
	if payload.SellingMode.StartingPrice != nil {
		t.Error("一口价模式不应携带起拍价")
	}
	if payload.Stock.Available != 10 || payload.Stock.Unit != "UNIT" {
		t.Errorf("库存不符: %+v", payload.Stock)
	}
	if payload.Publication.Duration != "P10D" {
		t.Errorf("发布时长不符: %s", payload.Publication.Duration)
	}
	if payload.Delivery.ShippingRates.ID != "rates-1" {
		t.Errorf("运费模板不符: %s", payload.Delivery.ShippingRates.ID)
	}

	// 空行被过滤，顺序保持
	if len(payload.Images) != 2 || payload.Images[0].URL != "https://img.example/1.jpg" {
		t.Errorf("图片列表不符: %+v", payload.Images)
	}

	// 描述为单个 TEXT 段落
	if len(payload.Description.Sections) != 1 ||
		len(payload.Description.Sections[0].Items) != 1 ||
		payload.Description.Sections[0].Items[0].Type != "TEXT" {
		t.Errorf("描述结构不符: %+v", payload.Description)
	}

	// 参数：字典值走 valuesIds，自由值走 values，空参数丢弃
	if len(payload.Parameters) != 2 {
		t.Fatalf("参数数量不符: %+v", payload.Parameters)
	}
	if len(payload.Parameters[0].ValuesIDs) != 1 || payload.Parameters[0].ValuesIDs[0] != "v100" {
		t.Errorf("字典参数不符: %+v", payload.Parameters[0])
	}
	if len(payload.Parameters[1].Values) != 1 || payload.Parameters[1].Values[0] != "bawełna" {
		t.Errorf("自由参数不符: %+v", payload.Parameters[1])
	}
}

func TestBuildPayload_AuctionMode(t *testing.T) {
	svc := NewOfferService(nil, nil)

	req := validOfferRequest()
	req.SellingMode = "AUCTION"
	req.PriceBuyNow = ""
	req.PriceAuctionStart = "9.90"

	payload, errs := svc.BuildPayload(req)
	if len(errs) > 0 {
		t.Fatalf("拍卖表单不应有校验错误: %v", errs)
	}
	if payload.SellingMode.StartingPrice == nil || payload.SellingMode.StartingPrice.Amount != "9.90" {
		t.Errorf("起拍价不符: %+v", payload.SellingMode.StartingPrice)
	}
	if payload.SellingMode.Price != nil {
		t.Error("拍卖模式不应携带一口价")
	}
}

func TestBuildPayload_CreationMethodRules(t *testing.T) {
	svc := NewOfferService(nil, nil)

	// FROM_EAN 必须给 EAN
	req := validOfferRequest()
	req.CreationMethod = dto.CreationFromEAN
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "ean_code") {
		t.Error("FROM_EAN 缺少 EAN 应报 ean_code 错误")
	}

	req.EanCode = "5901234123457"
	if _, errs := svc.BuildPayload(req); len(errs) > 0 {
		t.Errorf("补上 EAN 后应通过: %v", errs)
	}

	// FROM_EXISTING 必须给已有 Offer ID
	req = validOfferRequest()
	req.CreationMethod = dto.CreationFromExisting
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "existing_offer_id") {
		t.Error("FROM_EXISTING 缺少 Offer ID 应报 existing_offer_id 错误")
	}

	// 未知创建方式
	req = validOfferRequest()
	req.CreationMethod = "FROM_MAGIC"
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "creation_method") {
		t.Error("未知创建方式应报 creation_method 错误")
	}
}

func TestBuildPayload_PriceExclusivity(t *testing.T) {
	svc := NewOfferService(nil, nil)

	// BUY_NOW 不能带起拍价
	req := validOfferRequest()
	req.PriceAuctionStart = "5.00"
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "price_auction_start") {
		t.Error("BUY_NOW 携带起拍价应报错")
	}

	// BUY_NOW 缺一口价
	req = validOfferRequest()
	req.PriceBuyNow = ""
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "price_buy_now") {
		t.Error("BUY_NOW 缺一口价应报错")
	}

	// AUCTION 不能带一口价
	req = validOfferRequest()
	req.SellingMode = "AUCTION"
	req.PriceAuctionStart = "5.00"
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "price_buy_now") {
		t.Error("AUCTION 携带一口价应报错")
	}

	// 非法价格
	req = validOfferRequest()
	req.PriceBuyNow = "not-a-price"
	if _, errs := svc.BuildPayload(req); !hasFieldError(errs, "price_buy_now") {
		t.Error("非法价格应报错")
	}
}

func TestBuildPayload_BasicFieldRules(t *testing.T) {
	svc := NewOfferService(nil, nil)

	req := validOfferRequest()
	req.Title = ""
	req.CategoryID = ""
	req.Stock = 0
	req.PublicationDuration = "P99D"
	req.ShippingRatesID = ""
	req.SellingMode = "RENTAL"

	_, errs := svc.BuildPayload(req)
	for _, field := range []string{"title", "category_id", "stock", "publication_duration", "shipping_rates_id", "selling_mode"} {
		if !hasFieldError(errs, field) {
			t.Errorf("字段 %s 应有校验错误", field)
		}
	}
}

func TestBuildPayload_PriceNormalization(t *testing.T) {
	svc := NewOfferService(nil, nil)

	// 单小数位输入归一化成两位
	req := validOfferRequest()
	req.PriceBuyNow = "49.9"

	payload, errs := svc.BuildPayload(req)
	if len(errs) > 0 {
		t.Fatalf("不应有校验错误: %v", errs)
	}
	if payload.SellingMode.Price.Amount != "49.90" {
		t.Errorf("价格应归一化为 49.90, 实际 %s", payload.SellingMode.Price.Amount)
	}
	if payload.SellingMode.Price.Currency != "PLN" {
		t.Errorf("币种应为 PLN, 实际 %s", payload.SellingMode.Price.Currency)
	}
}
