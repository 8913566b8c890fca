package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"allegro_dev_v1_202608/internal/model"
	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/pkg/allegro"
)

// ==================== 测试辅助 ====================

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.SysUser{}, &model.Credential{},
		&model.Client{}, &model.Order{}, &model.LineItem{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// fakeAllegro 伪造 Allegro 订单相关端点
// failForms 里的订单详情返回 500，failOffers 里的 Offer 详情返回 404
type fakeAllegro struct {
	events     []map[string]interface{}
	forms      map[string]string // checkoutFormID -> 详情 JSON
	offers     map[string]string // offerID -> Offer 详情 JSON
	failForms  map[string]bool
	failOffers map[string]bool

	eventCalls int
}

func (f *fakeAllegro) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/order/events", func(w http.ResponseWriter, r *http.Request) {
		f.eventCalls++
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("事件请求必须携带 Bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"events": f.events})
	})

	mux.HandleFunc("/order/checkout-forms/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/order/checkout-forms/")
		if f.failForms[id] {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"errors":[{"message":"internal"}]}`)
			return
		}
		body, ok := f.forms[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})

	mux.HandleFunc("/sale/offers/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/sale/offers/")
		if f.failOffers[id] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, ok := f.offers[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})

	return httptest.NewServer(mux)
}

func newOrderService(db *gorm.DB, baseURL string) (*OrderService, *Repositories) {
	repos := &Repositories{
		Credential: repository.NewCredentialRepository(db),
		Client:     repository.NewClientRepository(db),
		Order:      repository.NewOrderRepository(db),
		LineItem:   repository.NewLineItemRepository(db),
	}
	client := allegro.NewClient(allegro.Config{BaseURL: baseURL})
	svc := NewOrderService(repos.Credential, repos.Client, repos.Order, repos.LineItem, client)
	return svc, repos
}

// Repositories 测试用仓库集合
type Repositories struct {
	Credential repository.CredentialRepository
	Client     repository.ClientRepository
	Order      repository.OrderRepository
	LineItem   repository.LineItemRepository
}

func seedCredential(db *gorm.DB, ownerID int64) {
	db.Create(&model.Credential{
		OwnerID: ownerID, AccessToken: "valid-token", RefreshToken: "rt",
		TokenExpiresAt: time.Now().Add(12 * time.Hour), TokenStatus: model.TokenStatusValid,
	})
}

func eventFor(eventID, formID string) map[string]interface{} {
	return map[string]interface{}{
		"id":         eventID,
		"type":       "READY_FOR_PROCESSING",
		"occurredAt": "2026-08-01T10:00:00Z",
		"order": map[string]interface{}{
			"checkoutForm": map[string]interface{}{"id": formID},
		},
	}
}

func formJSON(formID, status, totalToPay string) string {
	return fmt.Sprintf(`{
		"id": "%s",
		"status": "%s",
		"updatedAt": "2026-08-01T10:05:00Z",
		"buyer": {
			"id": "buyer-1", "login": "jan_k", "email": "jan@example.pl",
			"firstName": "Jan", "lastName": "Kowalski", "phoneNumber": "+48123456789"
		},
		"delivery": {
			"method": {"name": "Kurier DPD"},
			"cost": {"amount": "12.99", "currency": "PLN"},
			"address": {"street": "Prosta 1", "city": "Warszawa", "zipCode": "00-001", "countryCode": "PL"}
		},
		"payment": {"id": "pay-1", "type": "ONLINE"},
		"summary": {"totalToPay": {"amount": "%s", "currency": "PLN"}},
		"lineItems": [{
			"id": "li-%s",
			"offer": {"id": "offer-1", "name": "Czerwony kubek"},
			"quantity": 2,
			"price": {"amount": "49.50", "currency": "PLN"},
			"boughtAt": "2026-08-01T09:58:00Z"
		}]
	}`, formID, status, totalToPay, formID)
}

const offerJSON = `{
	"images": [{"url": "https://img.example/1.jpg"}],
	"external": {"id": "SKU-777"},
	"sellingMode": {"format": "BUY_NOW"},
	"publication": {"endingAt": "2026-09-01T00:00:00Z"}
}`

// ==================== 订单摄取 ====================

func TestSyncOrders_NoCredential(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, _ := newOrderService(db, "")

	_, err := svc.SyncOrders(context.Background(), 999)
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("无凭证账号应返回 ErrNoCredential, 实际 %v", err)
	}
}

func TestSyncOrders_CreateAndEnrich(t *testing.T) {
	db := setupOrderTestDB(t)
	fake := &fakeAllegro{
		events: []map[string]interface{}{eventFor("ev-1", "form-1")},
		forms:  map[string]string{"form-1": formJSON("form-1", "READY_FOR_PROCESSING", "111.99")},
		offers: map[string]string{"offer-1": offerJSON},
	}
	srv := fake.server(t)
	defer srv.Close()

	svc, repos := newOrderService(db, srv.URL)
	seedCredential(db, 1)
	ctx := context.Background()

	result, err := svc.SyncOrders(ctx, 1)
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	if result.Created != 1 || result.Updated != 0 || len(result.FailedCheckoutFormIDs) != 0 {
		t.Fatalf("摄取报告不符: %+v", result)
	}

	// 订单字段
	order, err := repos.Order.GetByCheckoutFormID(ctx, "form-1")
	if err != nil {
		t.Fatalf("订单未落库: %v", err)
	}
	if order.Status != "READY_FOR_PROCESSING" {
		t.Errorf("状态应原样透传, 实际 %s", order.Status)
	}
	if order.TotalToPayAmount != 11199 {
		t.Errorf("应付金额应为 11199 grosz, 实际 %d", order.TotalToPayAmount)
	}
	if order.DeliveryCostAmount != 1299 {
		t.Errorf("运费应为 1299 grosz, 实际 %d", order.DeliveryCostAmount)
	}
	if order.GetTotalToPay() != "111.99" {
		t.Errorf("格式化金额不符: %s", order.GetTotalToPay())
	}
	if len(order.RawData) == 0 {
		t.Error("原始 JSON 应被保留")
	}

	// 买家
	buyer, err := repos.Client.GetByAllegroID(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("买家未落库: %v", err)
	}
	if buyer.Login != "jan_k" || buyer.PhoneNumber == nil || *buyer.PhoneNumber != "+48123456789" {
		t.Errorf("买家字段不符: %+v", buyer)
	}

	// 订单行 + 补全字段
	item, err := repos.LineItem.GetByLineItemID(ctx, "li-form-1")
	if err != nil {
		t.Fatalf("订单行未落库: %v", err)
	}
	if item.PriceAmount != 4950 || item.Quantity != 2 {
		t.Errorf("订单行基础字段不符: %+v", item)
	}
	if item.ImageURL == nil || *item.ImageURL != "https://img.example/1.jpg" {
		t.Error("主图应被补全")
	}
	if item.ExternalSKU == nil || *item.ExternalSKU != "SKU-777" {
		t.Error("外部 SKU 应被补全")
	}
	if item.OfferFormat == nil || *item.OfferFormat != model.OfferFormatBuyNow {
		t.Error("销售模式应被补全")
	}
	if item.AuctionEndTime == nil {
		t.Error("结拍时间应被补全")
	}
}

func TestSyncOrders_Idempotent(t *testing.T) {
	db := setupOrderTestDB(t)
	fake := &fakeAllegro{
		events: []map[string]interface{}{eventFor("ev-1", "form-1")},
		forms:  map[string]string{"form-1": formJSON("form-1", "BOUGHT", "50.00")},
		offers: map[string]string{"offer-1": offerJSON},
	}
	srv := fake.server(t)
	defer srv.Close()

	svc, repos := newOrderService(db, srv.URL)
	seedCredential(db, 1)
	ctx := context.Background()

	first, err := svc.SyncOrders(ctx, 1)
	if err != nil {
		t.Fatalf("首次同步失败: %v", err)
	}
	if first.Created != 1 {
		t.Fatalf("首次应新建 1 单, 实际 %+v", first)
	}

	orderBefore, _ := repos.Order.GetByCheckoutFormID(ctx, "form-1")

	// 同样的上游数据再跑一遍：走更新路径，不产生重复行
	second, err := svc.SyncOrders(ctx, 1)
	if err != nil {
		t.Fatalf("二次同步失败: %v", err)
	}
	if second.Created != 0 || second.Updated != 1 {
		t.Fatalf("二次同步应为更新, 实际 %+v", second)
	}

	orderAfter, _ := repos.Order.GetByCheckoutFormID(ctx, "form-1")
	if orderAfter.ID != orderBefore.ID {
		t.Error("订单主键不应变化")
	}
	if !orderAfter.CreatedAt.Equal(orderBefore.CreatedAt) {
		t.Error("CreatedAt 应保持首次落库时间")
	}

	var orderCount, itemCount, buyerCount int64
	db.Model(&model.Order{}).Count(&orderCount)
	db.Model(&model.LineItem{}).Count(&itemCount)
	db.Model(&model.Client{}).Count(&buyerCount)
	if orderCount != 1 || itemCount != 1 || buyerCount != 1 {
		t.Errorf("重复摄取产生了重复行: orders=%d items=%d buyers=%d", orderCount, itemCount, buyerCount)
	}
}

func TestSyncOrders_PartialFailure(t *testing.T) {
	db := setupOrderTestDB(t)
	fake := &fakeAllegro{
		events: []map[string]interface{}{
			eventFor("ev-1", "form-ok-1"),
			eventFor("ev-2", "form-bad"),
			eventFor("ev-3", "form-ok-2"),
		},
		forms: map[string]string{
			"form-ok-1": formJSON("form-ok-1", "BOUGHT", "10.00"),
			"form-ok-2": formJSON("form-ok-2", "BOUGHT", "20.00"),
		},
		failForms: map[string]bool{"form-bad": true},
		offers:    map[string]string{"offer-1": offerJSON},
	}
	srv := fake.server(t)
	defer srv.Close()

	svc, repos := newOrderService(db, srv.URL)
	seedCredential(db, 1)
	ctx := context.Background()

	result, err := svc.SyncOrders(ctx, 1)
	if err != nil {
		t.Fatalf("单个订单失败不应让整次同步报错: %v", err)
	}

	if result.Created != 2 {
		t.Errorf("两个好订单应落库, 实际 created=%d", result.Created)
	}
	if len(result.FailedCheckoutFormIDs) != 1 || result.FailedCheckoutFormIDs[0] != "form-bad" {
		t.Errorf("失败名单应只含 form-bad, 实际 %v", result.FailedCheckoutFormIDs)
	}

	if _, err := repos.Order.GetByCheckoutFormID(ctx, "form-ok-2"); err != nil {
		t.Error("失败订单之后的订单应照常处理")
	}
}

func TestSyncOrders_EnrichmentFailureIsNotFatal(t *testing.T) {
	db := setupOrderTestDB(t)
	fake := &fakeAllegro{
		events:     []map[string]interface{}{eventFor("ev-1", "form-1")},
		forms:      map[string]string{"form-1": formJSON("form-1", "BOUGHT", "30.00")},
		failOffers: map[string]bool{"offer-1": true},
	}
	srv := fake.server(t)
	defer srv.Close()

	svc, repos := newOrderService(db, srv.URL)
	seedCredential(db, 1)
	ctx := context.Background()

	result, err := svc.SyncOrders(ctx, 1)
	if err != nil {
		t.Fatalf("补全失败不应让同步报错: %v", err)
	}
	if result.Created != 1 || len(result.FailedCheckoutFormIDs) != 0 {
		t.Fatalf("订单应照常落库: %+v", result)
	}

	// 基础字段在，补全字段留空
	item, err := repos.LineItem.GetByLineItemID(ctx, "li-form-1")
	if err != nil {
		t.Fatalf("订单行未落库: %v", err)
	}
	if item.OfferName != "Czerwony kubek" || item.PriceAmount != 4950 {
		t.Errorf("基础字段不符: %+v", item)
	}
	if item.ImageURL != nil || item.ExternalSKU != nil || item.OfferFormat != nil || item.AuctionEndTime != nil {
		t.Error("补全失败时补全字段应保持为空")
	}
}

// ==================== 金额解析 ====================

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"123.45", 12345},
		{"0.01", 1},
		{"100", 10000},
		{"99.9", 9990},
		{"-12.50", -1250},
		{" 7.00 ", 700},
		{"", 0},
		{"abc", 0},
	}
	for _, c := range cases {
		if got := parseAmount(c.in); got != c.want {
			t.Errorf("parseAmount(%q) = %d, 期望 %d", c.in, got, c.want)
		}
	}
}

func TestFormatAmount_RoundTrip(t *testing.T) {
	for _, s := range []string{"123.45", "0.01", "100.00", "-12.50"} {
		if got := model.FormatAmount(parseAmount(s)); got != s {
			t.Errorf("往返格式化不符: %q -> %q", s, got)
		}
	}
}
