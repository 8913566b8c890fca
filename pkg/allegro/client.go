package allegro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Allegro 公共 API 要求的媒体类型
const acceptHeader = "application/vnd.allegro.public.v1+json"

// APIError 统一的调用失败结果
// 任何传输层错误或非 2xx 响应都收敛成该类型，状态码和原始响应体保留用于排障
// 本层不做重试，重试策略属于调用方（目前没有任何调用方配置重试）
type APIError struct {
	StatusCode int    // 0 表示请求未到达服务端
	Body       string // 原始响应体
	Err        error  // 传输层错误
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("allegro api transport error: %v", e.Err)
	}
	return fmt.Sprintf("allegro api error [%d]: %s", e.StatusCode, e.Body)
}

// Config 客户端配置
type Config struct {
	BaseURL      string // REST API 地址
	AuthURL      string // 授权页地址
	TokenURL     string // Token 签发地址
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client 全系统统一的 Allegro 网络出口
// 构造一次全局复用，内部 resty 客户端自带连接池
type Client struct {
	cfg  Config
	http *resty.Client
}

// NewClient 创建配置好超时与公共 Header 的客户端
func NewClient(cfg Config) *Client {
	hc := resty.New().
		SetTimeout(20*time.Second). // 拉取订单详情可能较慢，给 20s
		SetHeader("Accept", acceptHeader).
		SetHeader("User-Agent", "Allegro-Go-App/1.0")

	return &Client{cfg: cfg, http: hc}
}

// Config 返回客户端配置 (授权 URL 拼接需要)
func (c *Client) Config() Config {
	return c.cfg
}

// normalize 把 resty 的返回统一收敛成 *APIError
func normalize(resp *resty.Response, err error) *APIError {
	if err != nil {
		return &APIError{Err: err}
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// ==================== OAuth ====================

// ExchangeCode 授权码换 Token (PKCE: 携带 code_verifier，basic 认证)
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*TokenResponse, error) {
	var out TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"redirect_uri":  c.cfg.RedirectURI,
			"code_verifier": verifier,
		}).
		SetResult(&out).
		Post(c.cfg.TokenURL)
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// RefreshToken 刷新 Token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&out).
		Post(c.cfg.TokenURL)
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// ==================== 订单 ====================

// GetOrderEvents 拉取订单事件流
// from 为空拉首页，否则从指定事件 ID 之后继续 (游标分页)
func (c *Client) GetOrderEvents(ctx context.Context, accessToken, from string, limit int) (*OrderEventsResponse, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("limit", strconv.Itoa(limit))
	if from != "" {
		req.SetQueryParam("from", from)
	}

	var out OrderEventsResponse
	resp, err := req.SetResult(&out).Get(c.cfg.BaseURL + "/order/events")
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// GetCheckoutForm 拉取订单完整详情
func (c *Client) GetCheckoutForm(ctx context.Context, accessToken, checkoutFormID string) (*CheckoutForm, error) {
	var out CheckoutForm
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		Get(c.cfg.BaseURL + "/order/checkout-forms/" + url.PathEscape(checkoutFormID))
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// GetOfferDetails 拉取 Offer 详情 (订单行补全用，调用方自行决定失败是否致命)
func (c *Client) GetOfferDetails(ctx context.Context, accessToken, offerID string) (*OfferDetails, error) {
	var out OfferDetails
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		Get(c.cfg.BaseURL + "/sale/offers/" + url.PathEscape(offerID))
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// ==================== 销售元数据 ====================

// GetShippingRates 拉取卖家运费模板列表
func (c *Client) GetShippingRates(ctx context.Context, accessToken string) (*ShippingRatesResponse, error) {
	var out ShippingRatesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		Get(c.cfg.BaseURL + "/sale/shipping-rates")
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// SearchCategories 按名称搜索一级类目
func (c *Client) SearchCategories(ctx context.Context, accessToken, query string) (*CategoriesResponse, error) {
	var out CategoriesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("parent.id", "root").
		SetQueryParam("name", query).
		SetResult(&out).
		Get(c.cfg.BaseURL + "/sale/categories")
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return &out, nil
}

// GetCategoryParameters 拉取类目参数模板
// 模板结构庞大且仅做前端透传，保持 RawMessage 不强行建模
func (c *Client) GetCategoryParameters(ctx context.Context, accessToken, categoryID string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(c.cfg.BaseURL + "/sale/categories/" + url.PathEscape(categoryID) + "/parameters")
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	return json.RawMessage(resp.Body()), nil
}

// ==================== Offer 发布 ====================

// PublishOffer 以幂等命令 ID 提交发布请求
// commandID 由调用方生成 (每次发布一个全新 UUID)，可用于后续轮询
func (c *Client) PublishOffer(ctx context.Context, accessToken, commandID string, payload *OfferPayload) (*PublishResponse, error) {
	var out PublishResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", acceptHeader).
		SetBody(payload).
		SetResult(&out).
		Put(c.cfg.BaseURL + "/sale/offer-publication-commands/" + url.PathEscape(commandID))
	if apiErr := normalize(resp, err); apiErr != nil {
		return nil, apiErr
	}
	// 某些网关不回显命令 ID，兜底用我们生成的
	if out.ID == "" {
		out.ID = commandID
	}
	return &out, nil
}
