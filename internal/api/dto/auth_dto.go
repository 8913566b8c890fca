package dto

import "time"

// LoginURLResponse 授权链接响应
type LoginURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// CallbackResponse 授权回调成功响应
type CallbackResponse struct {
	OwnerID        int64     `json:"owner_id"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}

// RefreshResultResponse 批量刷新结果
type RefreshResultResponse struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}
