package model

import (
	"time"
)

// Token 状态常量
const (
	TokenStatusValid   = "valid"        // 有效
	TokenStatusExpired = "expired"      // 已过期
	TokenStatusInvalid = "auth_invalid" // 需重新授权
)

// Credential 卖家账号的 Allegro 凭证
// 每个系统用户 (卖家) 一条；首次 PKCE 授权成功时创建，之后只在刷新/重授权时更新，
// 本子系统永远不删除它
type Credential struct {
	BaseModel

	OwnerID int64    `gorm:"uniqueIndex;not null"` // 系统用户 ID (卖家)
	Owner   *SysUser `gorm:"foreignKey:OwnerID"`

	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	// 一旦授权成功过，RefreshToken 非空时 TokenExpiresAt 必然有值
	TokenExpiresAt time.Time
	TokenStatus    string `gorm:"index;size:20;default:'auth_invalid'"`
}

func (Credential) TableName() string {
	return "credentials"
}
