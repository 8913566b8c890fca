package model

// 系统级角色常量
const (
	RoleAdmin = "admin" // 管理员
	RoleUser  = "user"  // 普通运营
)

// SysUser 系统用户 (卖家/运营账号)
// 所有对外接口都要求登录，对应后台的员工账号体系
type SysUser struct {
	BaseModel

	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // 哈希密码
	Email    string `gorm:"size:100"`

	Role     string `gorm:"size:20;default:'user'"`
	IsActive bool   `gorm:"default:true"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
