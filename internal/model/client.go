package model

// Client Allegro 买家档案
// 以 allegro_id 作为天然唯一键做 Upsert，重复摄取不会产生重复行
type Client struct {
	BaseModel

	AllegroID   string  `gorm:"size:255;uniqueIndex;not null"` // Allegro 平台的买家 ID
	Login       string  `gorm:"size:255;index"`
	Email       string  `gorm:"size:255"`
	FirstName   string  `gorm:"size:255"`
	LastName    string  `gorm:"size:255"`
	PhoneNumber *string `gorm:"size:50"`
}

func (Client) TableName() string {
	return "clients"
}
