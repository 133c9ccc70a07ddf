package models

import "time"

type DoanhNghiep struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Ten        string    `gorm:"column:ten;size:100;not null" json:"ten"`
	NguoiTaoID *uint     `gorm:"column:nguoi_tao_id" json:"nguoi_tao_id"`
	APIKey     string    `gorm:"column:api_key;size:36;uniqueIndex;not null" json:"-"` // dùng cho server-to-server, không trả JSON
	WebhookURL string    `gorm:"column:webhook_url;size:500" json:"webhook_url"`
	// chỉ dùng để ký HMAC, không trả JSON
	WebhookSecret string    `gorm:"column:webhook_secret;size:255" json:"-"`
	NgayTao       time.Time `gorm:"column:ngay_tao;autoCreateTime" json:"ngay_tao"`

	NguoiTao *NguoiDung `gorm:"foreignKey:NguoiTaoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	// Quan hệ
	KhaoSats []KhaoSat `gorm:"foreignKey:DoanhNghiepID" json:"-"`
}

func (DoanhNghiep) TableName() string {
	return "doanh_nghiep"
}
