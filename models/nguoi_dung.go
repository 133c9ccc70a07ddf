package models

import "time"

type NguoiDung struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Ten     string    `gorm:"size:100;not null" json:"ten"`
	Email   string    `gorm:"size:100;unique;not null" json:"email"`
	MatKhau string    `gorm:"size:255" json:"-"` // ẩn khi trả JSON; rỗng nếu đăng nhập Google
	NgayTao time.Time `gorm:"autoCreateTime" json:"ngay_tao"`

	DoanhNghieps []DoanhNghiep `gorm:"foreignKey:NguoiTaoID" json:"-"`
}

func (NguoiDung) TableName() string {
	return "nguoi_dung"
}
