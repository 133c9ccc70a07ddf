package models

import "time"

// Redirect timing cho trang cảm ơn
const (
	RedirectNone        = "none"
	RedirectPreComment  = "pre_comment"
	RedirectPostComment = "post_comment"
)

type KhaoSat struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DoanhNghiepID uint      `gorm:"column:doanh_nghiep_id;not null;uniqueIndex:idx_khao_sat_ma" json:"doanh_nghiep_id"`
	MaKhaoSat     string    `gorm:"column:ma_khao_sat;size:100;not null;uniqueIndex:idx_khao_sat_ma" json:"ma_khao_sat"` // slug duy nhất trong doanh nghiệp
	TieuDe        string    `gorm:"column:tieu_de;size:255;not null" json:"tieu_de"`
	MoTa          string    `gorm:"column:mo_ta;type:text" json:"mo_ta"`
	DefaultTTL    int       `gorm:"column:default_ttl_days;default:30" json:"default_ttl_days"`
	RedirectURL   *string   `gorm:"column:redirect_url;size:500" json:"redirect_url"`
	RedirectKhi   string    `gorm:"column:redirect_timing;size:20;default:'none'" json:"redirect_timing"` // none | pre_comment | post_comment
	NgayTao       time.Time `gorm:"column:ngay_tao;autoCreateTime" json:"ngay_tao"`

	DoanhNghiep *DoanhNghiep `gorm:"foreignKey:DoanhNghiepID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	// Quan hệ
	Links    []SurveyLink `gorm:"foreignKey:KhaoSatID" json:"-"`
	PhanHois []PhanHoi    `gorm:"foreignKey:KhaoSatID" json:"-"`
}

func (KhaoSat) TableName() string {
	return "khao_sat"
}
