package models

import "time"

// PhanHoi: tối đa MỘT dòng cho mỗi cặp (khao_sat_id, subject_id),
// bất kể người trả lời bấm link điểm nào trong 11 link.
// Ràng buộc unique ở DB là thứ chặn double-count, không phải logic đọc-rồi-ghi.
type PhanHoi struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyLinkID uint      `gorm:"column:survey_link_id;not null" json:"survey_link_id"`
	KhaoSatID    uint      `gorm:"column:khao_sat_id;not null;uniqueIndex:idx_phan_hoi_subject" json:"khao_sat_id"`
	SubjectID    string    `gorm:"column:subject_id;size:255;not null;uniqueIndex:idx_phan_hoi_subject" json:"subject_id"`
	NgayGui      time.Time `gorm:"column:ngay_gui;not null" json:"ngay_gui"`
	BinhLuan     *string   `gorm:"column:binh_luan;type:text" json:"binh_luan"`

	SurveyLink *SurveyLink `gorm:"foreignKey:SurveyLinkID;references:ID" json:"-"`
}

func (PhanHoi) TableName() string {
	return "phan_hoi"
}
