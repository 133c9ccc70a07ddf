package models

import "time"

// SurveyLink là một link chấm điểm sẵn (0-10) cho một người trả lời.
// Mỗi lần mint tạo đủ 11 dòng cùng subject_id và expires_at.
// Không bao giờ sửa sau khi tạo; hết hạn ngầm khi expires_at < now.
type SurveyLink struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"column:token;size:64;uniqueIndex;not null" json:"token"`
	KhaoSatID uint      `gorm:"column:khao_sat_id;not null;index" json:"khao_sat_id"`
	SubjectID string    `gorm:"column:subject_id;size:255;not null" json:"subject_id"`
	Diem      int       `gorm:"column:diem;not null" json:"diem"` // 0..10
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`

	KhaoSat *KhaoSat `gorm:"foreignKey:KhaoSatID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (SurveyLink) TableName() string {
	return "survey_link"
}

// HetHan kiểm tra link đã quá hạn chưa
func (l *SurveyLink) HetHan(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
