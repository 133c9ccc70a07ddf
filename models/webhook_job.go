package models

import "time"

const (
	WebhookPending   = "pending"
	WebhookDelivered = "delivered"
	WebhookFailed    = "failed"
)

// WebhookJob là một thông báo webhook đang chờ gửi.
// Tối đa một dòng status='pending' cho mỗi (doanh_nghiep_id, khao_sat_id, subject_id)
// — index unique partial được tạo trong config.ConnectDB (gorm tag không hỗ trợ).
// scheduled_for và binh_luan chỉ được sửa khi còn pending.
type WebhookJob struct {
	JobID         string     `gorm:"column:job_id;primaryKey;size:36" json:"job_id"`
	DoanhNghiepID uint       `gorm:"column:doanh_nghiep_id;not null;index" json:"doanh_nghiep_id"`
	KhaoSatID     uint       `gorm:"column:khao_sat_id;not null" json:"khao_sat_id"`
	SubjectID     string     `gorm:"column:subject_id;size:255;not null" json:"subject_id"`
	Diem          int        `gorm:"column:diem;not null" json:"diem"`
	BinhLuan      *string    `gorm:"column:binh_luan;type:text" json:"binh_luan"`
	ScheduledFor  time.Time  `gorm:"column:scheduled_for;not null;index" json:"scheduled_for"`
	Status        string     `gorm:"column:status;size:20;default:'pending'" json:"status"` // pending | delivered | failed
	Attempts      int        `gorm:"column:attempts;default:0" json:"attempts"`
	LockedAt      *time.Time `gorm:"column:locked_at" json:"-"`
	LockedBy      *string    `gorm:"column:locked_by;size:64" json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WebhookJob) TableName() string {
	return "webhook_jobs"
}
