package models

import "time"

// WebhookLog: một dòng cho mỗi lần gửi (kể cả gửi thử), chỉ ghi thêm,
// không bao giờ sửa. Hiển thị trong lịch sử gửi của dashboard.
type WebhookLog struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobID         *string   `gorm:"column:job_id;size:36;index" json:"job_id"` // NULL với gửi thử
	DoanhNghiepID uint      `gorm:"column:doanh_nghiep_id;not null;index" json:"doanh_nghiep_id"`
	Attempt       int       `gorm:"column:attempt" json:"attempt"`
	StatusCode    *int      `gorm:"column:status_code" json:"status_code"`
	ResponseBody  *string   `gorm:"column:response_body;type:text" json:"response_body"` // cắt còn 1000 byte
	ErrorMsg      *string   `gorm:"column:error_msg;type:text" json:"error_msg"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
