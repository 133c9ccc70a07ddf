package worker

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/csat-server/models"
)

// GracePeriod: cửa sổ 180 giây sau lần bấm đầu (hoặc sau bình luận gần nhất)
// cho phép người trả lời thêm bình luận trước khi webhook được gửi.
const GracePeriod = 180 * time.Second

// Schedule tạo (hoặc giữ nguyên nếu đã có) job webhook pending cho
// (doanh_nghiep, khao_sat, subject). Upsert dựa trên partial unique index
// idx_webhook_jobs_pending nên hai request chạy song song cũng chỉ còn 1 job.
func Schedule(tx *gorm.DB, khaoSat *models.KhaoSat, subjectID string, diem int, delay time.Duration) error {
	job := models.WebhookJob{
		JobID:         uuid.New().String(),
		DoanhNghiepID: khaoSat.DoanhNghiepID,
		KhaoSatID:     khaoSat.ID,
		SubjectID:     subjectID,
		Diem:          diem,
		ScheduledFor:  time.Now().Add(delay),
		Status:        models.WebhookPending,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "doanh_nghiep_id"},
			{Name: "khao_sat_id"},
			{Name: "subject_id"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Name: "status"}, Value: models.WebhookPending},
		}},
		DoNothing: true,
	}).Create(&job).Error
}

// UpdateComment đẩy bình luận vào job pending tương ứng, nếu còn.
// Job đã delivered/failed thì bỏ qua: webhook đã gửi không kèm bình luận muộn.
func UpdateComment(tx *gorm.DB, doanhNghiepID, khaoSatID uint, subjectID, binhLuan string) error {
	return tx.Model(&models.WebhookJob{}).
		Where("doanh_nghiep_id = ? AND khao_sat_id = ? AND subject_id = ? AND status = ?",
			doanhNghiepID, khaoSatID, subjectID, models.WebhookPending).
		Update("binh_luan", binhLuan).Error
}

// RefreshTimer dời scheduled_for của job pending ra now + GracePeriod.
// Mỗi bình luận trong cửa sổ đẩy thời điểm gửi lùi thêm, nên cửa sổ sửa
// của người trả lời là "180 giây kể từ bình luận/lần bấm gần nhất".
func RefreshTimer(tx *gorm.DB, doanhNghiepID, khaoSatID uint, subjectID string) error {
	return tx.Model(&models.WebhookJob{}).
		Where("doanh_nghiep_id = ? AND khao_sat_id = ? AND subject_id = ? AND status = ?",
			doanhNghiepID, khaoSatID, subjectID, models.WebhookPending).
		Update("scheduled_for", time.Now().Add(GracePeriod)).Error
}
