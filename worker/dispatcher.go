package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/csat-server/models"
)

const (
	// Giới hạn retry: 6 lần, backoff 30s * 2^(n-1), trần 1 giờ
	MaxAttempts    = 6
	maxBodyLogSize = 1000
)

// WebhookPayload là body JSON gửi cho doanh nghiệp.
// survey_id là slug (ma_khao_sat), không phải id nội bộ.
type WebhookPayload struct {
	SurveyID  string  `json:"survey_id"`
	SubjectID string  `json:"subject_id"`
	Score     int     `json:"score"`
	Comment   *string `json:"comment"`
}

// Dispatcher quét các job webhook đến hạn và gửi đi.
// Chạy được nhiều instance song song: bước claim dùng
// FOR UPDATE SKIP LOCKED + locked_at/locked_by, nên một job chỉ có một
// worker cầm tại một thời điểm; LockTTL mở lại job của worker đã chết.
type Dispatcher struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	Client    *http.Client
	WorkerID  string
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

func NewDispatcher(db *gorm.DB, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		DB:        db,
		Logger:    logger,
		Client:    &http.Client{Timeout: 8 * time.Second},
		WorkerID:  "dispatcher-" + time.Now().Format("20060102-150405.000"),
		BatchSize: 20,
		Interval:  5 * time.Second,
		LockTTL:   60 * time.Second,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.DB == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.processOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.Interval):
		}
	}
}

// processOnce claim một lô job đến hạn rồi gửi từng job.
func (d *Dispatcher) processOnce(ctx context.Context) {
	now := time.Now()
	staleBefore := now.Add(-d.LockTTL)

	var claimed []models.WebhookJob
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("status = ?", models.WebhookPending).
			Where("scheduled_for <= ?", now).
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("scheduled_for ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		for i := range claimed {
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &d.WorkerID
			if err := tx.Model(&models.WebhookJob{}).
				Where("job_id = ?", claimed[i].JobID).
				Updates(map[string]interface{}{
					"locked_at": claimed[i].LockedAt,
					"locked_by": claimed[i].LockedBy,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.Logger.WithField("worker_id", d.WorkerID).Errorf("claim jobs thất bại: %v", err)
		return
	}

	for i := range claimed {
		d.deliver(ctx, &claimed[i])
	}
}

// deliver gửi một job: ký + POST, rồi cập nhật trạng thái theo kết quả.
func (d *Dispatcher) deliver(ctx context.Context, job *models.WebhookJob) {
	attempt := job.Attempts + 1

	var dn models.DoanhNghiep
	if err := d.DB.WithContext(ctx).First(&dn, job.DoanhNghiepID).Error; err != nil {
		d.Logger.WithField("job_id", job.JobID).Errorf("không nạp được doanh nghiệp: %v", err)
		d.unlock(ctx, job)
		return
	}
	var ks models.KhaoSat
	if err := d.DB.WithContext(ctx).First(&ks, job.KhaoSatID).Error; err != nil {
		d.Logger.WithField("job_id", job.JobID).Errorf("không nạp được khảo sát: %v", err)
		d.unlock(ctx, job)
		return
	}

	if dn.WebhookURL == "" {
		// Không có nơi để gửi: đánh failed ngay, không đốt retry
		msg := "doanh nghiệp chưa cấu hình webhook_url"
		d.finish(ctx, job, models.WebhookFailed)
		d.appendLog(ctx, job, attempt, nil, nil, &msg)
		return
	}

	payload := WebhookPayload{
		SurveyID:  ks.MaKhaoSat,
		SubjectID: job.SubjectID,
		Score:     job.Diem,
		Comment:   job.BinhLuan,
	}
	statusCode, body, err := SendWebhook(ctx, d.Client, dn.WebhookURL, dn.WebhookSecret, payload)

	if err == nil && statusCode >= 200 && statusCode < 300 {
		d.finish(ctx, job, models.WebhookDelivered)
		d.appendLog(ctx, job, attempt, &statusCode, &body, nil)
		d.Logger.WithFields(logrus.Fields{
			"job_id":  job.JobID,
			"attempt": attempt,
			"status":  statusCode,
		}).Info("webhook delivered")
		return
	}

	var codePtr *int
	var bodyPtr *string
	var errPtr *string
	if err != nil {
		msg := err.Error()
		errPtr = &msg
	} else {
		codePtr = &statusCode
		bodyPtr = &body
	}
	d.appendLog(ctx, job, attempt, codePtr, bodyPtr, errPtr)

	if attempt >= MaxAttempts {
		d.DB.WithContext(ctx).Model(&models.WebhookJob{}).
			Where("job_id = ?", job.JobID).
			Updates(map[string]interface{}{
				"status":    models.WebhookFailed,
				"attempts":  attempt,
				"locked_at": nil,
				"locked_by": nil,
			})
		d.Logger.WithFields(logrus.Fields{
			"job_id":   job.JobID,
			"attempts": attempt,
		}).Warn("webhook hết lượt retry, đánh dấu failed")
		return
	}

	// còn lượt: trả lại hàng đợi với backoff tăng dần
	d.DB.WithContext(ctx).Model(&models.WebhookJob{}).
		Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{
			"attempts":      attempt,
			"scheduled_for": time.Now().Add(Backoff(attempt)),
			"locked_at":     nil,
			"locked_by":     nil,
		})
	d.Logger.WithFields(logrus.Fields{
		"job_id":  job.JobID,
		"attempt": attempt,
		"retry":   Backoff(attempt).String(),
	}).Warn("webhook gửi thất bại, sẽ thử lại")
}

func (d *Dispatcher) finish(ctx context.Context, job *models.WebhookJob, status string) {
	d.DB.WithContext(ctx).Model(&models.WebhookJob{}).
		Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{
			"status":    status,
			"attempts":  job.Attempts + 1,
			"locked_at": nil,
			"locked_by": nil,
		})
}

func (d *Dispatcher) unlock(ctx context.Context, job *models.WebhookJob) {
	d.DB.WithContext(ctx).Model(&models.WebhookJob{}).
		Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{"locked_at": nil, "locked_by": nil})
}

func (d *Dispatcher) appendLog(ctx context.Context, job *models.WebhookJob, attempt int, statusCode *int, body *string, errMsg *string) {
	entry := models.WebhookLog{
		JobID:         &job.JobID,
		DoanhNghiepID: job.DoanhNghiepID,
		Attempt:       attempt,
		StatusCode:    statusCode,
		ResponseBody:  body,
		ErrorMsg:      errMsg,
	}
	if err := d.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		d.Logger.WithField("job_id", job.JobID).Errorf("ghi webhook log thất bại: %v", err)
	}
}

// Backoff trả về thời gian chờ trước lượt gửi thứ attempt+1:
// 30s, 1m, 2m, 4m, 8m, ... trần 1 giờ.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 8 { // 30s << 7 đã vượt trần, chặn luôn để khỏi tràn số
		return time.Hour
	}
	d := 30 * time.Second << (attempt - 1)
	if d > time.Hour {
		return time.Hour
	}
	return d
}

// TruncateBody cắt body trả về của webhook trước khi ghi log
func TruncateBody(b []byte) string {
	if len(b) > maxBodyLogSize {
		b = b[:maxBodyLogSize]
	}
	return string(b)
}
