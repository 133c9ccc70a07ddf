package worker

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vnkhanh/csat-server/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN chưa thiết lập, bỏ qua test cần DB")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.NguoiDung{},
		&models.DoanhNghiep{},
		&models.KhaoSat{},
		&models.SurveyLink{},
		&models.PhanHoi{},
		&models.WebhookJob{},
		&models.WebhookLog{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_webhook_jobs_pending
		ON webhook_jobs (doanh_nghiep_id, khao_sat_id, subject_id)
		WHERE status = 'pending'`).Error)

	require.NoError(t, db.Exec(`TRUNCATE webhook_logs, webhook_jobs, phan_hoi,
		survey_link, khao_sat, doanh_nghiep, nguoi_dung RESTART IDENTITY CASCADE`).Error)

	return db
}

func seedBusinessAndSurvey(t *testing.T, db *gorm.DB, webhookURL string) (models.DoanhNghiep, models.KhaoSat) {
	t.Helper()

	dn := models.DoanhNghiep{
		Ten:           "ACME",
		APIKey:        "test-api-key",
		WebhookURL:    webhookURL,
		WebhookSecret: "whsec_test_1234567890",
	}
	require.NoError(t, db.Create(&dn).Error)

	ks := models.KhaoSat{
		DoanhNghiepID: dn.ID,
		MaKhaoSat:     "nps-2024",
		TieuDe:        "NPS",
		DefaultTTL:    30,
		RedirectKhi:   models.RedirectNone,
	}
	require.NoError(t, db.Create(&ks).Error)
	return dn, ks
}
