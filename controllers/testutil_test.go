package controllers_test

import (
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/models"
	"github.com/vnkhanh/csat-server/routes"
	"github.com/vnkhanh/csat-server/utils"
)

// openTestDB kết nối Postgres test qua TEST_DATABASE_DSN, migrate và dọn
// sạch dữ liệu. Không có DSN thì skip (giống convention integration test).
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

	config.DB = db
	return db
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

// seedSurvey tạo doanh nghiệp (kèm webhook config) + khảo sát
func seedSurvey(t *testing.T, db *gorm.DB, redirectKhi string, redirectURL *string) (models.DoanhNghiep, models.KhaoSat) {
	t.Helper()

	dn := models.DoanhNghiep{
		Ten:           "ACME",
		APIKey:        uuid.New().String(),
		WebhookURL:    "https://acme.example.com/hooks/csat",
		WebhookSecret: "whsec_test_1234567890",
	}
	require.NoError(t, db.Create(&dn).Error)

	ks := models.KhaoSat{
		DoanhNghiepID: dn.ID,
		MaKhaoSat:     "nps-" + uuid.New().String()[:8],
		TieuDe:        "Bạn hài lòng tới đâu?",
		DefaultTTL:    30,
		RedirectKhi:   redirectKhi,
		RedirectURL:   redirectURL,
	}
	require.NoError(t, db.Create(&ks).Error)
	return dn, ks
}

// seedLinks tạo trọn bộ 11 link cho một subject, trả về map điểm -> link
func seedLinks(t *testing.T, db *gorm.DB, ks models.KhaoSat, subjectID string, expiresAt time.Time) map[int]models.SurveyLink {
	t.Helper()

	out := make(map[int]models.SurveyLink, 11)
	for diem := 0; diem <= 10; diem++ {
		token, err := utils.GenerateLinkToken()
		require.NoError(t, err)
		l := models.SurveyLink{
			Token:     token,
			KhaoSatID: ks.ID,
			SubjectID: subjectID,
			Diem:      diem,
			ExpiresAt: expiresAt,
		}
		require.NoError(t, db.Create(&l).Error)
		out[diem] = l
	}
	return out
}
