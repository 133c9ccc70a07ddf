package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/csat-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB khởi tạo kết nối PostgreSQL và migrate bảng
func ConnectDB() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Ho_Chi_Minh",
		host, user, password, dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	// Auto migrate bảng
	err = db.AutoMigrate(
		&models.NguoiDung{},
		&models.DoanhNghiep{},
		&models.KhaoSat{},
		&models.SurveyLink{},
		&models.PhanHoi{},
		&models.WebhookJob{},
		&models.WebhookLog{},
	)
	if err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}

	// Gorm tag không khai báo được partial unique index:
	// mỗi (doanh_nghiep, khao_sat, subject) chỉ có tối đa 1 job đang pending.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_webhook_jobs_pending
		ON webhook_jobs (doanh_nghiep_id, khao_sat_id, subject_id)
		WHERE status = 'pending'`).Error
	if err != nil {
		logrus.Fatalf("failed to create pending index: %v", err)
	}

	DB = db
	logrus.Println("Connected to PostgreSQL & migrated successfully")
}
