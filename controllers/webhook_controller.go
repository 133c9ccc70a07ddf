package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/middleware"
	"github.com/vnkhanh/csat-server/models"
	"github.com/vnkhanh/csat-server/worker"
)

// client riêng cho gửi thử, cùng timeout với dispatcher
var testClient = &http.Client{Timeout: 8 * time.Second}

type WebhookConfigReq struct {
	WebhookURL    string `json:"webhook_url" binding:"required,url"`
	WebhookSecret string `json:"webhook_secret" binding:"required,min=16"`
}

// PUT /api/businesses/:id/webhook
func UpdateWebhookConfig(c *gin.Context) {
	dn := c.MustGet(middleware.CtxDoanhNghiep).(models.DoanhNghiep)

	var req WebhookConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if err := config.DB.Model(&models.DoanhNghiep{}).Where("id = ?", dn.ID).
		Updates(map[string]interface{}{
			"webhook_url":    req.WebhookURL,
			"webhook_secret": req.WebhookSecret,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể cập nhật webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"webhook_url": req.WebhookURL})
}

type TestWebhookReq struct {
	SubjectID string  `json:"subject_id"`
	Score     int     `json:"score"`
	Comment   *string `json:"comment"`
}

// POST /api/businesses/:id/webhook/test
// Gửi thử đồng bộ với cấu hình hiện tại, KHÔNG đụng hàng đợi — dùng để
// doanh nghiệp kiểm tra cấu hình, tách biệt khỏi dispatcher.
func SendTestWebhook(c *gin.Context) {
	dn := c.MustGet(middleware.CtxDoanhNghiep).(models.DoanhNghiep)

	if dn.WebhookURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Chưa cấu hình webhook_url"})
		return
	}

	var req TestWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		// body trống cũng được, gửi payload mẫu
		req = TestWebhookReq{}
	}
	if req.SubjectID == "" {
		req.SubjectID = "test-subject"
	}

	payload := worker.WebhookPayload{
		SurveyID:  "test-survey",
		SubjectID: req.SubjectID,
		Score:     req.Score,
		Comment:   req.Comment,
	}

	statusCode, body, err := worker.SendWebhook(c.Request.Context(), testClient, dn.WebhookURL, dn.WebhookSecret, payload)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          statusCode >= 200 && statusCode < 300,
		"status_code": statusCode,
		"body":        body,
	})
}

// GET /api/businesses/:id/deliveries
func ListDeliveries(c *gin.Context) {
	dn := c.MustGet(middleware.CtxDoanhNghiep).(models.DoanhNghiep)

	var logs []models.WebhookLog
	if err := config.DB.
		Where("doanh_nghiep_id = ?", dn.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deliveries": logs})
}
