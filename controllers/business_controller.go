package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/middleware"
	"github.com/vnkhanh/csat-server/models"
)

type CreateBusinessReq struct {
	Ten string `json:"ten" binding:"required,min=1,max=100"`
}

// POST /api/businesses
// API key trả về đúng MỘT lần lúc tạo; các response sau không kèm nữa.
func CreateBusiness(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req CreateBusinessReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	dn := models.DoanhNghiep{
		Ten:        req.Ten,
		NguoiTaoID: &u.ID,
		APIKey:     uuid.New().String(),
	}
	if err := config.DB.Create(&dn).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo doanh nghiệp"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"doanh_nghiep": dn,
		"api_key":      dn.APIKey,
	})
}

// GET /api/businesses/:id
func GetBusiness(c *gin.Context) {
	dn := c.MustGet(middleware.CtxDoanhNghiep).(models.DoanhNghiep)
	c.JSON(http.StatusOK, gin.H{"doanh_nghiep": dn})
}

// GET /api/businesses — doanh nghiệp của chính user
func ListMyBusinesses(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var dns []models.DoanhNghiep
	if err := config.DB.Where("nguoi_tao_id = ?", u.ID).Order("ngay_tao DESC").Find(&dns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doanh_nghieps": dns})
}
