package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/middleware"
	"github.com/vnkhanh/csat-server/models"
)

type CreateSurveyReq struct {
	DoanhNghiepID uint    `json:"doanh_nghiep_id" binding:"required"`
	MaKhaoSat     string  `json:"ma_khao_sat" binding:"required,min=1,max=100"`
	TieuDe        string  `json:"tieu_de" binding:"required,min=1,max=255"`
	MoTa          string  `json:"mo_ta"`
	DefaultTTL    *int    `json:"default_ttl_days"`
	RedirectURL   *string `json:"redirect_url"`
	RedirectKhi   *string `json:"redirect_timing"` // none | pre_comment | post_comment
}

// POST /api/surveys
func CreateSurvey(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req CreateSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var dn models.DoanhNghiep
	if err := config.DB.First(&dn, req.DoanhNghiepID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Doanh nghiệp không tồn tại"})
		return
	}
	if dn.NguoiTaoID == nil || *dn.NguoiTaoID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Bạn không có quyền thao tác doanh nghiệp này"})
		return
	}

	ks := models.KhaoSat{
		DoanhNghiepID: dn.ID,
		MaKhaoSat:     req.MaKhaoSat,
		TieuDe:        req.TieuDe,
		MoTa:          req.MoTa,
		DefaultTTL:    30,
		RedirectKhi:   models.RedirectNone,
	}
	if req.DefaultTTL != nil {
		if *req.DefaultTTL <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "default_ttl_days phải là số nguyên dương"})
			return
		}
		ks.DefaultTTL = *req.DefaultTTL
	}
	if req.RedirectKhi != nil {
		switch *req.RedirectKhi {
		case models.RedirectNone, models.RedirectPreComment, models.RedirectPostComment:
			ks.RedirectKhi = *req.RedirectKhi
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "redirect_timing không hợp lệ"})
			return
		}
	}
	ks.RedirectURL = req.RedirectURL

	if err := config.DB.Create(&ks).Error; err != nil {
		// trùng ma_khao_sat trong cùng doanh nghiệp
		c.JSON(http.StatusConflict, gin.H{"message": "ma_khao_sat đã tồn tại trong doanh nghiệp"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"khao_sat": ks})
}

// GET /api/surveys — khảo sát thuộc các doanh nghiệp của user
func GetMySurveys(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var list []models.KhaoSat
	err := config.DB.
		Joins("JOIN doanh_nghiep ON doanh_nghiep.id = khao_sat.doanh_nghiep_id").
		Where("doanh_nghiep.nguoi_tao_id = ?", u.ID).
		Order("khao_sat.ngay_tao DESC").
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"khao_sats": list})
}

// GET /api/surveys/:id
func GetSurveyDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ID không hợp lệ"})
		return
	}

	var ks models.KhaoSat
	if err := config.DB.First(&ks, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Khảo sát không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}

	if !callerOwnsSurvey(c, &ks) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Bạn không có quyền xem khảo sát này"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"khao_sat": ks})
}
