package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/middleware"
	"github.com/vnkhanh/csat-server/models"
	"github.com/vnkhanh/csat-server/utils"
)

type MintLinksReq struct {
	SubjectID string `json:"subject_id" binding:"required,min=1,max=255"`
	TTLDays   *int   `json:"ttl_days"` // mặc định default_ttl_days của khảo sát
}

// POST /api/surveys/:id/links
// Tạo trọn bộ 11 link (điểm 0-10) cho một subject trong MỘT transaction:
// không bao giờ có bộ link thiếu điểm. Mint lại cho cùng subject chỉ tạo
// thêm bộ link mới độc lập; ràng buộc unique của phan_hoi mới là thứ chặn
// double-count, không phải bảng link.
func MintLinks(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ID khảo sát không hợp lệ"})
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

	// Caller phải là chủ khảo sát: doanh nghiệp từ API key, hoặc user sở hữu
	if !callerOwnsSurvey(c, &ks) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Bạn không có quyền thao tác khảo sát này"})
		return
	}

	var req MintLinksReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu gửi không hợp lệ: " + err.Error()})
		return
	}

	ttlDays := ks.DefaultTTL
	if req.TTLDays != nil {
		if *req.TTLDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "ttl_days phải là số nguyên dương"})
			return
		}
		ttlDays = *req.TTLDays
	}
	expiresAt := time.Now().AddDate(0, 0, ttlDays)

	links := make([]models.SurveyLink, 0, 11)
	for diem := 0; diem <= 10; diem++ {
		token, err := utils.GenerateLinkToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể sinh token"})
			return
		}
		links = append(links, models.SurveyLink{
			Token:     token,
			KhaoSatID: ks.ID,
			SubjectID: req.SubjectID,
			Diem:      diem,
			ExpiresAt: expiresAt,
		})
	}

	if err := config.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&links).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo link"})
		return
	}

	origin := os.Getenv("PUBLIC_ORIGIN")
	if origin == "" {
		origin = "http://localhost:8080"
	}
	urls := gin.H{}
	for _, l := range links {
		urls[strconv.Itoa(l.Diem)] = fmt.Sprintf("%s/r/%s", origin, l.Token)
	}

	c.JSON(http.StatusCreated, gin.H{
		"links":      urls,
		"expires_at": expiresAt,
	})
}

// callerOwnsSurvey: API key -> doanh nghiệp của khảo sát; JWT -> owner của doanh nghiệp
func callerOwnsSurvey(c *gin.Context, ks *models.KhaoSat) bool {
	if v, ok := c.Get(middleware.CtxDoanhNghiep); ok {
		dn := v.(models.DoanhNghiep)
		return dn.ID == ks.DoanhNghiepID
	}
	if v, ok := c.Get(middleware.CtxUser); ok {
		u := v.(models.NguoiDung)
		var dn models.DoanhNghiep
		if err := config.DB.First(&dn, ks.DoanhNghiepID).Error; err != nil {
			return false
		}
		return dn.NguoiTaoID != nil && *dn.NguoiTaoID == u.ID
	}
	return false
}
