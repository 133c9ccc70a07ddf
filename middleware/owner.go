package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/models"
)

// CheckBusinessOwner: nạp doanh nghiệp vào context & xác thực sở hữu
func CheckBusinessOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		// user hiện tại (đã được AuthJWT set vào context với key CtxUser = "user")
		u := c.MustGet(CtxUser).(models.NguoiDung)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "ID không hợp lệ"})
			return
		}

		var dn models.DoanhNghiep
		if err := config.DB.First(&dn, id).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Doanh nghiệp không tồn tại"})
			return
		}

		// Chỉ owner được thao tác
		if dn.NguoiTaoID == nil || *dn.NguoiTaoID != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Bạn không có quyền thao tác doanh nghiệp này"})
			return
		}

		c.Set(CtxDoanhNghiep, dn)
		c.Next()
	}
}
