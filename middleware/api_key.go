package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/models"
)

// AuthAPIKeyOrJWT cho phép gọi server-to-server bằng header X-Api-Key
// (nạp luôn doanh nghiệp vào context), hoặc đăng nhập dashboard bằng JWT.
// Dùng cho endpoint mint link: backend của doanh nghiệp gọi trực tiếp.
func AuthAPIKeyOrJWT() gin.HandlerFunc {
	jwtAuth := AuthJWT()
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Api-Key")
		if apiKey != "" {
			var dn models.DoanhNghiep
			if err := config.DB.Where("api_key = ?", apiKey).First(&dn).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "API key không hợp lệ"})
				return
			}
			c.Set(CtxDoanhNghiep, dn)
			c.Next()
			return
		}
		jwtAuth(c)
	}
}
