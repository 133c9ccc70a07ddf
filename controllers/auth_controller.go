package controllers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/csat-server/config"
	"github.com/vnkhanh/csat-server/middleware"
	"github.com/vnkhanh/csat-server/models"
	"github.com/vnkhanh/csat-server/utils"
)

type DangKyReq struct {
	Ten     string `json:"ten" binding:"required,min=1"`
	Email   string `json:"email" binding:"required,email"`
	MatKhau string `json:"mat_khau" binding:"required,min=6"`
}

func Register(c *gin.Context) {
	var req DangKyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.NguoiDung{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email đã tồn tại"})
		return
	}

	hash, err := utils.HashPassword(req.MatKhau)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể mã hóa mật khẩu"})
		return
	}

	nd := models.NguoiDung{
		Ten:     req.Ten,
		Email:   req.Email,
		MatKhau: hash,
	}

	if err := config.DB.Create(&nd).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo tài khoản"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":       nd.ID,
			"ten":      nd.Ten,
			"email":    nd.Email,
			"ngay_tao": nd.NgayTao,
		},
	})
}

type DangNhapReq struct {
	Email   string `json:"email" binding:"required,email"`
	MatKhau string `json:"mat_khau" binding:"required"`
}

func Login(c *gin.Context) {
	var req DangNhapReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var nd models.NguoiDung
	if err := config.DB.Where("email = ?", req.Email).First(&nd).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email hoặc mật khẩu không đúng"})
		return
	}
	if !utils.CheckPassword(nd.MatKhau, req.MatKhau) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email hoặc mật khẩu không đúng"})
		return
	}

	token, err := utils.GenerateToken(fmt.Sprintf("%d", nd.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type GoogleLoginReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLoginHandler xác thực id_token của Google, tạo user nếu chưa có
func GoogleLoginHandler(c *gin.Context) {
	var req GoogleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	payload, err := idtoken.Validate(c.Request.Context(), req.IDToken, clientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token không hợp lệ"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	ten, _ := payload.Claims["name"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token thiếu email"})
		return
	}
	if ten == "" {
		ten = email
	}

	var nd models.NguoiDung
	if err := config.DB.Where("email = ?", email).First(&nd).Error; err != nil {
		nd = models.NguoiDung{Ten: ten, Email: email}
		if err := config.DB.Create(&nd).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo tài khoản"})
			return
		}
	}

	token, err := utils.GenerateToken(fmt.Sprintf("%d", nd.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GET /api/me
func Me(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)
	c.JSON(http.StatusOK, gin.H{
		"id":       u.ID,
		"ten":      u.Ten,
		"email":    u.Email,
		"ngay_tao": u.NgayTao,
	})
}
