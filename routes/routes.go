package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/csat-server/controllers"
	"github.com/vnkhanh/csat-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	// Endpoint public cho người trả lời: không auth, không CSRF,
	// chỉ giới hạn tần suất theo IP. 60 req/phút/IP, burst 10.
	captureLimiter := middleware.NewIPRateLimiter(60, 10, 5*time.Minute)
	r.GET("/r", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Thiếu token"})
	})
	public := r.Group("/r")
	public.Use(middleware.RateLimitByIP(captureLimiter))
	{
		public.GET("/:token", controllers.CaptureResponse)
		public.POST("/:token/comment", controllers.AttachComment)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLoginHandler)
		}
		protected := api.Group("/")
		protected.Use(middleware.AuthJWT())
		{
			protected.GET("/me", controllers.Me)
		}

		businesses := api.Group("/businesses")
		businesses.Use(middleware.AuthJWT())
		{
			businesses.POST("", controllers.CreateBusiness)
			businesses.GET("", controllers.ListMyBusinesses)
			businesses.GET("/:id", middleware.CheckBusinessOwner(), controllers.GetBusiness)
			businesses.PUT("/:id/webhook", middleware.CheckBusinessOwner(), controllers.UpdateWebhookConfig)
			businesses.POST("/:id/webhook/test", middleware.CheckBusinessOwner(), controllers.SendTestWebhook)
			businesses.GET("/:id/deliveries", middleware.CheckBusinessOwner(), controllers.ListDeliveries)
		}

		surveys := api.Group("/surveys")
		{
			surveys.POST("", middleware.AuthJWT(), controllers.CreateSurvey)
			surveys.GET("", middleware.AuthJWT(), controllers.GetMySurveys)
			// mint nhận cả X-Api-Key (backend doanh nghiệp gọi thẳng) lẫn JWT
			surveys.GET("/:id", middleware.AuthAPIKeyOrJWT(), controllers.GetSurveyDetail)
			surveys.POST("/:id/links", middleware.AuthAPIKeyOrJWT(), controllers.MintLinks)
		}
	}
}
