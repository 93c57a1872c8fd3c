package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/config"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/admin/abuse"
	adminCampaign "github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/admin/campaign"
	adminLevels "github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/admin/levels"
	adminMaintenance "github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/admin/maintenance"
	adminTransaction "github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/admin/transaction"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/auth"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/points"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/middleware"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.EventWebhookURL != "" {
		services.RegisterWebhookSubscriber(cfg.EventWebhookURL)
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			points.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminLevels.RegisterRoutes(admin)
			adminCampaign.RegisterRoutes(admin)
			adminTransaction.RegisterRoutes(admin)
			adminMaintenance.RegisterRoutes(admin)
			abuse.RegisterRoutes(admin)
		}
	}

	return router, nil
}
