package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/config"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/pkg/logger"
)

// @title XP Ledger & Leveling API
// @version 1.0
// @description Append-only XP ledger with tier leveling, demotion grace, streak bonuses, abuse guards and campaign multipliers.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.UserLevelState{},
		&models.LevelConfig{},
		&models.StreakState{},
		&models.Campaign{},
		&models.AbuseCounter{},
		&models.IdempotencyKey{},
		&models.EventRecord{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	initAdminUser()
	seedDefaultLevels()

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func initAdminUser() {
	adminUsername := "admin@admin.com"
	adminPassword := "RealX1234"

	var adminUser models.User
	result := database.DB.Where("username = ?", adminUsername).First(&adminUser)

	if result.Error != nil {
		if result.Error.Error() == "record not found" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}

			adminUser = models.User{
				Username: adminUsername,
				Password: string(hashedPassword),
				Role:     "admin",
				IsActive: true,
			}
			if err := database.DB.Create(&adminUser).Error; err != nil {
				log.Fatalf("failed to create admin user: %v", err)
			}
			log.Printf("admin user %s created", adminUsername)
		}
	}
}

// seedDefaultLevels installs a starter tier table on an empty database so
// the evaluator has something to work with before the admin configures one.
func seedDefaultLevels() {
	var count int64
	database.DB.Model(&models.LevelConfig{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []models.LevelConfig{
		{LevelNumber: 1, Name: "Bronze", XPRequired: 100, DiscountPercent: 0, SortOrder: 1, Active: true},
		{LevelNumber: 2, Name: "Silver", XPRequired: 500, DiscountPercent: 3, SortOrder: 2, Active: true},
		{LevelNumber: 3, Name: "Gold", XPRequired: 2000, DiscountPercent: 5, FreeShipping: true, SortOrder: 3, Active: true},
		{LevelNumber: 4, Name: "Platinum", XPRequired: 10000, DiscountPercent: 10, FreeShipping: true, EarlyAccess: true, Installments: true, SortOrder: 4, Active: true},
	}
	for i := range defaults {
		if err := database.DB.Create(&defaults[i]).Error; err != nil {
			log.Printf("failed to seed level %d: %v", defaults[i].LevelNumber, err)
		}
	}
}
