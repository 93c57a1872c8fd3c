package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	allModels := []interface{}{
		&models.User{},
		&models.Transaction{},
		&models.UserLevelState{},
		&models.LevelConfig{},
		&models.StreakState{},
		&models.Campaign{},
		&models.AbuseCounter{},
		&models.IdempotencyKey{},
		&models.EventRecord{},
	}

	db.Migrator().DropTable(allModels...)
	if err := db.AutoMigrate(allModels...); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db

	ResetEventSubscribers()
	ResetAwardTransforms()
	ResetBenefitResolvers()
	t.Cleanup(func() {
		timeNow = time.Now
		ResetEventSubscribers()
		ResetAwardTransforms()
		ResetBenefitResolvers()
	})
}

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		mr.Close()
		database.RedisClient = nil
	})
	return mr
}

// setClock pins the service clock to a movable instant.
func setClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()

	current := at
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })
	return &current
}

func seedUser(t *testing.T, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		Password:     "hashed",
		Role:         "user",
		IsActive:     true,
		RegisteredAt: timeNow(),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedLevels(t *testing.T) {
	t.Helper()

	levels := []models.LevelConfig{
		{LevelNumber: 1, Name: "Bronze", XPRequired: 100, DiscountPercent: 0, SortOrder: 1, Active: true},
		{LevelNumber: 2, Name: "Silver", XPRequired: 500, DiscountPercent: 3, SortOrder: 2, Active: true},
		{LevelNumber: 3, Name: "Gold", XPRequired: 2000, DiscountPercent: 5, FreeShipping: true, SortOrder: 3, Active: true},
		{LevelNumber: 4, Name: "Platinum", XPRequired: 10000, DiscountPercent: 10, FreeShipping: true, EarlyAccess: true, SortOrder: 4, Active: true},
	}
	for i := range levels {
		if err := database.DB.Create(&levels[i]).Error; err != nil {
			t.Fatalf("failed to seed level: %v", err)
		}
	}
}

// captureEvents records every published event for assertions.
func captureEvents() *[]Event {
	events := &[]Event{}
	SubscribeEvents(func(e Event) {
		*events = append(*events, e)
	})
	return events
}

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}

func countEvents(events []Event, name string) int {
	n := 0
	for _, e := range events {
		if e.Name == name {
			n++
		}
	}
	return n
}

func userState(t *testing.T, userID uint) models.UserLevelState {
	t.Helper()

	var state models.UserLevelState
	if err := database.DB.First(&state, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load level state: %v", err)
	}
	return state
}

func transactionCount(t *testing.T, userID uint) int64 {
	t.Helper()

	var count int64
	database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count)
	return count
}
