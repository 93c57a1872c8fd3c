package points_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/points"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

func setupTestDB() {
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
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/v1/points")
	{
		group.POST("/award", points.Award)
		group.POST("/deduct", points.Deduct)
		group.POST("/activity", points.Activity)
		group.GET("/balance", points.Balance)
		group.GET("/history", points.History)
	}
	return router
}

func seedUser(t *testing.T, username string) models.User {
	t.Helper()

	user := models.User{Username: username, Email: username + "@example.com", Password: "hashed", Role: "user", IsActive: true}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAwardEndpoint(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	user := seedUser(t, "api-award")

	w := postJSON(router, "/api/v1/points/award", gin.H{
		"user_id":    user.ID,
		"amount":     100,
		"source":     "order",
		"source_ref": "order-1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(100), data["amount"])

	// retry is a 200 with a zero amount
	w = postJSON(router, "/api/v1/points/award", gin.H{
		"user_id":    user.ID,
		"amount":     100,
		"source":     "order",
		"source_ref": "order-1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["amount"])
}

func TestAwardEndpointValidation(t *testing.T) {
	setupTestDB()
	router := setupRouter()

	w := postJSON(router, "/api/v1/points/award", gin.H{"user_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/v1/points/award", gin.H{"user_id": 1, "amount": -5, "source": "order"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/v1/points/award", gin.H{"user_id": 999, "amount": 10, "source": "order"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAwardEndpointSelfReferralForbidden(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	user := seedUser(t, "api-selfref")

	w := postJSON(router, "/api/v1/points/award", gin.H{
		"user_id": user.ID,
		"amount":  100,
		"source":  "referral",
		"actor":   gin.H{"user_id": user.ID},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeductEndpointInsufficientBalance(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	user := seedUser(t, "api-deduct")

	w := postJSON(router, "/api/v1/points/award", gin.H{
		"user_id": user.ID, "amount": 50, "source": "order", "source_ref": "d-1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/v1/points/deduct", gin.H{
		"user_id": user.ID, "amount": 500, "source": "reward", "kind": "spend",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(router, "/api/v1/points/deduct", gin.H{
		"user_id": user.ID, "amount": 20, "source": "reward", "kind": "spend",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBalanceEndpoint(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	user := seedUser(t, "api-balance")

	w := postJSON(router, "/api/v1/points/award", gin.H{
		"user_id": user.ID, "amount": 120, "source": "order", "source_ref": "b-1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest("GET", "/api/v1/points/balance?user_id="+itoa(user.ID), nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(120), data["total_xp"])

	// missing user_id
	req, _ = http.NewRequest("GET", "/api/v1/points/balance", nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	user := seedUser(t, "api-history")

	for _, ref := range []string{"h-1", "h-2", "h-3"} {
		w := postJSON(router, "/api/v1/points/award", gin.H{
			"user_id": user.ID, "amount": 10, "source": "order", "source_ref": ref,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req, _ := http.NewRequest("GET", "/api/v1/points/history?user_id="+itoa(user.ID)+"&page=1&page_size=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
	assert.Len(t, data["entries"], 2)
}

func TestActivityEndpoint(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	user := seedUser(t, "api-activity")

	w := postJSON(router, "/api/v1/points/activity", gin.H{"user_id": user.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["counted"])
	assert.Equal(t, float64(1), data["streak"])

	// same day: not counted again
	w = postJSON(router, "/api/v1/points/activity", gin.H{"user_id": user.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["counted"])
}
