package transaction_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/api/v1/admin/transaction"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.Transaction{})
	if err := db.AutoMigrate(&models.Transaction{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/v1/admin/transactions")
	{
		group.GET("", transaction.List)
		group.GET("/export", transaction.Export)
	}
	return router
}

func seedTransactions(t *testing.T) {
	t.Helper()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []models.Transaction{
		{CreatedAt: base, UserID: 1, Amount: 100, Source: "order", SourceRef: "o1", Multiplier: 1, Operator: "system"},
		{CreatedAt: base.Add(time.Hour), UserID: 1, Amount: -40, Source: "reward", Multiplier: 1, Operator: "admin"},
		{CreatedAt: base.Add(2 * time.Hour), UserID: 2, Amount: 8, Source: "streak", SourceRef: "2026-03-01", Multiplier: 1, Operator: "system"},
	}
	for i := range rows {
		if err := database.DB.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to seed transaction: %v", err)
		}
	}
}

func TestListTransactions(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	seedTransactions(t)

	req, _ := http.NewRequest("GET", "/api/v1/admin/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
}

func TestListTransactionsFilteredByUser(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	seedTransactions(t)

	req, _ := http.NewRequest("GET", "/api/v1/admin/transactions?user_id=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
}

func TestExportTransactionsCSV(t *testing.T) {
	setupTestDB()
	router := setupRouter()
	seedTransactions(t)

	req, _ := http.NewRequest("GET", "/api/v1/admin/transactions/export?source=order", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2) // header + one order row
	assert.Contains(t, lines[1], "o1")
}
