package transaction

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// List godoc
// @Summary List ledger entries
// @Description Filtered, paginated view of the append-only XP ledger.
// @Tags admin-transactions
// @Produce json
// @Security Bearer
// @Param user_id query int false "User ID"
// @Param source query string false "Source tag"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} utils.Response{data=ListResponse}
// @Router /admin/transactions [get]
func List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid query parameters"))
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 200 {
		query.Limit = 20
	}

	transactions, total, err := services.FindTransactions(services.TransactionFilter{
		UserID:    query.UserID,
		Source:    query.Source,
		StartTime: query.StartTime,
		EndTime:   query.EndTime,
		MinAmount: query.MinAmount,
		MaxAmount: query.MaxAmount,
		Page:      query.Page,
		Limit:     query.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list transactions"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transactions retrieved", ListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         query.Page,
		Limit:        query.Limit,
	}))
}

// Export godoc
// @Summary Export ledger entries as CSV
// @Tags admin-transactions
// @Produce text/csv
// @Security Bearer
// @Param user_id query int false "User ID"
// @Param source query string false "Source tag"
// @Success 200 {file} file
// @Router /admin/transactions/export [get]
func Export(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid query parameters"))
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 10000
	}

	transactions, _, err := services.FindTransactions(services.TransactionFilter{
		UserID:    query.UserID,
		Source:    query.Source,
		StartTime: query.StartTime,
		EndTime:   query.EndTime,
		MinAmount: query.MinAmount,
		MaxAmount: query.MaxAmount,
		Page:      query.Page,
		Limit:     query.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to export transactions"))
		return
	}

	data, err := services.GenerateTransactionCSV(transactions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate CSV"))
		return
	}

	filename := fmt.Sprintf("xp-ledger-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
