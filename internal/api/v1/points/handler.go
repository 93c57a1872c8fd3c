package points

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// Award godoc
// @Summary Award XP
// @Description Push a positive transaction through the earn path. The returned amount reflects cap clamping and campaign multipliers; zero with HTTP 200 is a valid soft outcome.
// @Tags points
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AwardRequest true "Award request"
// @Success 200 {object} utils.Response{data=AmountResponse}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /points/award [post]
func Award(c *gin.Context) {
	var req AwardRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	svcReq := services.AwardRequest{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Source:    req.Source,
		SourceRef: req.SourceRef,
		Note:      req.Note,
		Operator:  operatorName(c),
		ClientIP:  req.ClientIP,
	}
	if svcReq.ClientIP == "" {
		svcReq.ClientIP = c.ClientIP()
	}
	if req.Actor != nil {
		svcReq.Actor = &services.Actor{
			UserID: req.Actor.UserID,
			IP:     req.Actor.IP,
			Email:  req.Actor.Email,
		}
	}

	awarded, err := services.Award(svcReq)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("XP awarded", AmountResponse{Amount: awarded}))
}

// Deduct godoc
// @Summary Deduct XP
// @Description Write a negative transaction. Kind "spend" fails on insufficient balance; "system" always succeeds.
// @Tags points
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body DeductRequest true "Deduct request"
// @Success 200 {object} utils.Response{data=AmountResponse}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /points/deduct [post]
func Deduct(c *gin.Context) {
	var req DeductRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	kind := services.SpendDeduct
	if req.Kind == "system" {
		kind = services.SystemDeduct
	}

	deducted, err := services.Deduct(services.DeductRequest{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Source:    req.Source,
		SourceRef: req.SourceRef,
		Note:      req.Note,
		Operator:  operatorName(c),
		Kind:      kind,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("XP deducted", AmountResponse{Amount: deducted}))
}

// Activity godoc
// @Summary Record daily activity
// @Description Advance the streak machine for a user and award the streak bonus. Repeated calls on the same calendar day are no-ops.
// @Tags points
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ActivityRequest true "Activity request"
// @Success 200 {object} utils.Response{data=services.ActivityResult}
// @Failure 400 {object} utils.Response
// @Router /points/activity [post]
func Activity(c *gin.Context) {
	var req ActivityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := services.RecordActivity(req.UserID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Activity recorded", result))
}

// Balance godoc
// @Summary Get balance summary
// @Description Display-grade balance, level and benefits. May be up to 30 seconds stale.
// @Tags points
// @Produce json
// @Security Bearer
// @Param user_id query int true "User ID"
// @Success 200 {object} utils.Response{data=services.BalanceSummary}
// @Failure 404 {object} utils.Response
// @Router /points/balance [get]
func Balance(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}

	summary, err := services.GetBalance(userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance retrieved", summary))
}

// History godoc
// @Summary Get transaction history
// @Description Paginated ledger read for a user, newest first.
// @Tags points
// @Produce json
// @Security Bearer
// @Param user_id query int true "User ID"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} utils.Response{data=HistoryResponse}
// @Failure 400 {object} utils.Response
// @Router /points/history [get]
func History(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	transactions, total, err := services.GetUserHistory(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load history"))
		return
	}

	entries := make([]HistoryEntry, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, HistoryEntry{
			ID:         t.ID,
			CreatedAt:  t.CreatedAt,
			Amount:     t.Amount,
			Source:     t.Source,
			SourceRef:  t.SourceRef,
			Multiplier: t.Multiplier,
			Note:       t.Note,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("History retrieved", HistoryResponse{
		Entries:  entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}))
}

func queryUserID(c *gin.Context) (uint, bool) {
	raw := c.Query("user_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "user_id query parameter is required"))
		return 0, false
	}
	return uint(id), true
}

func operatorName(c *gin.Context) string {
	if v, exists := c.Get("user"); exists {
		if u, ok := v.(models.User); ok && u.Username != "" {
			return u.Username
		}
	}
	return "system"
}

func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
	case errors.Is(err, services.ErrSelfAction), errors.Is(err, services.ErrSharedOrigin):
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
	}
}
