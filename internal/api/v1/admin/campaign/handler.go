package campaign

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// SetRequest installs the global multiplier window.
type SetRequest struct {
	Multiplier float64   `json:"multiplier" binding:"required"`
	Label      string    `json:"label"`
	StartsAt   time.Time `json:"starts_at" binding:"required"`
	EndsAt     time.Time `json:"ends_at" binding:"required"`
}

// Get godoc
// @Summary Get the configured campaign
// @Tags admin-campaign
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=models.Campaign}
// @Failure 404 {object} utils.Response
// @Router /admin/campaign [get]
func Get(c *gin.Context) {
	campaign, err := services.GetCampaign()
	if err != nil {
		if errors.Is(err, services.ErrNoCampaign) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load campaign"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Campaign retrieved", campaign))
}

// Set godoc
// @Summary Set the campaign multiplier window
// @Tags admin-campaign
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SetRequest true "Campaign window"
// @Success 200 {object} utils.Response{data=models.Campaign}
// @Failure 400 {object} utils.Response
// @Router /admin/campaign [post]
func Set(c *gin.Context) {
	var req SetRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	campaign, err := services.SetCampaign(req.Multiplier, req.Label, req.StartsAt, req.EndsAt)
	if err != nil {
		if errors.Is(err, services.ErrCampaignMultiplier) || errors.Is(err, services.ErrCampaignWindow) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to set campaign"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Campaign set", campaign))
}

// Clear godoc
// @Summary Clear the campaign
// @Tags admin-campaign
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Router /admin/campaign [delete]
func Clear(c *gin.Context) {
	if err := services.ClearCampaign(); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to clear campaign"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Campaign cleared", nil))
}
