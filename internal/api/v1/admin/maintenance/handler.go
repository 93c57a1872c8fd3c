package maintenance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// SweepResponse reports how many rows a sweep touched.
type SweepResponse struct {
	Processed int `json:"processed"`
}

// GraceSweep godoc
// @Summary Demote users whose grace window expired
// @Tags admin-maintenance
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=SweepResponse}
// @Router /admin/maintenance/grace [post]
func GraceSweep(c *gin.Context) {
	processed, err := services.SweepGraceExpirations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Grace sweep failed"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Grace sweep completed", SweepResponse{Processed: processed}))
}

// StreakSweep godoc
// @Summary Reset streaks broken by inactivity
// @Tags admin-maintenance
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=SweepResponse}
// @Router /admin/maintenance/streaks [post]
func StreakSweep(c *gin.Context) {
	processed, err := services.SweepBrokenStreaks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Streak sweep failed"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Streak sweep completed", SweepResponse{Processed: processed}))
}

// ExpirySweep godoc
// @Summary Expire points older than the configured horizon
// @Tags admin-maintenance
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=SweepResponse}
// @Router /admin/maintenance/expiry [post]
func ExpirySweep(c *gin.Context) {
	processed, err := services.SweepExpiredXP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Expiry sweep failed"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Expiry sweep completed", SweepResponse{Processed: processed}))
}

// CacheInvalidation godoc
// @Summary Invalidate shared config caches
// @Tags admin-maintenance
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Router /admin/maintenance/caches [post]
func CacheInvalidation(c *gin.Context) {
	services.InvalidateConfigCaches()
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Config caches invalidated", nil))
}
