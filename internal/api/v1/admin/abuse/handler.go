package abuse

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// Get godoc
// @Summary Inspect a user's suspicion counter
// @Tags admin-abuse
// @Produce json
// @Security Bearer
// @Param user_id path int true "User ID"
// @Success 200 {object} utils.Response{data=models.AbuseCounter}
// @Router /admin/abuse/{user_id} [get]
func Get(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	counter, err := services.GetAbuseCounter(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load abuse counter"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Abuse counter retrieved", counter))
}
