package levels

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/services"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// List godoc
// @Summary List tier definitions
// @Tags admin-levels
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=[]models.LevelConfig}
// @Router /admin/levels [get]
func List(c *gin.Context) {
	configs, err := services.ListLevelConfigs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list levels"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Levels retrieved", configs))
}

// Create godoc
// @Summary Create a tier
// @Tags admin-levels
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body LevelRequest true "Level definition"
// @Success 200 {object} utils.Response{data=models.LevelConfig}
// @Failure 409 {object} utils.Response
// @Router /admin/levels [post]
func Create(c *gin.Context) {
	var req LevelRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	lc := models.LevelConfig{
		LevelNumber:     req.LevelNumber,
		Name:            req.Name,
		XPRequired:      req.XPRequired,
		DiscountPercent: req.DiscountPercent,
		FreeShipping:    req.FreeShipping,
		EarlyAccess:     req.EarlyAccess,
		Installments:    req.Installments,
		SortOrder:       req.SortOrder,
		Active:          true,
	}
	if req.Active != nil {
		lc.Active = *req.Active
	}

	if err := services.CreateLevelConfig(&lc); err != nil {
		if errors.Is(err, services.ErrLevelExists) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create level"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Level created", lc))
}

// Update godoc
// @Summary Update a tier
// @Tags admin-levels
// @Accept json
// @Produce json
// @Security Bearer
// @Param level path int true "Level number"
// @Param request body LevelUpdateRequest true "Fields to update"
// @Success 200 {object} utils.Response{data=models.LevelConfig}
// @Failure 404 {object} utils.Response
// @Router /admin/levels/{level} [put]
func Update(c *gin.Context) {
	levelNumber, ok := pathLevel(c)
	if !ok {
		return
	}

	var req LevelUpdateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.XPRequired != nil {
		updates["xp_required"] = *req.XPRequired
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.FreeShipping != nil {
		updates["free_shipping"] = *req.FreeShipping
	}
	if req.EarlyAccess != nil {
		updates["early_access"] = *req.EarlyAccess
	}
	if req.Installments != nil {
		updates["installments"] = *req.Installments
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	lc, err := services.UpdateLevelConfig(levelNumber, updates)
	if err != nil {
		if errors.Is(err, services.ErrLevelNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update level"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Level updated", lc))
}

// Delete godoc
// @Summary Delete a tier
// @Tags admin-levels
// @Produce json
// @Security Bearer
// @Param level path int true "Level number"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /admin/levels/{level} [delete]
func Delete(c *gin.Context) {
	levelNumber, ok := pathLevel(c)
	if !ok {
		return
	}

	if err := services.DeleteLevelConfig(levelNumber); err != nil {
		if errors.Is(err, services.ErrLevelNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete level"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Level deleted", nil))
}

func pathLevel(c *gin.Context) (int, bool) {
	levelNumber, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid level number"))
		return 0, false
	}
	return levelNumber, true
}
