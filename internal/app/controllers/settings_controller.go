package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/pricing"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/middleware"
)

// SettingsController exposes pricing and upload settings
type SettingsController struct {
	settingsService services.SettingsService
	logger          zerolog.Logger
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService services.SettingsService, logger zerolog.Logger) *SettingsController {
	return &SettingsController{settingsService: settingsService, logger: logger}
}

// GetSettings returns the public settings
// @Summary Get settings
// @Description Returns the price table, accepted formats, top-up range and upload limit
// @Tags settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Settings"
// @Router /settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.settingsService.Get(ctx.Request.Context()), ""))
}

// UpdatePricing replaces the price table
// @Summary Update pricing
// @Description Prices are rounded to cents. Jobs already submitted keep their cost.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body pricing.Pricing true "Complete price table"
// @Success 200 {object} dto.APIResponse{data=pricing.Pricing} "Pricing updated"
// @Failure 400 {object} dto.ErrorResponse "Negative price or multiplier below 1"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/settings/pricing [put]
func (c *SettingsController) UpdatePricing(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	var req pricing.Pricing
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	updated, err := c.settingsService.UpdatePricing(ctx.Request.Context(), principal.ID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated, "Pricing updated"))
}
