package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/middleware"
)

// MaintenanceController lets administrators trigger housekeeping sweeps on demand
type MaintenanceController struct {
	maintenanceService services.MaintenanceService
	logger             zerolog.Logger
}

// NewMaintenanceController creates a new MaintenanceController
func NewMaintenanceController(maintenanceService services.MaintenanceService, logger zerolog.Logger) *MaintenanceController {
	return &MaintenanceController{maintenanceService: maintenanceService, logger: logger}
}

// LowBalanceCheck notifies students whose balance is under a threshold
// @Summary Run low balance check
// @Description Queues a low balance email for every opted-in student under the threshold
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LowBalanceCheckRequest false "Optional threshold override"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Number of notifications queued"
// @Failure 400 {object} dto.ErrorResponse "Negative threshold"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/maintenance/low-balance [post]
func (c *MaintenanceController) LowBalanceCheck(ctx *gin.Context) {
	var req dto.LowBalanceCheckRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	count, err := c.maintenanceService.NotifyLowBalances(ctx.Request.Context(), req.Threshold)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: count}, "Low balance check finished"))
}

// CleanupJobs removes completed jobs past retention
// @Summary Run job cleanup
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Number of jobs removed"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/maintenance/cleanup [post]
func (c *MaintenanceController) CleanupJobs(ctx *gin.Context) {
	count, err := c.maintenanceService.CleanupStaleJobs(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: count}, "Cleanup finished"))
}

// PrinterHealth reports printers low on paper or toner
// @Summary Check printer supplies
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Printer} "Printers under the supply threshold"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/maintenance/printer-health [get]
func (c *MaintenanceController) PrinterHealth(ctx *gin.Context) {
	printers, err := c.maintenanceService.CheckPrinterHealth(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(printers, ""))
}
