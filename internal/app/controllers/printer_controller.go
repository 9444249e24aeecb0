package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/middleware"
)

// PrinterController exposes the printer registry
type PrinterController struct {
	printerService services.PrinterService
	logger         zerolog.Logger
}

// NewPrinterController creates a new PrinterController
func NewPrinterController(printerService services.PrinterService, logger zerolog.Logger) *PrinterController {
	return &PrinterController{printerService: printerService, logger: logger}
}

// ListPrinters lists printers
// @Summary List printers
// @Tags printers
// @Produce json
// @Security BearerAuth
// @Param online query bool false "Only online printers"
// @Success 200 {object} dto.APIResponse{data=[]models.Printer} "Printers ordered by name"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /printers [get]
func (c *PrinterController) ListPrinters(ctx *gin.Context) {
	list := c.printerService.List
	if ctx.Query("online") == "true" {
		list = c.printerService.ListOnline
	}

	printers, err := list(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(printers, ""))
}

// GetPrinter returns one printer
// @Summary Get a printer
// @Tags printers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Printer ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Printer} "Printer"
// @Failure 400 {object} dto.ErrorResponse "Invalid printer ID"
// @Failure 404 {object} dto.ErrorResponse "Printer not found"
// @Router /printers/{id} [get]
func (c *PrinterController) GetPrinter(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	printer, err := c.printerService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(printer, ""))
}

// CreatePrinter registers a printer
// @Summary Register a printer
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePrinterRequest true "Printer"
// @Success 201 {object} dto.APIResponse{data=models.Printer} "Printer registered"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/printers [post]
func (c *PrinterController) CreatePrinter(ctx *gin.Context) {
	var req dto.CreatePrinterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	printer, err := c.printerService.Create(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(printer, "Printer registered"))
}

// UpdatePrinter applies a partial update
// @Summary Update a printer
// @Description Only the provided fields change, e.g. status or supply levels
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Printer ID" Format(uuid)
// @Param request body dto.UpdatePrinterRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Printer} "Printer updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Printer not found"
// @Router /admin/printers/{id} [patch]
func (c *PrinterController) UpdatePrinter(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdatePrinterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	printer, err := c.printerService.Update(ctx.Request.Context(), id, req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(printer, "Printer updated"))
}
