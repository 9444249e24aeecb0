package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/middleware"
	"github.com/yigit/printq/internal/pkg/helpers"
)

// WalletController exposes the caller's wallet
type WalletController struct {
	walletService services.WalletService
	logger        zerolog.Logger
}

// NewWalletController creates a new WalletController
func NewWalletController(walletService services.WalletService, logger zerolog.Logger) *WalletController {
	return &WalletController{walletService: walletService, logger: logger}
}

// TopUp adds funds to the wallet
// @Summary Top up wallet
// @Description Credits the authenticated student's wallet. The amount must be inside the configured range.
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TopUpRequest true "Top-up amount and payment method"
// @Success 200 {object} dto.APIResponse{data=dto.TopUpResponse} "Wallet topped up"
// @Failure 400 {object} dto.ErrorResponse "Amount outside the allowed range"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /wallet/topup [post]
func (c *WalletController) TopUp(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.TopUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	entry, err := c.walletService.TopUp(ctx.Request.Context(), principal.ID, req.Amount, req.Method)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TopUpResponse{
		Balance:     entry.Balance,
		Transaction: entry.Transaction,
	}, "Wallet topped up successfully"))
}

// GetBalance returns the wallet balance
// @Summary Get wallet balance
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.BalanceResponse} "Current balance"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /wallet/balance [get]
func (c *WalletController) GetBalance(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	balance, err := c.walletService.Balance(ctx.Request.Context(), principal.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.BalanceResponse{Balance: balance}, ""))
}

// GetTransactions lists ledger records
// @Summary List wallet transactions
// @Description Returns the newest transactions first
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of records (default 50, max 200)"
// @Success 200 {object} dto.APIResponse{data=[]models.Transaction} "Transactions"
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /wallet/transactions [get]
func (c *WalletController) GetTransactions(ctx *gin.Context) {
	principal, ok := middleware.RequirePrincipal(ctx)
	if !ok {
		return
	}

	limit, err := helpers.ParseLimit(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	txs, err := c.walletService.Transactions(ctx.Request.Context(), principal.ID, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(txs, ""))
}
