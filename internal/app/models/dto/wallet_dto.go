package dto

import (
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
)

// TopUpRequest adds funds to the caller's wallet
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"20.00"`
	Method string          `json:"method" binding:"required,max=50" example:"card"`
}

// BalanceResponse reports a wallet balance
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance" swaggertype:"string" example:"25.00"`
}

// TopUpResponse reports the new balance and the ledger record
type TopUpResponse struct {
	Balance     decimal.Decimal     `json:"balance" swaggertype:"string" example:"45.00"`
	Transaction *models.Transaction `json:"transaction"`
}

// LowBalanceCheckRequest overrides the configured low-balance threshold
type LowBalanceCheckRequest struct {
	Threshold *decimal.Decimal `json:"threshold,omitempty" swaggertype:"string" example:"5.00"`
}
