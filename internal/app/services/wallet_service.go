package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/ledger"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// Wallet history page sizes
const (
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 200
)

// WalletService exposes wallet operations to students
type WalletService interface {
	TopUp(ctx context.Context, studentID string, amount decimal.Decimal, method string) (*ledger.Entry, error)
	Balance(ctx context.Context, studentID string) (decimal.Decimal, error)
	Transactions(ctx context.Context, studentID string, limit uint64) ([]*models.Transaction, error)
}

// TopUpLimits bounds a single wallet top-up, inclusive
type TopUpLimits struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

type walletServiceImpl struct {
	store  repositories.Store
	limits TopUpLimits
	logger zerolog.Logger
}

// NewWalletService creates a new WalletService
func NewWalletService(store repositories.Store, limits TopUpLimits, logger zerolog.Logger) WalletService {
	return &walletServiceImpl{store: store, limits: limits, logger: logger}
}

// TopUp credits the wallet with an amount inside the configured range
func (s *walletServiceImpl) TopUp(ctx context.Context, studentID string, amount decimal.Decimal, method string) (*ledger.Entry, error) {
	amount = models.RoundMoney(amount)
	if amount.LessThan(s.limits.Min) || amount.GreaterThan(s.limits.Max) {
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("Amount must be between $%s and $%s",
			s.limits.Min.StringFixed(2), s.limits.Max.StringFixed(2)))
	}

	method = strings.TrimSpace(method)
	if method == "" {
		return nil, apperrors.NewInvalidArgumentError("payment method is required")
	}

	entry, err := ledger.Credit(ctx, s.store, studentID, amount, "Wallet top-up via "+method)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("studentID", studentID).
		Str("amount", amount.StringFixed(2)).
		Str("balance", entry.Balance.StringFixed(2)).
		Msg("Wallet topped up")
	return entry, nil
}

// Balance returns the student's current balance
func (s *walletServiceImpl) Balance(ctx context.Context, studentID string) (decimal.Decimal, error) {
	student, err := s.store.Students().GetByID(ctx, studentID)
	if err != nil {
		return decimal.Zero, err
	}
	return student.WalletBalance, nil
}

// Transactions returns the newest ledger records first
func (s *walletServiceImpl) Transactions(ctx context.Context, studentID string, limit uint64) ([]*models.Transaction, error) {
	switch {
	case limit == 0:
		limit = DefaultTransactionLimit
	case limit > MaxTransactionLimit:
		limit = MaxTransactionLimit
	}
	return s.store.Transactions().ListByStudent(ctx, studentID, limit)
}
