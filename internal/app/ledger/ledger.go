// Package ledger moves money in and out of student wallets. Every balance change
// is paired with an append-only transaction record in the same store transaction.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// Entry is the result of a ledger movement
type Entry struct {
	Transaction *models.Transaction
	Balance     decimal.Decimal
}

// Debit takes amount from the student's wallet. It fails with
// apperrors.ErrInsufficientFunds when the balance does not cover it.
func Debit(ctx context.Context, store repositories.Store, studentID string, amount decimal.Decimal, description string) (*Entry, error) {
	return move(ctx, store, studentID, amount, description, models.TransactionDebit)
}

// Credit adds amount to the student's wallet
func Credit(ctx context.Context, store repositories.Store, studentID string, amount decimal.Decimal, description string) (*Entry, error) {
	return move(ctx, store, studentID, amount, description, models.TransactionCredit)
}

func move(ctx context.Context, store repositories.Store, studentID string, amount decimal.Decimal, description string, typ models.TransactionType) (*Entry, error) {
	amount = models.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, apperrors.NewInvalidArgumentError("amount must be positive")
	}

	var entry *Entry
	err := store.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var (
			balance decimal.Decimal
			err     error
		)
		if typ == models.TransactionDebit {
			balance, err = tx.Students().Debit(ctx, studentID, amount)
		} else {
			balance, err = tx.Students().Credit(ctx, studentID, amount)
		}
		if err != nil {
			return err
		}

		record := &models.Transaction{
			ID:          uuid.NewString(),
			StudentID:   studentID,
			Type:        typ,
			Amount:      amount,
			Description: description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Transactions().Create(ctx, record); err != nil {
			return err
		}

		entry = &Entry{Transaction: record, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
