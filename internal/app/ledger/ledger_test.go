package ledger

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories/memstore"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

func newStore(t *testing.T, balance string) *memstore.Store {
	t.Helper()
	s := memstore.New()
	require.NoError(t, s.Students().Create(context.Background(), &models.Student{
		ID:            "s1",
		Email:         "s1@campus.edu",
		StudentNumber: "1",
		WalletBalance: decimal.RequireFromString(balance),
	}))
	return s
}

func balance(t *testing.T, s *memstore.Store) decimal.Decimal {
	t.Helper()
	st, err := s.Students().GetByID(context.Background(), "s1")
	require.NoError(t, err)
	return st.WalletBalance
}

func TestDebit_AppendsRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "20.00")

	entry, err := Debit(ctx, s, "s1", decimal.RequireFromString("10.50"), "Print job: a.pdf")
	require.NoError(t, err)
	require.Equal(t, "9.50", entry.Balance.StringFixed(2))
	require.Equal(t, models.TransactionDebit, entry.Transaction.Type)

	txs, err := s.Transactions().ListByStudent(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "10.50", txs[0].Amount.StringFixed(2))
	require.Equal(t, "Print job: a.pdf", txs[0].Description)
}

func TestDebit_InsufficientLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "5.00")

	_, err := Debit(ctx, s, "s1", decimal.RequireFromString("5.01"), "x")
	require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	require.Equal(t, "5.00", balance(t, s).StringFixed(2))

	txs, err := s.Transactions().ListByStudent(ctx, "s1", 0)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestMove_RejectsNonPositive(t *testing.T) {
	s := newStore(t, "5.00")
	for _, amt := range []string{"0", "-1", "0.001"} {
		_, err := Credit(context.Background(), s, "s1", decimal.RequireFromString(amt), "x")
		require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "0")
	rng := rand.New(rand.NewSource(42))

	expected := decimal.Zero
	for i := 0; i < 500; i++ {
		amount := decimal.New(int64(rng.Intn(2000)+1), -2)
		if rng.Intn(2) == 0 {
			_, err := Credit(ctx, s, "s1", amount, "top-up")
			require.NoError(t, err)
			expected = expected.Add(amount)
		} else {
			_, err := Debit(ctx, s, "s1", amount, "job")
			if expected.LessThan(amount) {
				require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
			} else {
				require.NoError(t, err)
				expected = expected.Sub(amount)
			}
		}
		got := balance(t, s)
		require.False(t, got.IsNegative())
		require.True(t, expected.Equal(got), "step %d: want %s got %s", i, expected, got)
	}
}
