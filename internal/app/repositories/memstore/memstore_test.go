package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

func seedStudent(t *testing.T, s *Store, id, balance string) {
	t.Helper()
	require.NoError(t, s.Students().Create(context.Background(), &models.Student{
		ID:            id,
		Email:         id + "@campus.edu",
		StudentNumber: id,
		WalletBalance: decimal.RequireFromString(balance),
	}))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedStudent(t, s, "s1", "10.00")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := tx.Students().Debit(ctx, "s1", decimal.RequireFromString("4.00")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := s.Students().GetByID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "10.00", st.WalletBalance.StringFixed(2))
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedStudent(t, s, "s1", "10.00")

	err := s.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		return tx.WithTx(ctx, func(ctx context.Context, inner repositories.Store) error {
			_, err := inner.Students().Credit(ctx, "s1", decimal.RequireFromString("2.50"))
			return err
		})
	})
	require.NoError(t, err)

	st, err := s.Students().GetByID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "12.50", st.WalletBalance.StringFixed(2))
}

func TestDebit_NeverNegative(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedStudent(t, s, "s1", "1.00")

	_, err := s.Students().Debit(ctx, "s1", decimal.RequireFromString("1.01"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	bal, err := s.Students().Debit(ctx, "s1", decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	require.True(t, bal.IsZero())

	_, err = s.Students().Debit(ctx, "missing", decimal.NewFromInt(1))
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestJobs_TransitionGuard(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedStudent(t, s, "s1", "0")
	require.NoError(t, s.Jobs().Create(ctx, &models.Job{ID: "j1", StudentID: "s1", Status: models.JobPending}))

	printer := &models.Printer{ID: "p1", Name: "P", Location: "L"}
	j, err := s.Jobs().Transition(ctx, "j1", models.JobTransition{
		From: []models.JobStatus{models.JobPending}, To: models.JobApproved, At: time.Now(), Actor: "a1", Printer: printer,
	})
	require.NoError(t, err)
	require.Equal(t, "p1", *j.PrinterID)

	_, err = s.Jobs().Transition(ctx, "j1", models.JobTransition{
		From: []models.JobStatus{models.JobPending}, To: models.JobApproved, At: time.Now(), Actor: "a1", Printer: printer,
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, "Job is already approved", err.Error())

	j, err = s.Jobs().Transition(ctx, "j1", models.JobTransition{
		From: []models.JobStatus{models.JobPending, models.JobApproved}, To: models.JobRejected, At: time.Now(), Actor: "a1", Reason: "r",
	})
	require.NoError(t, err)
	require.Nil(t, j.PrinterID)
	require.Equal(t, "r", *j.RejectionReason)
}

func TestTransactions_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, s.Transactions().Create(ctx, &models.Transaction{ID: id, StudentID: "s1"}))
	}
	require.NoError(t, s.Transactions().Create(ctx, &models.Transaction{ID: "other", StudentID: "s2"}))

	got, err := s.Transactions().ListByStudent(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "t3", got[0].ID)
	require.Equal(t, "t2", got[1].ID)
}
