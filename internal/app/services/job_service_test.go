package services

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/printq/internal/app/auth"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/pricing"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/filestorage"
	"github.com/yigit/printq/internal/pkg/notify"
	"github.com/yigit/printq/internal/pkg/websocket"
)

func TestSubmit_ExactBalanceSucceeds(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "10.50")

	res, err := f.jobs.Submit(context.Background(), st.ID, Upload{
		FileName: "thesis.PDF",
		Content:  bytes.NewReader([]byte("%PDF")),
		Options:  tenPagesMono(),
	})
	require.NoError(t, err)
	require.Equal(t, "0.00", res.Balance.StringFixed(2))
	require.Equal(t, models.JobPending, res.Job.Status)
	require.Equal(t, "10.50", res.Job.Cost.StringFixed(2))
	require.Len(t, res.Job.PickupPIN, PickupPINDigits)
	require.Equal(t, "0.00", f.balance(t, st.ID))

	stored, err := f.store.Students().GetByID(context.Background(), st.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.TotalJobs)

	txs, err := f.store.Transactions().ListByStudent(context.Background(), st.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TransactionDebit, txs[0].Type)
	require.Equal(t, "Print job: thesis.PDF", txs[0].Description)

	require.Equal(t, []notify.Kind{notify.KindJobSubmitted}, f.notifier.kinds())
	require.Equal(t, []string{websocket.EventJobSubmitted}, f.events.types())
	require.Equal(t, 1, f.files.count())
}

func TestSubmit_FreePricingSkipsDebit(t *testing.T) {
	f := newFixture(t)
	free := pricing.Default()
	free.BWSingle = decimal.Zero
	require.NoError(t, f.pricing.Set(free))
	st := f.addStudent(t, "0.00")

	res, err := f.jobs.Submit(context.Background(), st.ID, Upload{
		FileName: "flyer.pdf",
		Content:  bytes.NewReader([]byte("%PDF")),
		Options:  tenPagesMono(),
	})
	require.NoError(t, err)
	require.True(t, res.Job.Cost.IsZero())
	require.Equal(t, "0.00", res.Balance.StringFixed(2))

	txs, err := f.store.Transactions().ListByStudent(context.Background(), st.ID, 10)
	require.NoError(t, err)
	require.Empty(t, txs)

	rejected, err := f.jobs.Reject(context.Background(), "admin-1", res.Job.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.JobRejected, rejected.Status)
	require.Equal(t, "0.00", f.balance(t, st.ID))
}

func TestSubmit_OneCentShortFails(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "10.49")

	_, err := f.jobs.Submit(context.Background(), st.ID, Upload{
		FileName: "notes.pdf",
		Content:  bytes.NewReader([]byte("x")),
		Options:  tenPagesMono(),
	})
	require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	require.Equal(t, "10.49", f.balance(t, st.ID))

	jobs, err := f.store.Jobs().List(context.Background(), models.JobFilter{StudentID: st.ID})
	require.NoError(t, err)
	require.Empty(t, jobs)
	require.Zero(t, f.files.count())
	require.Empty(t, f.notifier.kinds())
}

func TestSubmit_RejectsUnsupportedFileType(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")

	for _, name := range []string{"photo.png", "script.exe", "noext", ""} {
		_, err := f.jobs.Submit(context.Background(), st.ID, Upload{FileName: name, Content: bytes.NewReader(nil), Options: tenPagesMono()})
		require.ErrorIs(t, err, apperrors.ErrUnsupportedFileType, name)
		require.ErrorIs(t, err, apperrors.ErrInvalidArgument, name)
	}
	require.Equal(t, "100.00", f.balance(t, st.ID))
}

func TestSubmit_InvalidOptions(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")

	_, err := f.jobs.Submit(context.Background(), st.ID, Upload{
		FileName: "a.pdf",
		Content:  bytes.NewReader(nil),
		Options:  models.PrintOptions{Pages: 0, Copies: 1, PaperSize: models.PaperA4},
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestSubmit_UnknownStudent(t *testing.T) {
	f := newFixture(t)
	_, err := f.jobs.Submit(context.Background(), uuid.NewString(), Upload{FileName: "a.pdf", Content: bytes.NewReader(nil), Options: tenPagesMono()})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmit_OversizedUploadLeavesWalletUntouched(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "50.00")
	f.files.fail = filestorage.ErrTooLarge

	_, err := f.jobs.Submit(context.Background(), st.ID, Upload{FileName: "big.pdf", Content: bytes.NewReader(nil), Options: tenPagesMono()})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	require.Equal(t, "50.00", f.balance(t, st.ID))
}

func TestSubmit_NoNotificationWhenOptedOut(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "50.00")
	require.NoError(t, f.store.Students().UpdatePreferences(context.Background(), st.ID, models.Preferences{}))

	f.submit(t, st.ID, tenPagesMono())
	require.Empty(t, f.notifier.kinds())
}

func TestSubmit_ConcurrentNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	// Enough for exactly three 10.50 jobs
	st := f.addStudent(t, "31.50")

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, insufficient := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.jobs.Submit(context.Background(), st.ID, Upload{
				FileName: "race.pdf",
				Content:  bytes.NewReader([]byte("x")),
				Options:  tenPagesMono(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperrors.Is(err, apperrors.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 3, succeeded)
	require.Equal(t, attempts-3, insufficient)
	require.Equal(t, "0.00", f.balance(t, st.ID))
	require.Equal(t, 3, f.files.count())
}

func TestApprove_AutoSelectsFirstOnlinePrinterByName(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "50.00")
	f.addPrinter(t, "Zeta", models.PrinterOnline)
	alpha := f.addPrinter(t, "Alpha", models.PrinterOnline)
	f.addPrinter(t, "Aardvark", models.PrinterOffline)
	job := f.submit(t, st.ID, tenPagesMono())

	approved, err := f.jobs.Approve(context.Background(), "admin-1", job.ID, nil)
	require.NoError(t, err)
	require.Equal(t, models.JobApproved, approved.Status)
	require.Equal(t, alpha.ID, *approved.PrinterID)
	require.Equal(t, "Alpha", *approved.PrinterName)
	require.Equal(t, "admin-1", *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	require.Contains(t, f.notifier.kinds(), notify.KindJobApproved)
	require.Contains(t, f.events.types(), websocket.EventJobApproved)
}

func TestApprove_PrinterErrors(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "50.00")
	job := f.submit(t, st.ID, tenPagesMono())

	_, err := f.jobs.Approve(context.Background(), "admin-1", job.ID, nil)
	require.ErrorIs(t, err, apperrors.ErrNoPrinterAvailable)

	offline := f.addPrinter(t, "Basement", models.PrinterOffline)
	_, err = f.jobs.Approve(context.Background(), "admin-1", job.ID, &offline.ID)
	require.ErrorIs(t, err, apperrors.ErrPrinterUnavailable)

	missing := uuid.NewString()
	_, err = f.jobs.Approve(context.Background(), "admin-1", job.ID, &missing)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	stored, err := f.store.Jobs().GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobPending, stored.Status)
}

func TestStateMachine_IllegalTransitionsLeaveStateUntouched(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")
	p := f.addPrinter(t, "Library", models.PrinterOnline)
	ctx := context.Background()

	pending := f.submit(t, st.ID, tenPagesMono())
	_, err := f.jobs.Complete(ctx, "admin-1", pending.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, "Job is already pending", apperrors.Message(err))

	_, err = f.jobs.Approve(ctx, "admin-1", pending.ID, &p.ID)
	require.NoError(t, err)
	_, err = f.jobs.Approve(ctx, "admin-1", pending.ID, &p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	completed, err := f.jobs.Complete(ctx, "admin-1", pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobCompleted, completed.Status)

	balanceBefore := f.balance(t, st.ID)
	_, err = f.jobs.Reject(ctx, "admin-1", pending.ID, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, "Job is already completed", apperrors.Message(err))
	require.Equal(t, balanceBefore, f.balance(t, st.ID))

	_, err = f.jobs.Approve(ctx, "admin-1", pending.ID, &p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	stored, err := f.store.Jobs().GetByID(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobCompleted, stored.Status)
}

func TestReject_RefundsFullCostOnce(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "20.00")
	p := f.addPrinter(t, "Library", models.PrinterOnline)
	ctx := context.Background()

	job := f.submit(t, st.ID, tenPagesMono())
	require.Equal(t, "9.50", f.balance(t, st.ID))
	_, err := f.jobs.Approve(ctx, "admin-1", job.ID, &p.ID)
	require.NoError(t, err)

	rejected, err := f.jobs.Reject(ctx, "admin-2", job.ID, "  ")
	require.NoError(t, err)
	require.Equal(t, models.JobRejected, rejected.Status)
	require.Equal(t, DefaultRejectionReason, *rejected.RejectionReason)
	require.Equal(t, "admin-2", *rejected.RejectedBy)
	require.Nil(t, rejected.PrinterID)
	require.Equal(t, "20.00", f.balance(t, st.ID))

	txs, err := f.store.Transactions().ListByStudent(ctx, st.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, models.TransactionCredit, txs[0].Type)
	require.Equal(t, "10.50", txs[0].Amount.StringFixed(2))
	require.Equal(t, "Refund for job "+job.ID, txs[0].Description)

	// A second rejection cannot refund twice
	_, err = f.jobs.Reject(ctx, "admin-2", job.ID, "again")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, "20.00", f.balance(t, st.ID))

	require.Contains(t, f.notifier.kinds(), notify.KindJobRejected)
}

func TestReject_PendingJobWithReason(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "20.00")
	job := f.submit(t, st.ID, tenPagesMono())

	rejected, err := f.jobs.Reject(context.Background(), "admin-1", job.ID, "File is unreadable")
	require.NoError(t, err)
	require.Equal(t, "File is unreadable", *rejected.RejectionReason)
	require.Equal(t, "20.00", f.balance(t, st.ID))
}

func TestComplete_AwardsEcoPointsAndCounters(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")
	p := f.addPrinter(t, "Library", models.PrinterOnline)
	ctx := context.Background()

	duplex := models.PrintOptions{Pages: 12, Copies: 2, Duplex: true, PaperSize: models.PaperA4}
	job := f.submit(t, st.ID, duplex)
	balanceAfterSubmit := f.balance(t, st.ID)

	_, err := f.jobs.Approve(ctx, "admin-1", job.ID, &p.ID)
	require.NoError(t, err)
	completed, err := f.jobs.Complete(ctx, "admin-1", job.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	stored, err := f.store.Students().GetByID(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, 24, stored.EcoPoints)
	require.Equal(t, 12, stored.TotalPages)
	require.Equal(t, job.Cost.StringFixed(2), stored.TotalSpent.StringFixed(2))
	require.Equal(t, balanceAfterSubmit, stored.WalletBalance.StringFixed(2))

	simplex := f.submit(t, st.ID, tenPagesMono())
	_, err = f.jobs.Approve(ctx, "admin-1", simplex.ID, &p.ID)
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, "admin-1", simplex.ID)
	require.NoError(t, err)

	stored, err = f.store.Students().GetByID(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, 24, stored.EcoPoints)
	require.Equal(t, 22, stored.TotalPages)
	require.Contains(t, f.notifier.kinds(), notify.KindJobCompleted)
}

func TestBulkApprove_MixedBatch(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")
	p := f.addPrinter(t, "Library", models.PrinterOnline)
	ctx := context.Background()

	a := f.submit(t, st.ID, tenPagesMono())
	b := f.submit(t, st.ID, tenPagesMono())
	done := f.submit(t, st.ID, tenPagesMono())
	_, err := f.jobs.Reject(ctx, "admin-1", done.ID, "")
	require.NoError(t, err)
	missing := uuid.NewString()

	res, err := f.jobs.BulkApprove(ctx, "admin-1", []string{a.ID, done.ID, b.ID, missing, a.ID}, &p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{a.ID, b.ID}, res.Approved)
	require.Len(t, res.Failed, 2)
	require.Equal(t, done.ID, res.Failed[0].ID)
	require.Equal(t, "Job is already rejected", res.Failed[0].Reason)
	require.Equal(t, missing, res.Failed[1].ID)

	for _, id := range []string{a.ID, b.ID} {
		j, err := f.store.Jobs().GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, models.JobApproved, j.Status)
		require.Equal(t, p.ID, *j.PrinterID)
	}
}

func TestBulkApprove_NoPrinterFailsBeforeAnyChange(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")
	a := f.submit(t, st.ID, tenPagesMono())

	_, err := f.jobs.BulkApprove(context.Background(), "admin-1", []string{a.ID}, nil)
	require.ErrorIs(t, err, apperrors.ErrNoPrinterAvailable)

	j, err := f.store.Jobs().GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobPending, j.Status)
}

func TestConcurrentApproveAndReject_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "500.00")
	p := f.addPrinter(t, "Library", models.PrinterOnline)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		job := f.submit(t, st.ID, tenPagesMono())

		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = f.jobs.Approve(ctx, "admin-1", job.ID, &p.ID)
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = f.jobs.Reject(ctx, "admin-2", job.ID, "")
		}()
		wg.Wait()

		stored, err := f.store.Jobs().GetByID(ctx, job.ID)
		require.NoError(t, err)
		switch {
		case approveErr == nil && rejectErr == nil:
			// approve then reject is a legal sequence
			require.Equal(t, models.JobRejected, stored.Status)
		case approveErr == nil:
			require.Equal(t, models.JobApproved, stored.Status)
		case rejectErr == nil:
			require.ErrorIs(t, approveErr, apperrors.ErrInvalidTransition)
			require.Equal(t, models.JobRejected, stored.Status)
		default:
			t.Fatalf("both transitions failed: %v / %v", approveErr, rejectErr)
		}
	}
}

func TestDelete_OnlyTerminalJobs(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")
	ctx := context.Background()

	job := f.submit(t, st.ID, tenPagesMono())
	err := f.jobs.Delete(ctx, "admin-1", job.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, 1, f.files.count())

	_, err = f.jobs.Reject(ctx, "admin-1", job.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.jobs.Delete(ctx, "admin-1", job.ID))
	require.Zero(t, f.files.count())

	_, err = f.store.Jobs().GetByID(ctx, job.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Contains(t, f.events.types(), websocket.EventJobDeleted)
}

func TestGet_StudentsSeeOnlyTheirOwnJobs(t *testing.T) {
	f := newFixture(t)
	owner := f.addStudent(t, "50.00")
	other := f.addStudent(t, "50.00")
	job := f.submit(t, owner.ID, tenPagesMono())
	ctx := context.Background()

	got, err := f.jobs.Get(ctx, authz.Principal{ID: owner.ID, Role: models.RoleStudent}, job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)

	_, err = f.jobs.Get(ctx, authz.Principal{ID: other.ID, Role: models.RoleStudent}, job.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.jobs.Get(ctx, authz.Principal{ID: "admin-1", Role: models.RoleAdmin}, job.ID)
	require.NoError(t, err)
}

func TestHistorySummary(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "500.00")

	f.submit(t, st.ID, models.PrintOptions{Pages: 100, Copies: 3, PaperSize: models.PaperA4})
	f.submit(t, st.ID, models.PrintOptions{Pages: 50, Copies: 1, PaperSize: models.PaperA4})

	h, err := f.jobs.History(context.Background(), st.ID)
	require.NoError(t, err)
	require.Equal(t, 2, h.Summary.TotalJobs)
	require.Equal(t, 350, h.Summary.TotalPages)
	// 300 x 1.05 + 50 x 1.05
	require.Equal(t, "367.50", h.Summary.TotalCost.StringFixed(2))
	require.Equal(t, "0.70", h.Summary.TreesSaved.StringFixed(2))
	// newest first
	require.Equal(t, 50, h.Jobs[0].Pages)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "100.00")
	ctx := context.Background()
	a := f.submit(t, st.ID, tenPagesMono())
	f.submit(t, st.ID, tenPagesMono())
	_, err := f.jobs.Reject(ctx, "admin-1", a.ID, "")
	require.NoError(t, err)

	pending, err := f.jobs.ListMine(ctx, st.ID, models.JobPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = f.jobs.ListMine(ctx, st.ID, "lost")
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	all, err := f.jobs.AdminList(ctx, models.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	rejected, err := f.jobs.AdminList(ctx, models.JobFilter{Status: models.JobRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.Equal(t, a.ID, rejected[0].ID)
}
