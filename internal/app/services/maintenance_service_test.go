package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/notify"
)

func newMaintenance(f *fixture) *maintenanceServiceImpl {
	svc := NewMaintenanceService(f.store, f.files, f.notifier, MaintenanceConfig{
		Retention:           30 * 24 * time.Hour,
		SupplyThreshold:     20,
		LowBalanceThreshold: money("5.00"),
	}, zerolog.Nop()).(*maintenanceServiceImpl)
	return svc
}

func TestCleanupStaleJobs(t *testing.T) {
	f := newFixture(t)
	svc := newMaintenance(f)
	st := f.addStudent(t, "100.00")
	p := f.addPrinter(t, "Library", models.PrinterOnline)
	ctx := context.Background()

	old := f.submit(t, st.ID, tenPagesMono())
	_, err := f.jobs.Approve(ctx, "admin-1", old.ID, &p.ID)
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, "admin-1", old.ID)
	require.NoError(t, err)

	pending := f.submit(t, st.ID, tenPagesMono())
	require.Equal(t, 2, f.files.count())

	// Not yet past retention
	svc.now = func() time.Time { return f.now.Add(24 * time.Hour) }
	removed, err := svc.CleanupStaleJobs(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)

	svc.now = func() time.Time { return f.now.Add(31 * 24 * time.Hour) }
	removed, err = svc.CleanupStaleJobs(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, 1, f.files.count())

	_, err = f.store.Jobs().GetByID(ctx, old.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.store.Jobs().GetByID(ctx, pending.ID)
	require.NoError(t, err)
}

func TestCheckPrinterHealth(t *testing.T) {
	f := newFixture(t)
	svc := newMaintenance(f)
	f.addPrinter(t, "Healthy", models.PrinterOnline)
	low := f.addPrinter(t, "Starving", models.PrinterOnline)
	toner := 10
	_, err := f.store.Printers().Update(context.Background(), low.ID, models.PrinterUpdate{TonerLevel: &toner})
	require.NoError(t, err)

	got, err := svc.CheckPrinterHealth(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, low.ID, got[0].ID)
}

func TestNotifyLowBalances(t *testing.T) {
	f := newFixture(t)
	svc := newMaintenance(f)
	ctx := context.Background()

	poor := f.addStudent(t, "2.00")
	f.addStudent(t, "50.00")
	optedOut := f.addStudent(t, "1.00")
	require.NoError(t, f.store.Students().UpdatePreferences(ctx, optedOut.ID, models.Preferences{}))

	queued, err := svc.NotifyLowBalances(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, queued)
	require.Equal(t, []notify.Kind{notify.KindLowBalance}, f.notifier.kinds())
	require.Equal(t, poor.Email, f.notifier.sent[0].To)

	threshold := money("100")
	queued, err = svc.NotifyLowBalances(ctx, &threshold)
	require.NoError(t, err)
	require.Equal(t, 2, queued)

	negative := money("-1")
	_, err = svc.NotifyLowBalances(ctx, &negative)
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
