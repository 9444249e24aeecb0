package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

func TestPrinterService_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewPrinterService(f.store, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Printer{
		Name:       "  Lab Printer ",
		Location:   "Engineering - Room 101",
		Type:       models.PrinterColor,
		Status:     models.PrinterOnline,
		PaperLevel: 100,
		TonerLevel: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Lab Printer", created.Name)

	offline := models.PrinterOffline
	updated, err := svc.Update(ctx, created.ID, models.PrinterUpdate{Status: &offline})
	require.NoError(t, err)
	require.Equal(t, models.PrinterOffline, updated.Status)

	online, err := svc.ListOnline(ctx)
	require.NoError(t, err)
	require.Empty(t, online)

	_, err = svc.Update(ctx, created.ID, models.PrinterUpdate{})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	tooMuch := 101
	_, err = svc.Update(ctx, created.ID, models.PrinterUpdate{PaperLevel: &tooMuch})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = svc.Update(ctx, uuid.NewString(), models.PrinterUpdate{Status: &offline})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPrinterService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewPrinterService(f.store, zerolog.Nop())

	tests := []struct {
		name    string
		printer models.Printer
	}{
		{name: "missing name", printer: models.Printer{Type: models.PrinterMono, Status: models.PrinterOnline}},
		{name: "bad type", printer: models.Printer{Name: "P", Type: "laser", Status: models.PrinterOnline}},
		{name: "bad status", printer: models.Printer{Name: "P", Type: models.PrinterMono, Status: "busy"}},
		{name: "negative toner", printer: models.Printer{Name: "P", Type: models.PrinterMono, Status: models.PrinterOnline, TonerLevel: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.printer
			_, err := svc.Create(context.Background(), &p)
			require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestPrinterService_Resolve(t *testing.T) {
	f := newFixture(t)
	svc := NewPrinterService(f.store, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Resolve(ctx, nil)
	require.ErrorIs(t, err, apperrors.ErrNoPrinterAvailable)

	b := f.addPrinter(t, "B", models.PrinterOnline)
	a := f.addPrinter(t, "A", models.PrinterOnline)

	got, err := svc.Resolve(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	empty := ""
	got, err = svc.Resolve(ctx, &empty)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	got, err = svc.Resolve(ctx, &b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
}
