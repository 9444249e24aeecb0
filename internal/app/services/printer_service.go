package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// PrinterService manages the printer registry
type PrinterService interface {
	List(ctx context.Context) ([]*models.Printer, error)
	ListOnline(ctx context.Context) ([]*models.Printer, error)
	Get(ctx context.Context, id string) (*models.Printer, error)
	Create(ctx context.Context, printer *models.Printer) (*models.Printer, error)
	Update(ctx context.Context, id string, update models.PrinterUpdate) (*models.Printer, error)
	// Resolve returns the explicit printer when one is given, otherwise the first online printer
	Resolve(ctx context.Context, printerID *string) (*models.Printer, error)
}

type printerServiceImpl struct {
	store  repositories.Store
	now    Clock
	logger zerolog.Logger
}

// NewPrinterService creates a new PrinterService
func NewPrinterService(store repositories.Store, logger zerolog.Logger) PrinterService {
	return &printerServiceImpl{store: store, now: systemClock, logger: logger}
}

func (s *printerServiceImpl) List(ctx context.Context) ([]*models.Printer, error) {
	return s.store.Printers().List(ctx)
}

func (s *printerServiceImpl) ListOnline(ctx context.Context) ([]*models.Printer, error) {
	return s.store.Printers().ListOnline(ctx)
}

func (s *printerServiceImpl) Get(ctx context.Context, id string) (*models.Printer, error) {
	return s.store.Printers().GetByID(ctx, id)
}

// Create validates and registers a printer
func (s *printerServiceImpl) Create(ctx context.Context, printer *models.Printer) (*models.Printer, error) {
	printer.Name = strings.TrimSpace(printer.Name)
	printer.Location = strings.TrimSpace(printer.Location)
	if err := validatePrinter(*printer); err != nil {
		return nil, err
	}

	now := s.now()
	printer.ID = uuid.NewString()
	printer.CreatedAt = now
	printer.UpdatedAt = now
	if err := s.store.Printers().Create(ctx, printer); err != nil {
		return nil, err
	}

	s.logger.Info().Str("printerID", printer.ID).Str("name", printer.Name).Msg("Printer registered")
	return printer, nil
}

// Update applies a partial update after validating the resulting printer
func (s *printerServiceImpl) Update(ctx context.Context, id string, update models.PrinterUpdate) (*models.Printer, error) {
	if update.Empty() {
		return nil, apperrors.NewInvalidArgumentError("no printer fields to update")
	}

	current, err := s.store.Printers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePrinter(update.Apply(*current)); err != nil {
		return nil, err
	}

	updated, err := s.store.Printers().Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("printerID", id).Str("status", string(updated.Status)).Msg("Printer updated")
	return updated, nil
}

func (s *printerServiceImpl) Resolve(ctx context.Context, printerID *string) (*models.Printer, error) {
	return resolvePrinter(ctx, s.store.Printers(), printerID)
}

// resolvePrinter picks the printer for an approval. An explicit printer must exist and be
// online; without one the first online printer by name wins.
func resolvePrinter(ctx context.Context, repo repositories.PrinterRepository, printerID *string) (*models.Printer, error) {
	if printerID != nil && *printerID != "" {
		printer, err := repo.GetByID(ctx, *printerID)
		if err != nil {
			return nil, err
		}
		if !printer.Online() {
			return nil, apperrors.NewCustomError(apperrors.ErrPrinterUnavailable,
				fmt.Sprintf("Printer %s is %s", printer.Name, printer.Status))
		}
		return printer, nil
	}

	online, err := repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	if len(online) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrNoPrinterAvailable, "No printers available")
	}
	return online[0], nil
}

func validatePrinter(p models.Printer) error {
	switch {
	case p.Name == "":
		return apperrors.NewInvalidArgumentError("printer name is required")
	case !p.Type.Valid():
		return apperrors.NewInvalidArgumentError(fmt.Sprintf("unknown printer type %q", p.Type))
	case !p.Status.Valid():
		return apperrors.NewInvalidArgumentError(fmt.Sprintf("unknown printer status %q", p.Status))
	case p.PaperLevel < 0 || p.PaperLevel > 100:
		return apperrors.NewInvalidArgumentError("paper level must be between 0 and 100")
	case p.TonerLevel < 0 || p.TonerLevel > 100:
		return apperrors.NewInvalidArgumentError("toner level must be between 0 and 100")
	}
	return nil
}
