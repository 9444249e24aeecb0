package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/filestorage"
	"github.com/yigit/printq/internal/pkg/notify"
)

// MaintenanceConfig tunes the background sweeps
type MaintenanceConfig struct {
	// Retention is how long completed jobs are kept after completion
	Retention time.Duration
	// SupplyThreshold is the paper/toner percentage under which a printer is reported
	SupplyThreshold int
	// LowBalanceThreshold is the default for the low-balance sweep
	LowBalanceThreshold decimal.Decimal
}

// MaintenanceService runs housekeeping outside the request path
type MaintenanceService interface {
	// CleanupStaleJobs deletes completed jobs past retention and their documents
	CleanupStaleJobs(ctx context.Context) (int, error)
	// CheckPrinterHealth logs and returns printers running low on supplies
	CheckPrinterHealth(ctx context.Context) ([]*models.Printer, error)
	// NotifyLowBalances queues a low_balance notification for opted-in students under
	// threshold, or the configured default when threshold is nil
	NotifyLowBalances(ctx context.Context, threshold *decimal.Decimal) (int, error)
}

type maintenanceServiceImpl struct {
	store    repositories.Store
	files    filestorage.FileStorage
	notifier notify.Notifier
	config   MaintenanceConfig
	now      Clock
	logger   zerolog.Logger
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(
	store repositories.Store,
	files filestorage.FileStorage,
	notifier notify.Notifier,
	config MaintenanceConfig,
	logger zerolog.Logger,
) MaintenanceService {
	return &maintenanceServiceImpl{
		store:    store,
		files:    files,
		notifier: notifier,
		config:   config,
		now:      systemClock,
		logger:   logger,
	}
}

func (s *maintenanceServiceImpl) CleanupStaleJobs(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.config.Retention)
	removed, err := s.store.Jobs().DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, job := range removed {
		if err := s.files.Delete(job.FilePath); err != nil {
			s.logger.Warn().Err(err).Str("jobID", job.ID).Msg("Failed to remove document of expired job")
		}
	}

	if len(removed) > 0 {
		s.logger.Info().Int("count", len(removed)).Time("cutoff", cutoff).Msg("Cleaned up completed jobs")
	}
	return len(removed), nil
}

func (s *maintenanceServiceImpl) CheckPrinterHealth(ctx context.Context) ([]*models.Printer, error) {
	low, err := s.store.Printers().ListLowSupplies(ctx, s.config.SupplyThreshold)
	if err != nil {
		return nil, err
	}

	for _, p := range low {
		s.logger.Warn().
			Str("printerID", p.ID).
			Str("name", p.Name).
			Int("paperLevel", p.PaperLevel).
			Int("tonerLevel", p.TonerLevel).
			Msg("Printer low on supplies")
	}
	return low, nil
}

func (s *maintenanceServiceImpl) NotifyLowBalances(ctx context.Context, threshold *decimal.Decimal) (int, error) {
	limit := s.config.LowBalanceThreshold
	if threshold != nil {
		limit = models.RoundMoney(*threshold)
	}
	if limit.IsNegative() {
		return 0, apperrors.NewInvalidArgumentError("threshold must not be negative")
	}

	students, err := s.store.Students().ListBelowBalance(ctx, limit)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, st := range students {
		ok := s.notifier.Notify(st.Email, notify.LowBalance{
			Username:  st.Username,
			Balance:   st.WalletBalance,
			Threshold: limit,
		})
		if ok {
			queued++
		}
	}

	s.logger.Info().Int("queued", queued).Int("matched", len(students)).Str("threshold", limit.StringFixed(2)).Msg("Low balance sweep finished")
	return queued, nil
}
