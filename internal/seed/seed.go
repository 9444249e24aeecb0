package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/printq/internal/app/models"
	appRepos "github.com/yigit/printq/internal/app/repositories"
	appServices "github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/auth"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Email    string
	Username string
	Password string
}

// DefaultPrinters are registered when the printer registry is empty
func DefaultPrinters() []appModels.Printer {
	return []appModels.Printer{
		{
			Name:       "Library Printer 1",
			Location:   "Main Library - Ground Floor",
			Type:       appModels.PrinterMultifunc,
			Status:     appModels.PrinterOnline,
			PaperLevel: 85,
			TonerLevel: 70,
		},
		{
			Name:       "Student Center Printer",
			Location:   "Student Center - 2nd Floor",
			Type:       appModels.PrinterColor,
			Status:     appModels.PrinterOnline,
			PaperLevel: 90,
			TonerLevel: 45,
		},
	}
}

// CreateDefaultData creates the default administrator and printers if they don't exist.
// Failures are collected and returned together; each step runs regardless.
func CreateDefaultData(
	ctx context.Context,
	store appRepos.Store,
	printerService appServices.PrinterService,
	admin AdminAccount,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (Admin/Printers)...")
	var finalErr error

	// --- Default Admin --- //
	if admin.Email == "" || admin.Password == "" {
		lgr.Info().Msg("No default admin configured, skipping creation")
	} else {
		email := strings.ToLower(strings.TrimSpace(admin.Email))
		_, err := store.Admins().GetByEmail(ctx, email)
		switch {
		case err == nil:
			lgr.Info().Msg("Admin user already exists, skipping creation")
		case !errors.Is(err, apperrors.ErrNotFound):
			lgr.Error().Err(err).Msg("Error checking if admin user exists")
			finalErr = errors.Join(finalErr, err)
		default:
			hashedPassword, err := auth.HashPassword(admin.Password)
			if err != nil {
				lgr.Error().Err(err).Msg("Error hashing admin password")
				finalErr = errors.Join(finalErr, err)
				break
			}
			a := &appModels.Admin{
				ID:           uuid.NewString(),
				Username:     admin.Username,
				Email:        email,
				PasswordHash: hashedPassword,
				CreatedAt:    time.Now().UTC(),
			}
			if err := store.Admins().Create(ctx, a); err != nil && !errors.Is(err, apperrors.ErrConflict) {
				lgr.Error().Err(err).Msg("Error creating admin user")
				finalErr = errors.Join(finalErr, err)
			} else if err == nil {
				lgr.Info().Str("adminID", a.ID).Msg("Default admin user created successfully")
			}
		}
	}

	// --- Default Printers --- //
	count, err := store.Printers().Count(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error counting printers")
		finalErr = errors.Join(finalErr, err)
	} else if count > 0 {
		lgr.Info().Int("count", count).Msg("Printers already registered, skipping creation")
	} else {
		for _, p := range DefaultPrinters() {
			printer := p
			if _, err := printerService.Create(ctx, &printer); err != nil {
				lgr.Error().Err(err).Str("name", p.Name).Msg("Error creating default printer")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
