package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// UserService defines the interface for account operations
type UserService interface {
	ListStudents(ctx context.Context) ([]*models.Student, error)
	ListAdmins(ctx context.Context) ([]*models.Admin, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	UpdatePreferences(ctx context.Context, studentID string, update models.PreferencesUpdate) (*models.Student, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(store repositories.Store, logger zerolog.Logger) UserService {
	return &userServiceImpl{store: store, logger: logger}
}

func (s *userServiceImpl) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.store.Students().List(ctx)
}

func (s *userServiceImpl) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	return s.store.Admins().List(ctx)
}

func (s *userServiceImpl) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	return s.store.Students().GetByID(ctx, id)
}

func (s *userServiceImpl) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	return s.store.Admins().GetByID(ctx, id)
}

// UpdatePreferences merges the provided toggles into the stored preferences
func (s *userServiceImpl) UpdatePreferences(ctx context.Context, studentID string, update models.PreferencesUpdate) (*models.Student, error) {
	if update.EmailNotifications == nil && update.EcoTips == nil && update.AutoDuplex == nil {
		return nil, apperrors.NewInvalidArgumentError("no preferences to update")
	}

	var student *models.Student
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		student, err = tx.Students().GetByID(ctx, studentID)
		if err != nil {
			return err
		}
		student.Preferences = update.Apply(student.Preferences)
		return tx.Students().UpdatePreferences(ctx, studentID, student.Preferences)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("studentID", studentID).Msg("Preferences updated")
	return student, nil
}
