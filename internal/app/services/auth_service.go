package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/app/repositories"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/auth"
	"github.com/yigit/printq/internal/pkg/notify"
)

// AuthService handles registration and authentication
type AuthService interface {
	RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error)
	RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (*models.Admin, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	// SubjectExists confirms a token subject still has an account for its role
	SubjectExists(ctx context.Context, id string, role models.RoleType) (bool, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	store            repositories.Store
	jwtService       *auth.JWTService
	notifier         notify.Notifier
	registrationCode string
	hashPassword     func(string) (string, error)
	now              Clock
	logger           zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	store repositories.Store,
	jwtService *auth.JWTService,
	notifier notify.Notifier,
	registrationCode string,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		store:            store,
		jwtService:       jwtService,
		notifier:         notifier,
		registrationCode: registrationCode,
		hashPassword:     auth.HashPassword,
		now:              systemClock,
		logger:           logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterStudent creates a student with an empty wallet and default preferences
func (s *authServiceImpl) RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash student password")
		return nil, err
	}

	now := s.now()
	student := &models.Student{
		ID:            uuid.NewString(),
		Username:      strings.TrimSpace(req.Username),
		Email:         normalizeEmail(req.Email),
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		PasswordHash:  hash,
		WalletBalance: decimal.Zero,
		TotalSpent:    decimal.Zero,
		Preferences:   models.DefaultPreferences(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Students().Create(ctx, student); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("email", student.Email).Msg("Failed to register student")
		}
		return nil, err
	}

	s.logger.Info().Str("studentID", student.ID).Msg("Student registered")
	if student.Preferences.EmailNotifications {
		s.notifier.Notify(student.Email, notify.AccountCreated{Username: student.Username})
	}
	return student, nil
}

// RegisterAdmin creates an administrator when the registration code matches
func (s *authServiceImpl) RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (*models.Admin, error) {
	if s.registrationCode == "" || subtle.ConstantTimeCompare([]byte(req.RegistrationCode), []byte(s.registrationCode)) != 1 {
		s.logger.Warn().Str("email", normalizeEmail(req.Email)).Msg("Admin registration with invalid code")
		return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "Invalid admin registration code")
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash admin password")
		return nil, err
	}

	admin := &models.Admin{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.Admins().Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info().Str("adminID", admin.ID).Msg("Admin registered")
	return admin, nil
}

// Login checks credentials against admins then students and issues a token
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var info *dto.SubjectInfo
	var err error
	if req.UserType == "" || req.UserType == models.RoleAdmin {
		info, err = s.loginAdmin(ctx, email, req.Password)
		if err != nil && !errors.Is(err, apperrors.ErrInvalidCredentials) {
			return nil, err
		}
	}
	if info == nil && (req.UserType == "" || req.UserType == models.RoleStudent) {
		info, err = s.loginStudent(ctx, email, req.Password)
		if err != nil && !errors.Is(err, apperrors.ErrInvalidCredentials) {
			return nil, err
		}
	}
	if info == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(auth.Subject{ID: info.ID, Email: info.Email, Role: info.Role})
	if err != nil {
		s.logger.Error().Err(err).Str("subjectID", info.ID).Msg("Failed to generate access token")
		return nil, err
	}

	s.logger.Info().Str("subjectID", info.ID).Str("role", string(info.Role)).Msg("Login successful")
	return &dto.AuthResponse{
		Token: dto.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn},
		User:  *info,
	}, nil
}

func (s *authServiceImpl) loginAdmin(ctx context.Context, email, password string) (*dto.SubjectInfo, error) {
	admin, err := s.store.Admins().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(admin.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &dto.SubjectInfo{ID: admin.ID, Username: admin.Username, Email: admin.Email, Role: models.RoleAdmin}, nil
}

func (s *authServiceImpl) loginStudent(ctx context.Context, email, password string) (*dto.SubjectInfo, error) {
	student, err := s.store.Students().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(student.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &dto.SubjectInfo{
		ID:       student.ID,
		Username: student.Username,
		Email:    student.Email,
		Role:     models.RoleStudent,
		Student:  student,
	}, nil
}

// SubjectExists looks the subject up in the collection that matches its role
func (s *authServiceImpl) SubjectExists(ctx context.Context, id string, role models.RoleType) (bool, error) {
	switch role {
	case models.RoleAdmin:
		return s.store.Admins().Exists(ctx, id)
	case models.RoleStudent:
		return s.store.Students().Exists(ctx, id)
	default:
		return false, nil
	}
}
