package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/db"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/dberrors"
	"github.com/yigit/printq/internal/pkg/logger"
)

var adminColumns = []string{"id", "username", "email", "password_hash", "created_at"}

// AdminRepositoryPG handles admin database operations
type AdminRepositoryPG struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

func scanAdmin(row rowScanner) (*models.Admin, error) {
	a := &models.Admin{}
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new admin
func (r *AdminRepositoryPG) Create(ctx context.Context, a *models.Admin) error {
	sql, args, err := r.sb.Insert("admins").
		Columns(adminColumns...).
		Values(a.ID, a.Username, a.Email, a.PasswordHash, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create admin query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("email is already registered")
		}
		logger.Error().Err(err).Str("email", a.Email).Msg("Error creating admin")
		return apperrors.Persistence("create admin", err)
	}
	return nil
}

func (r *AdminRepositoryPG) getOne(ctx context.Context, where squirrel.Sqlizer, op string) (*models.Admin, error) {
	sql, args, err := r.sb.Select(adminColumns...).From("admins").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	a, err := scanAdmin(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("admin not found")
		}
		logger.Error().Err(err).Str("op", op).Msg("Error scanning admin row")
		return nil, apperrors.Persistence(op, err)
	}
	return a, nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepositoryPG) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "get admin")
}

// GetByEmail retrieves an admin by email
func (r *AdminRepositoryPG) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, "get admin by email")
}

// Exists checks whether an admin with the id exists
func (r *AdminRepositoryPG) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.q, r.sb, "admins", id)
}

// List returns every admin ordered by username
func (r *AdminRepositoryPG) List(ctx context.Context) ([]*models.Admin, error) {
	sql, args, err := r.sb.Select(adminColumns...).From("admins").OrderBy("username ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list admins query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying admins")
		return nil, apperrors.Persistence("list admins", err)
	}
	defer rows.Close()

	admins := []*models.Admin{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, apperrors.Persistence("list admins", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
