package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/db"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/dberrors"
	"github.com/yigit/printq/internal/pkg/logger"
)

const (
	constraintStudentEmail  = "students_email_key"
	constraintStudentNumber = "students_student_number_key"
)

var studentColumns = []string{
	"id", "username", "email", "student_number", "password_hash", "wallet_balance",
	"total_jobs", "total_pages", "total_spent", "eco_points",
	"email_notifications", "eco_tips", "auto_duplex", "created_at", "updated_at",
}

// StudentRepositoryPG handles student database operations
type StudentRepositoryPG struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.Username, &s.Email, &s.StudentNumber, &s.PasswordHash, &s.WalletBalance,
		&s.TotalJobs, &s.TotalPages, &s.TotalSpent, &s.EcoPoints,
		&s.Preferences.EmailNotifications, &s.Preferences.EcoTips, &s.Preferences.AutoDuplex,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new student
func (r *StudentRepositoryPG) Create(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns(
			"id", "username", "email", "student_number", "password_hash", "wallet_balance",
			"total_jobs", "total_pages", "total_spent", "eco_points",
			"email_notifications", "eco_tips", "auto_duplex", "created_at", "updated_at",
		).
		Values(
			s.ID, s.Username, s.Email, s.StudentNumber, s.PasswordHash, money(s.WalletBalance),
			s.TotalJobs, s.TotalPages, money(s.TotalSpent), s.EcoPoints,
			s.Preferences.EmailNotifications, s.Preferences.EcoTips, s.Preferences.AutoDuplex,
			s.CreatedAt, s.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, constraintStudentEmail):
			return apperrors.NewConflictError("email is already registered")
		case dberrors.IsDuplicateConstraintError(err, constraintStudentNumber):
			return apperrors.NewConflictError("student number is already registered")
		}
		logger.Error().Err(err).Str("email", s.Email).Msg("Error creating student")
		return apperrors.Persistence("create student", err)
	}
	return nil
}

func (r *StudentRepositoryPG) getOne(ctx context.Context, where squirrel.Sqlizer, op string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	s, err := scanStudent(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("student not found")
		}
		logger.Error().Err(err).Str("op", op).Msg("Error scanning student row")
		return nil, apperrors.Persistence(op, err)
	}
	return s, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepositoryPG) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "get student")
}

// GetByEmail retrieves a student by email
func (r *StudentRepositoryPG) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, "get student by email")
}

// Exists checks whether a student with the id exists
func (r *StudentRepositoryPG) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.q, r.sb, "students", id)
}

// List returns every student, newest first
func (r *StudentRepositoryPG) List(ctx context.Context) ([]*models.Student, error) {
	return r.list(ctx, r.sb.Select(studentColumns...).From("students").OrderBy("created_at DESC"), "list students")
}

// ListBelowBalance returns opted-in students whose balance is under threshold
func (r *StudentRepositoryPG) ListBelowBalance(ctx context.Context, threshold decimal.Decimal) ([]*models.Student, error) {
	query := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Expr("wallet_balance < ?::numeric", money(threshold))).
		Where(squirrel.Eq{"email_notifications": true}).
		OrderBy("wallet_balance ASC")
	return r.list(ctx, query, "list low balance students")
}

func (r *StudentRepositoryPG) list(ctx context.Context, query squirrel.SelectBuilder, op string) ([]*models.Student, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying students")
		return nil, apperrors.Persistence(op, err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	return students, nil
}

// Debit decrements the balance with a single conditional update
func (r *StudentRepositoryPG) Debit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	sql, args, err := r.sb.Update("students").
		Set("wallet_balance", squirrel.Expr("wallet_balance - ?::numeric", money(amount))).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("wallet_balance >= ?::numeric", money(amount))).
		Suffix("RETURNING wallet_balance").
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build debit query: %w", err)
	}

	var balance decimal.Decimal
	err = r.q.QueryRow(ctx, sql, args...).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("studentID", id).Msg("Error debiting wallet")
		return decimal.Zero, apperrors.Persistence("debit wallet", err)
	}

	found, err := r.Exists(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, apperrors.NewNotFoundError("student not found")
	}
	return decimal.Zero, apperrors.ErrInsufficientFunds
}

// Credit increments the balance unconditionally
func (r *StudentRepositoryPG) Credit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	sql, args, err := r.sb.Update("students").
		Set("wallet_balance", squirrel.Expr("wallet_balance + ?::numeric", money(amount))).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING wallet_balance").
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build credit query: %w", err)
	}

	var balance decimal.Decimal
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.NewNotFoundError("student not found")
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error crediting wallet")
		return decimal.Zero, apperrors.Persistence("credit wallet", err)
	}
	return balance, nil
}

// IncrementJobCount bumps total_jobs by one
func (r *StudentRepositoryPG) IncrementJobCount(ctx context.Context, id string) error {
	return r.update(ctx, id, "increment job count", map[string]interface{}{
		"total_jobs": squirrel.Expr("total_jobs + 1"),
	})
}

// RecordCompletion adds a completed job to the cumulative counters
func (r *StudentRepositoryPG) RecordCompletion(ctx context.Context, id string, pages int, spent decimal.Decimal, ecoPoints int) error {
	return r.update(ctx, id, "record completion", map[string]interface{}{
		"total_pages": squirrel.Expr("total_pages + ?", pages),
		"total_spent": squirrel.Expr("total_spent + ?::numeric", money(spent)),
		"eco_points":  squirrel.Expr("eco_points + ?", ecoPoints),
	})
}

// UpdatePreferences replaces the notification preferences
func (r *StudentRepositoryPG) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error {
	return r.update(ctx, id, "update preferences", map[string]interface{}{
		"email_notifications": prefs.EmailNotifications,
		"eco_tips":            prefs.EcoTips,
		"auto_duplex":         prefs.AutoDuplex,
	})
}

func (r *StudentRepositoryPG) update(ctx context.Context, id, op string, set map[string]interface{}) error {
	set["updated_at"] = squirrel.Expr("NOW()")
	sql, args, err := r.sb.Update("students").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}

	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", id).Str("op", op).Msg("Error updating student")
		return apperrors.Persistence(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("student not found")
	}
	return nil
}

// exists checks for a row with the given id in table
func exists(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, table, id string) (bool, error) {
	sql, args, err := sb.Select("1").From(table).Where(squirrel.Eq{"id": id}).Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var found bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error checking existence")
		return false, apperrors.Persistence("exists "+table, err)
	}
	return found, nil
}
