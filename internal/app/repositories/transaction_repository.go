package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/db"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/logger"
)

// TransactionRepositoryPG appends and reads wallet ledger rows
type TransactionRepositoryPG struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

// Create appends a ledger entry
func (r *TransactionRepositoryPG) Create(ctx context.Context, t *models.Transaction) error {
	sql, args, err := r.sb.Insert("transactions").
		Columns("id", "student_id", "type", "amount", "description", "created_at").
		Values(t.ID, t.StudentID, string(t.Type), money(t.Amount), t.Description, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create transaction query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentID", t.StudentID).Msg("Error appending transaction")
		return apperrors.Persistence("create transaction", err)
	}
	return nil
}

// ListByStudent returns a student's ledger entries, newest first
func (r *TransactionRepositoryPG) ListByStudent(ctx context.Context, studentID string, limit uint64) ([]*models.Transaction, error) {
	query := r.sb.Select("id", "student_id", "type", "amount", "description", "created_at").
		From("transactions").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list transactions query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", studentID).Msg("Error querying transactions")
		return nil, apperrors.Persistence("list transactions", err)
	}
	defer rows.Close()

	txs := []*models.Transaction{}
	for rows.Next() {
		t := &models.Transaction{}
		var typ string
		if err := rows.Scan(&t.ID, &t.StudentID, &typ, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, apperrors.Persistence("list transactions", err)
		}
		t.Type = models.TransactionType(typ)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("list transactions", err)
	}
	return txs, nil
}
