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
	"github.com/yigit/printq/internal/pkg/logger"
)

var printerColumns = []string{
	"id", "name", "location", "type", "status", "paper_level", "toner_level", "created_at", "updated_at",
}

// PrinterRepositoryPG handles printer database operations
type PrinterRepositoryPG struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

func scanPrinter(row rowScanner) (*models.Printer, error) {
	p := &models.Printer{}
	var typ, status string
	err := row.Scan(&p.ID, &p.Name, &p.Location, &typ, &status, &p.PaperLevel, &p.TonerLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Type = models.PrinterType(typ)
	p.Status = models.PrinterStatus(status)
	return p, nil
}

// Create inserts a new printer
func (r *PrinterRepositoryPG) Create(ctx context.Context, p *models.Printer) error {
	sql, args, err := r.sb.Insert("printers").
		Columns(printerColumns...).
		Values(p.ID, p.Name, p.Location, string(p.Type), string(p.Status), p.PaperLevel, p.TonerLevel, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create printer query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("name", p.Name).Msg("Error creating printer")
		return apperrors.Persistence("create printer", err)
	}
	return nil
}

// GetByID retrieves a printer by ID
func (r *PrinterRepositoryPG) GetByID(ctx context.Context, id string) (*models.Printer, error) {
	sql, args, err := r.sb.Select(printerColumns...).From("printers").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get printer query: %w", err)
	}

	p, err := scanPrinter(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("printer not found")
		}
		logger.Error().Err(err).Str("printerID", id).Msg("Error scanning printer row")
		return nil, apperrors.Persistence("get printer", err)
	}
	return p, nil
}

// List returns all printers ordered by name
func (r *PrinterRepositoryPG) List(ctx context.Context) ([]*models.Printer, error) {
	return r.query(ctx, r.sb.Select(printerColumns...).From("printers").OrderBy("name ASC", "id ASC"), "list printers")
}

// ListOnline returns online printers ordered by name
func (r *PrinterRepositoryPG) ListOnline(ctx context.Context) ([]*models.Printer, error) {
	query := r.sb.Select(printerColumns...).
		From("printers").
		Where(squirrel.Eq{"status": string(models.PrinterOnline)}).
		OrderBy("name ASC", "id ASC")
	return r.query(ctx, query, "list online printers")
}

// ListLowSupplies returns printers with paper or toner under threshold
func (r *PrinterRepositoryPG) ListLowSupplies(ctx context.Context, threshold int) ([]*models.Printer, error) {
	query := r.sb.Select(printerColumns...).
		From("printers").
		Where(squirrel.Or{squirrel.Lt{"paper_level": threshold}, squirrel.Lt{"toner_level": threshold}}).
		OrderBy("name ASC")
	return r.query(ctx, query, "list low supply printers")
}

// Update applies a partial change and returns the updated printer
func (r *PrinterRepositoryPG) Update(ctx context.Context, id string, u models.PrinterUpdate) (*models.Printer, error) {
	if u.Empty() {
		return r.GetByID(ctx, id)
	}

	set := map[string]interface{}{"updated_at": squirrel.Expr("NOW()")}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Type != nil {
		set["type"] = string(*u.Type)
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.PaperLevel != nil {
		set["paper_level"] = *u.PaperLevel
	}
	if u.TonerLevel != nil {
		set["toner_level"] = *u.TonerLevel
	}

	sql, args, err := r.sb.Update("printers").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, location, type, status, paper_level, toner_level, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update printer query: %w", err)
	}

	p, err := scanPrinter(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("printer not found")
		}
		logger.Error().Err(err).Str("printerID", id).Msg("Error updating printer")
		return nil, apperrors.Persistence("update printer", err)
	}
	return p, nil
}

// Count returns the number of registered printers
func (r *PrinterRepositoryPG) Count(ctx context.Context) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("printers").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count printers query: %w", err)
	}

	var n int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, apperrors.Persistence("count printers", err)
	}
	return n, nil
}

func (r *PrinterRepositoryPG) query(ctx context.Context, query squirrel.SelectBuilder, op string) ([]*models.Printer, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying printers")
		return nil, apperrors.Persistence(op, err)
	}
	defer rows.Close()

	printers := []*models.Printer{}
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		printers = append(printers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	return printers, nil
}
