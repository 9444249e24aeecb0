package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/db"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/dberrors"
	"github.com/yigit/printq/internal/pkg/logger"
)

// DefaultJobListLimit caps admin job listings
const DefaultJobListLimit = 100

var jobColumns = []string{
	"id", "student_id", "file_name", "file_path",
	"pages", "color", "duplex", "paper_size", "binding", "copies",
	"cost", "status", "pickup_pin",
	"printer_id", "printer_name", "printer_location", "scheduled_time",
	"approved_by", "approved_at", "rejected_by", "rejected_at", "rejection_reason", "completed_at",
	"created_at", "updated_at",
}

// JobRepositoryPG handles print job database operations
type JobRepositoryPG struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

func scanJob(row rowScanner) (*models.Job, error) {
	j := &models.Job{}
	var status, paper string
	err := row.Scan(
		&j.ID, &j.StudentID, &j.FileName, &j.FilePath,
		&j.Pages, &j.Color, &j.Duplex, &paper, &j.Binding, &j.Copies,
		&j.Cost, &status, &j.PickupPIN,
		&j.PrinterID, &j.PrinterName, &j.PrinterLocation, &j.ScheduledTime,
		&j.ApprovedBy, &j.ApprovedAt, &j.RejectedBy, &j.RejectedAt, &j.RejectionReason, &j.CompletedAt,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	j.PaperSize = models.PaperSize(paper)
	return j, nil
}

// Create inserts a new job
func (r *JobRepositoryPG) Create(ctx context.Context, j *models.Job) error {
	sql, args, err := r.sb.Insert("jobs").
		Columns(
			"id", "student_id", "file_name", "file_path",
			"pages", "color", "duplex", "paper_size", "binding", "copies",
			"cost", "status", "pickup_pin", "scheduled_time", "created_at", "updated_at",
		).
		Values(
			j.ID, j.StudentID, j.FileName, j.FilePath,
			j.Pages, j.Color, j.Duplex, string(j.PaperSize), j.Binding, j.Copies,
			money(j.Cost), string(j.Status), j.PickupPIN, j.ScheduledTime, j.CreatedAt, j.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create job query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("student not found")
		}
		logger.Error().Err(err).Str("studentID", j.StudentID).Msg("Error creating job")
		return apperrors.Persistence("create job", err)
	}
	return nil
}

// GetByID retrieves a job by ID
func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*models.Job, error) {
	sql, args, err := r.sb.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	j, err := scanJob(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("job not found")
		}
		logger.Error().Err(err).Str("jobID", id).Msg("Error scanning job row")
		return nil, apperrors.Persistence("get job", err)
	}
	return j, nil
}

// List returns jobs matching filter, newest first
func (r *JobRepositoryPG) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	query := r.sb.Select(jobColumns...).From("jobs").OrderBy("created_at DESC")
	if filter.StudentID != "" {
		query = query.Where(squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.PrinterID != "" {
		query = query.Where(squirrel.Eq{"printer_id": filter.PrinterID})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return r.query(ctx, query, "list jobs")
}

// Transition performs a compare-and-set status change
func (r *JobRepositoryPG) Transition(ctx context.Context, id string, t models.JobTransition) (*models.Job, error) {
	from := make([]string, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, string(s))
	}

	set := map[string]interface{}{
		"status":     string(t.To),
		"updated_at": t.At,
	}
	switch t.To {
	case models.JobApproved:
		set["approved_by"] = t.Actor
		set["approved_at"] = t.At
		if t.Printer != nil {
			set["printer_id"] = t.Printer.ID
			set["printer_name"] = t.Printer.Name
			set["printer_location"] = t.Printer.Location
		}
	case models.JobRejected:
		set["rejected_by"] = t.Actor
		set["rejected_at"] = t.At
		set["rejection_reason"] = t.Reason
		set["printer_id"] = nil
		set["printer_name"] = nil
		set["printer_location"] = nil
	case models.JobCompleted:
		set["completed_at"] = t.At
	}

	sql, args, err := r.sb.Update("jobs").
		SetMap(set).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + strings.Join(jobColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transition query: %w", err)
	}

	j, err := scanJob(r.q.QueryRow(ctx, sql, args...))
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("jobID", id).Str("to", string(t.To)).Msg("Error transitioning job")
		return nil, apperrors.Persistence("transition job", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, apperrors.NewInvalidTransitionError(string(current.Status))
}

// Delete removes a job
func (r *JobRepositoryPG) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("jobs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete job query: %w", err)
	}

	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("jobID", id).Msg("Error deleting job")
		return apperrors.Persistence("delete job", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("job not found")
	}
	return nil
}

// DeleteCompletedBefore removes completed jobs older than cutoff
func (r *JobRepositoryPG) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Job, error) {
	sql, args, err := r.sb.Delete("jobs").
		Where(squirrel.Eq{"status": string(models.JobCompleted)}).
		Where(squirrel.Lt{"completed_at": cutoff}).
		Suffix("RETURNING " + strings.Join(jobColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cleanup query: %w", err)
	}
	return r.queryRaw(ctx, sql, args, "delete completed jobs")
}

func (r *JobRepositoryPG) query(ctx context.Context, query squirrel.SelectBuilder, op string) ([]*models.Job, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}
	return r.queryRaw(ctx, sql, args, op)
}

func (r *JobRepositoryPG) queryRaw(ctx context.Context, sql string, args []interface{}, op string) ([]*models.Job, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying jobs")
		return nil, apperrors.Persistence(op, err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	return jobs, nil
}
