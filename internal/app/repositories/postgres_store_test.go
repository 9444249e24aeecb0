package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

type recordedQuery struct {
	sql  string
	args []any
}

// fakeQuerier answers QueryRow calls from a queue of rows and records every statement
type fakeQuerier struct {
	rows    []pgx.Row
	queries []recordedQuery
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, recordedQuery{sql, args})
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, recordedQuery{sql, args})
	return nil, errors.New("not supported")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, recordedQuery{sql, args})
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

type fakeRow struct {
	err    error
	scanFn func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.scanFn(dest...)
}

func boolRow(v bool) fakeRow {
	return fakeRow{scanFn: func(dest ...any) error {
		*(dest[0].(*bool)) = v
		return nil
	}}
}

func newStudentRepo(q *fakeQuerier) *StudentRepositoryPG {
	return &StudentRepositoryPG{q: q, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

func TestStudentDebit_ConditionalUpdate(t *testing.T) {
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{scanFn: func(dest ...any) error {
		*(dest[0].(*decimal.Decimal)) = decimal.RequireFromString("4.50")
		return nil
	}}}}

	bal, err := newStudentRepo(q).Debit(context.Background(), "s1", decimal.RequireFromString("10.5"))
	require.NoError(t, err)
	require.Equal(t, "4.50", bal.StringFixed(2))

	require.Len(t, q.queries, 1)
	sql := q.queries[0].sql
	require.True(t, strings.HasPrefix(sql, "UPDATE students SET wallet_balance = wallet_balance - $1::numeric"))
	require.Contains(t, sql, "wallet_balance >= $")
	require.Contains(t, sql, "RETURNING wallet_balance")
	require.Equal(t, "10.50", q.queries[0].args[0])
}

func TestStudentDebit_InsufficientFunds(t *testing.T) {
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{err: pgx.ErrNoRows}, boolRow(true)}}
	_, err := newStudentRepo(q).Debit(context.Background(), "s1", decimal.NewFromInt(5))
	require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	require.Contains(t, q.queries[1].sql, "SELECT EXISTS(")
}

func TestStudentDebit_UnknownStudent(t *testing.T) {
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{err: pgx.ErrNoRows}, boolRow(false)}}
	_, err := newStudentRepo(q).Debit(context.Background(), "nope", decimal.NewFromInt(5))
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStudentDebit_DriverFailureIsPersistence(t *testing.T) {
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{err: errors.New("connection reset")}}}
	_, err := newStudentRepo(q).Debit(context.Background(), "s1", decimal.NewFromInt(5))
	require.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestJobTransition_GuardsOnSourceStatus(t *testing.T) {
	q := &fakeQuerier{rows: []pgx.Row{
		fakeRow{err: pgx.ErrNoRows},
		fakeRow{scanFn: func(dest ...any) error {
			*(dest[11].(*string)) = string(models.JobCompleted)
			return nil
		}},
	}}
	repo := &JobRepositoryPG{q: q, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}

	_, err := repo.Transition(context.Background(), "j1", models.JobTransition{
		From:   []models.JobStatus{models.JobPending, models.JobApproved},
		To:     models.JobRejected,
		At:     time.Now(),
		Actor:  "a1",
		Reason: "Rejected by admin",
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	require.Equal(t, "Job is already completed", err.Error())

	sql := q.queries[0].sql
	require.True(t, strings.HasPrefix(sql, "UPDATE jobs SET"))
	require.Contains(t, sql, "status IN ($")
	require.Contains(t, sql, "RETURNING id, student_id")
}
