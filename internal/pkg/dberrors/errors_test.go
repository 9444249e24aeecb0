package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "students_email_key"})
	require.True(t, IsUniqueViolation(unique))
	require.True(t, IsDuplicateConstraintError(unique, "students_email_key"))
	require.False(t, IsDuplicateConstraintError(unique, "students_student_number_key"))
	require.False(t, IsForeignKeyViolation(unique))

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	require.True(t, IsForeignKeyViolation(fk))
	require.True(t, IsCheckViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation}))

	require.True(t, IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	require.False(t, IsUniqueViolation(errors.New("boom")))
}
