package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationVersion(t *testing.T) {
	require.Equal(t, "001", MigrationVersion("001_init.sql"))
	require.Equal(t, "002", MigrationVersion("/srv/migrations/002_add_pickup_index.sql"))
}

func TestPendingFiles_SortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"010_later.sql", "002_next.sql", "001_init.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := PendingFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "001_init.sql"),
		filepath.Join(dir, "002_next.sql"),
		filepath.Join(dir, "010_later.sql"),
	}, files)

	_, err = PendingFiles(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestInitMigrationDeclaresNamedConstraints(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)

	sql := string(content)
	require.Contains(t, sql, "CONSTRAINT students_email_key UNIQUE (email)")
	require.Contains(t, sql, "CONSTRAINT students_student_number_key UNIQUE (student_number)")
	require.Contains(t, sql, "wallet_balance      NUMERIC(12,2)")
}
