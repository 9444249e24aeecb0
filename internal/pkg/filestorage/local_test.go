package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T, maxBytes int64) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, maxBytes, zerolog.Nop())
	require.NoError(t, err)
	return ls, dir
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	ls, dir := newStorage(t, 0)

	info, err := ls.Save("Thesis.PDF", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, "Thesis.PDF", info.Filename)
	require.Equal(t, int64(8), info.FileSize)
	require.True(t, strings.HasSuffix(info.Path, ".pdf"))

	stored := filepath.Join(dir, filepath.FromSlash(info.Path))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(data))

	require.NoError(t, ls.Delete(info.Path))
	_, err = os.Stat(stored)
	require.True(t, os.IsNotExist(err))

	// Deleting again is a no-op
	require.NoError(t, ls.Delete(info.Path))
}

func TestLocalStorage_UniqueNames(t *testing.T) {
	ls, _ := newStorage(t, 0)
	a, err := ls.Save("notes.docx", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := ls.Save("notes.docx", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, a.Path, b.Path)
}

func TestLocalStorage_RejectsOversizedUpload(t *testing.T) {
	ls, dir := newStorage(t, 4)

	_, err := ls.Save("big.pdf", strings.NewReader("12345"))
	require.ErrorIs(t, err, ErrTooLarge)

	// Nothing is left behind
	var files []string
	require.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return err
	}))
	require.Empty(t, files)

	_, err = ls.Save("ok.pdf", strings.NewReader("1234"))
	require.NoError(t, err)
}

func TestLocalStorage_DeleteRefusesEscapes(t *testing.T) {
	ls, _ := newStorage(t, 0)
	require.Error(t, ls.Delete("../outside.pdf"))
	require.Error(t, ls.Delete("/etc/passwd"))
}
