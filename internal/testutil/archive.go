package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// WriteArchive writes a zip archive named name into dir with the given
// entries and returns its path.
func WriteArchive(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for entry, content := range entries {
		ew, err := w.Create(entry)
		require.NoError(t, err)
		_, err = ew.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

// WriteCorruptArchive writes a file with an archive name but garbage content.
func WriteCorruptArchive(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))
	return path
}
