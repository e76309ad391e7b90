package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"backups/a.zip":    "backups/a.zip",
		"/backups/a.zip":   "backups/a.zip",
		"./a.zip":          "a.zip",
		`backups\b.zip`:    "backups/b.zip",
		"backups/../c.zip": "c.zip",
	}
	for in, want := range cases {
		got, err := sanitizeKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "  ", ".", "..", "../etc/passwd"} {
		_, err := sanitizeKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestWriteAndPrune(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileStore(root, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range []string{"b-20250102.zip", "b-20250101.zip", "b-20250103.zip"} {
		key, err := fs.Write(ctx, "backups/"+name, []byte(name))
		require.NoError(t, err)
		assert.Equal(t, "backups/"+name, key)
	}

	entries, err := os.ReadDir(filepath.Join(root, "backups"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"b-20250102.zip", "b-20250103.zip"}, names)

	data, err := os.ReadFile(filepath.Join(root, "backups", "b-20250103.zip"))
	require.NoError(t, err)
	assert.Equal(t, "b-20250103.zip", string(data))
}

func TestWriteHonoursContextAndNilStore(t *testing.T) {
	var nilStore *FileStore
	_, err := nilStore.Write(context.Background(), "a", nil)
	assert.Error(t, err)

	fs, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fs.Write(ctx, "a", nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewFileStore("", 1)
	assert.Error(t, err)
}
