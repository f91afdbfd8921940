package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "1.md")

	require.NoError(t, writeFileAtomic(target, []byte("first"), 0o644))
	require.NoError(t, writeFileAtomic(target, []byte("second"), 0o644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not survive a successful write")
	assert.Equal(t, "1.md", entries[0].Name())
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := writeFileAtomic(filepath.Join(t.TempDir(), "nope", "1.md"), []byte("x"), 0o644)
	assert.Error(t, err)
}

func TestIsTempFile(t *testing.T) {
	assert.True(t, isTempFile(filepath.Join("vault", TempFilePrefix+"123")))
	assert.False(t, isTempFile("vault/1.md"))
}
