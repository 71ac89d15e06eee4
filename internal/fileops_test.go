package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAll(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test-writeall-*.txt")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())
	defer tmpfile.Close()

	content := []byte("this is a test content for WriteAll")
	n, err := WriteAll(tmpfile, content)
	assert.NoError(t, err)
	assert.Equal(t, len(content), n)

	readContent, err := os.ReadFile(tmpfile.Name())
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
}

func TestCreateTruncate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.bin")

	f, err := CreateTruncate(path)
	require.NoError(t, err)
	_, err = WriteAll(f, []byte("previous content"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = CreateTruncate(path)
	require.NoError(t, err)
	size, err := FileSize(f)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), size, "existing content must be truncated")
	f.Close()
}

func TestFileSizeRejectsDirectory(t *testing.T) {
	d, err := os.Open(t.TempDir())
	require.NoError(t, err)
	defer d.Close()

	_, err = FileSize(d)
	assert.Error(t, err)
}
