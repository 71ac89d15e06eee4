package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhengshuai-xiao/XferS/pkg/checkpoint"
	"github.com/zhengshuai-xiao/XferS/pkg/objstore"
)

func TestDownloadChunks(t *testing.T) {
	_, data := writeSource(t, 10000)
	objects := newMemBackend()
	objects.objects["obj"] = data
	dst := filepath.Join(t.TempDir(), "nested", "out.bin")

	res, err := New(objects, checkpoint.NewMemoryStore(), &Config{ChunkSize: 4096}).Download(context.Background(), "obj", dst)
	require.NoError(t, err)
	assert.Equal(t, []ioRecord{
		{name: "obj", off: 0, len: 4096},
		{name: "obj", off: 4096, len: 4096},
		{name: "obj", off: 8192, len: 1808},
	}, objects.reads)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, uint64(10000), res.Offset)
	assert.Equal(t, 3, res.Chunks)
}

func TestDownloadEmptyObject(t *testing.T) {
	objects := newMemBackend()
	objects.objects["empty"] = []byte{}
	dst := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(dst, []byte("stale content"), 0644))

	res, err := New(objects, nil, nil).Download(context.Background(), "empty", dst)
	require.NoError(t, err)
	assert.Empty(t, objects.reads)
	assert.Equal(t, 0, res.Chunks)
	fi, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fi.Size())
}

func TestDownloadNotFound(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")
	_, err := New(newMemBackend(), nil, nil).Download(context.Background(), "missing", dst)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, ErrObjectNotFound, KindOf(err))
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "no local file for a missing object")
}

func TestDownloadStatFailed(t *testing.T) {
	objects := newMemBackend()
	objects.statErr = errors.New("403 forbidden")
	_, err := New(objects, nil, nil).Download(context.Background(), "o", filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, ErrDestinationStatFailed)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
}

func TestDownloadReadFailed(t *testing.T) {
	_, data := writeSource(t, 10000)
	dst := filepath.Join(t.TempDir(), "out.bin")

	t.Run("Error", func(t *testing.T) {
		objects := newMemBackend()
		objects.objects["o"] = data
		cause := errors.New("connection reset")
		objects.readErr = cause
		_, err := New(objects, nil, nil).Download(context.Background(), "o", dst)
		assert.ErrorIs(t, err, ErrDestinationReadFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("ShortRead", func(t *testing.T) {
		objects := newMemBackend()
		objects.objects["o"] = data
		objects.truncate = 10
		_, err := New(objects, nil, nil).Download(context.Background(), "o", dst)
		assert.ErrorIs(t, err, ErrDestinationReadFailed)
		var te *Error
		require.True(t, errors.As(err, &te))
		assert.Equal(t, OpDownload, te.Op)
		assert.Equal(t, uint64(0), te.Offset)
	})
}

func TestDownloadLocalOpenFailed(t *testing.T) {
	objects := newMemBackend()
	objects.objects["o"] = []byte("x")
	dir := t.TempDir()
	_, err := New(objects, nil, nil).Download(context.Background(), "o", dir)
	assert.ErrorIs(t, err, ErrLocalOpenFailed)
}

func TestUploadDownloadPOSIX(t *testing.T) {
	ctx := context.Background()
	src, data := writeSource(t, 123457)
	objects, err := objstore.NewPOSIXBackend(t.TempDir())
	require.NoError(t, err)
	e := New(objects, checkpoint.NewMemoryStore(), &Config{ChunkSize: 8192})

	_, err = e.Upload(ctx, src, "dir/data.bin", "dir/data.bin:uploaded")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "back.bin")
	res, err := e.Download(ctx, "dir/data.bin", dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(data)), res.Offset)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDownloadLocalWriteFailed(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	objects := newMemBackend()
	objects.objects["o"] = []byte("some bytes that will not fit")

	_, err := New(objects, nil, nil).Download(context.Background(), "o", "/dev/full")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocalWriteFailed)
	assert.ErrorIs(t, err, syscall.ENOSPC)
	assert.Len(t, objects.reads, 1)
}
