package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zhengshuai-xiao/XferS/internal"
	"github.com/zhengshuai-xiao/XferS/pkg/objstore"
)

// Download copies object into localPath, truncating any previous content.
// It is not resumable. On failure the partial local file is left in place.
func (e *Engine) Download(ctx context.Context, object, localPath string) (*Result, error) {
	res := &Result{Name: object, Path: localPath}
	fail := func(kind error, off uint64, err error) error {
		return &Error{Kind: kind, Op: OpDownload, Name: object, Offset: off, Err: err}
	}

	info, err := e.objects.Stat(ctx, object)
	if err != nil {
		if errors.Is(err, objstore.ErrObjectNotFound) {
			return res, fail(ErrObjectNotFound, 0, err)
		}
		return res, fail(ErrDestinationStatFailed, 0, err)
	}
	size := uint64(info.Size)
	res.Size = size

	f, err := internal.CreateTruncate(localPath)
	if err != nil {
		return res, fail(ErrLocalOpenFailed, 0, err)
	}
	defer f.Close()
	e.report(OpDownload, object, 0, size)

	bufp := e.getBuf()
	defer e.putBuf(bufp)
	buf := *bufp

	var off uint64
	for off < size {
		want := uint64(len(buf))
		if remaining := size - off; remaining < want {
			want = remaining
		}
		n, err := e.objects.ReadAt(ctx, object, buf[:want], int64(off))
		if uint64(n) < want {
			if err == nil || err == io.EOF {
				err = fmt.Errorf("short read of %d/%d bytes at %d: %w", n, want, off, io.ErrUnexpectedEOF)
			}
			return res, fail(ErrDestinationReadFailed, off, err)
		}
		if _, err := internal.WriteAll(f, buf[:want]); err != nil {
			return res, fail(ErrLocalWriteFailed, off, err)
		}
		off += want
		res.Offset = off
		res.Moved = off
		res.Chunks++
		e.report(OpDownload, object, off, size)
	}

	if err := f.Close(); err != nil {
		return res, fail(ErrLocalWriteFailed, off, err)
	}
	logger.Debugf("downloaded %s to %s: %d bytes in %d chunks", object, localPath, off, res.Chunks)
	return res, nil
}
