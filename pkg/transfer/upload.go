package transfer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zhengshuai-xiao/XferS/internal"
)

// Upload copies localPath to object, resuming from the offset saved under key.
//
// Each chunk is written at its absolute offset and the new offset is saved
// only after the backend accepted the write, so the checkpoint never runs
// ahead of the object. Re-running after any failure continues from the last
// saved offset and produces the same object as an uninterrupted run.
func (e *Engine) Upload(ctx context.Context, localPath, object, key string) (*Result, error) {
	res := &Result{Name: object, Path: localPath, Key: key}
	fail := func(kind error, off uint64, err error) error {
		return &Error{Kind: kind, Op: OpUpload, Name: object, Offset: off, Err: err}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return res, fail(ErrSourceOpenFailed, 0, err)
	}
	defer f.Close()
	fsize, err := internal.FileSize(f)
	if err != nil {
		return res, fail(ErrSourceOpenFailed, 0, err)
	}
	size := uint64(fsize)
	res.Size = size

	var fp string
	if e.conf.Dedup != nil {
		if fp, err = internal.ReaderFingerprint(f); err != nil {
			return res, fail(ErrSourceReadFailed, 0, err)
		}
		seen, err := e.conf.Dedup.Seen(ctx, fp)
		if err != nil {
			return res, fail(ErrStoreUnavailable, 0, err)
		}
		if seen {
			logger.Infof("%s already uploaded (fingerprint %s), skipping", localPath, fp)
			res.Skipped = true
			res.Offset = size
			return res, nil
		}
	}

	offset, err := e.store.Load(ctx, key)
	if err != nil {
		return res, fail(ErrStoreUnavailable, 0, err)
	}
	res.Offset = offset
	if offset > size {
		return res, fail(ErrCorruptCheckpoint, offset,
			fmt.Errorf("checkpoint %s is %d but %s has only %d bytes", key, offset, localPath, size))
	}
	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return res, fail(ErrSourceReadFailed, offset, err)
	}
	if offset > 0 {
		logger.Infof("resuming upload of %s to %s at %d/%d", localPath, object, offset, size)
	}
	e.report(OpUpload, object, offset, size)

	bufp := e.getBuf()
	defer e.putBuf(bufp)
	buf := *bufp

	for offset < size {
		want := uint64(len(buf))
		if remaining := size - offset; remaining < want {
			want = remaining
		}
		n, err := io.ReadFull(f, buf[:want])
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				err = fmt.Errorf("%s shrank to %d bytes during upload: %w", localPath, offset+uint64(n), err)
			}
			return res, fail(ErrSourceReadFailed, offset, err)
		}

		if err := e.objects.WriteAt(ctx, object, buf[:n], int64(offset)); err != nil {
			logger.Errorf("write of %d bytes at %d to %s failed: %s", n, offset, object, err)
			return res, fail(ErrDestinationWriteFailed, offset, err)
		}
		next := offset + uint64(n)
		if err := e.store.Save(ctx, key, next); err != nil {
			logger.Errorf("failed to save checkpoint %s=%d: %s", key, next, err)
			return res, fail(ErrStoreUnavailable, offset, err)
		}
		offset = next
		res.Offset = offset
		res.Moved += uint64(n)
		res.Chunks++
		e.report(OpUpload, object, offset, size)
	}

	if fp != "" {
		if err := e.conf.Dedup.Mark(ctx, fp); err != nil {
			// the object is already complete
			logger.Warnf("failed to record fingerprint of %s: %s", localPath, err)
		}
	}
	logger.Debugf("uploaded %s to %s: %d bytes in %d chunks, checkpoint %s=%d", localPath, object, res.Moved, res.Chunks, key, offset)
	return res, nil
}
