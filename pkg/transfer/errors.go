package transfer

import (
	"errors"
	"fmt"

	"github.com/zhengshuai-xiao/XferS/pkg/checkpoint"
	"github.com/zhengshuai-xiao/XferS/pkg/objstore"
)

var (
	ErrSourceOpenFailed       = errors.New("source open failed")
	ErrSourceReadFailed       = errors.New("source read failed")
	ErrDestinationWriteFailed = errors.New("destination write failed")
	ErrDestinationReadFailed  = errors.New("destination read failed")
	ErrDestinationStatFailed  = errors.New("destination stat failed")
	ErrCorruptCheckpoint      = errors.New("corrupt checkpoint")
	ErrLocalOpenFailed        = errors.New("local open failed")
	ErrLocalWriteFailed       = errors.New("local write failed")

	ErrStoreUnavailable = checkpoint.ErrStoreUnavailable
	ErrObjectNotFound   = objstore.ErrObjectNotFound
)

// Error describes a failed transfer. Offset is the last durable checkpoint
// for uploads and the number of bytes already written locally for downloads.
type Error struct {
	Kind   error
	Op     string
	Name   string
	Offset uint64
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Name, e.Offset, e.Kind)
	}
	return fmt.Sprintf("%s %s at offset %d: %v: %v", e.Op, e.Name, e.Offset, e.Kind, e.Err)
}

// Unwrap lets errors.Is match the kind as well as the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind of a transfer error, or nil if err is not one.
func KindOf(err error) error {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return nil
}
