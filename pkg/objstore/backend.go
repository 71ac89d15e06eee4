// Copyright 2025 zhengshuai.xiao@outlook.com
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and

// Package objstore provides the object destinations a transfer reads from
// and writes to. Every backend supports positioned writes, so rewriting the
// same bytes at the same offset is always safe.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zhengshuai-xiao/XferS/internal"
)

var logger = internal.GetLogger("objstore")

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrInvalidObjectName = errors.New("invalid object name")
)

type ObjectInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Backend is an object destination addressed by name.
type Backend interface {
	// WriteAt writes all of p at byte offset off of the object, creating
	// the object if needed.
	WriteAt(ctx context.Context, name string, p []byte, off int64) error
	// ReadAt reads len(p) bytes at off. Like io.ReaderAt it returns a
	// non-nil error whenever n < len(p).
	ReadAt(ctx context.Context, name string, p []byte, off int64) (n int, err error)
	// Stat returns ErrObjectNotFound (wrapped) when the object is absent.
	Stat(ctx context.Context, name string) (ObjectInfo, error)
	String() string
}

// New builds the backend selected by conf.Backend.
func New(ctx context.Context, conf *internal.Config) (Backend, error) {
	switch conf.Backend {
	case internal.BackendPOSIX:
		return NewPOSIXBackend(conf.Root)
	case internal.BackendMinio:
		return NewMinioBackend(ctx, conf)
	case internal.BackendS3:
		return NewAWSBackend(ctx, conf)
	default:
		return nil, fmt.Errorf("%w: %q", internal.ErrUnknownBackend, conf.Backend)
	}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrObjectNotFound, name)
}
