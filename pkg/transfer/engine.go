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

// Package transfer moves files to and from an object backend in fixed size
// chunks. Uploads record a checkpoint after every chunk and resume from it;
// downloads always start from the beginning.
package transfer

import (
	"sync"

	"github.com/zhengshuai-xiao/XferS/internal"
	"github.com/zhengshuai-xiao/XferS/pkg/checkpoint"
	"github.com/zhengshuai-xiao/XferS/pkg/objstore"
)

var logger = internal.GetLogger("transfer")

type Config struct {
	// ChunkSize defaults to internal.DefaultChunkSize.
	ChunkSize int
	Progress  Callback
	// Dedup, when set, skips uploads of sources whose fingerprint was
	// already uploaded in full.
	Dedup checkpoint.DedupIndex
}

type Engine struct {
	objects objstore.Backend
	store   checkpoint.Store
	conf    Config

	buffPool sync.Pool
}

// Result summarizes one Upload or Download call.
type Result struct {
	Name string
	Path string
	Key  string
	// Offset is the final checkpoint (uploads) or bytes written locally (downloads).
	Offset uint64
	Size   uint64
	// Moved counts bytes transferred by this call only.
	Moved   uint64
	Chunks  int
	Skipped bool
}

func New(objects objstore.Backend, store checkpoint.Store, conf *Config) *Engine {
	e := &Engine{objects: objects, store: store}
	if conf != nil {
		e.conf = *conf
	}
	if e.conf.ChunkSize <= 0 {
		e.conf.ChunkSize = internal.DefaultChunkSize
	}
	size := e.conf.ChunkSize
	e.buffPool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}
	return e
}

func (e *Engine) getBuf() *[]byte {
	return e.buffPool.Get().(*[]byte)
}

func (e *Engine) putBuf(b *[]byte) {
	e.buffPool.Put(b)
}
