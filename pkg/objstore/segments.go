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
package objstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

/*
S3 has no positioned writes, so an object is stored as segments:

	<name>.segments/<offset, 20 digits>  -> bytes written at that offset

Re-writing a chunk at the same offset overwrites the same key. The logical
object is the contiguous run of segments that starts at offset 0; a gap
ends it.
*/
const (
	segmentSuffix   = ".segments/"
	segmentKeyWidth = 20
)

type segmentInfo struct {
	key     string
	size    int64
	modTime time.Time
}

// segmentClient is the handful of bucket operations a SegmentBackend needs.
type segmentClient interface {
	putSegment(ctx context.Context, key string, p []byte) error
	// getSegment reads exactly length bytes starting at off within the segment.
	getSegment(ctx context.Context, key string, off, length int64) ([]byte, error)
	listSegments(ctx context.Context, prefix string) ([]segmentInfo, error)
	String() string
}

func segmentPrefix(name string) string {
	return name + segmentSuffix
}

func segmentKey(name string, off int64) string {
	return fmt.Sprintf("%s%0*d", segmentPrefix(name), segmentKeyWidth, off)
}

// span maps [objOff, objOff+length) of the logical object onto a segment.
type span struct {
	key    string
	objOff int64
	segOff int64
	length int64
}

type layout struct {
	spans   []span
	size    int64
	modTime time.Time
}

// resolveLayout orders segments by offset and keeps the contiguous run from
// offset 0. Every upload starts by writing offset 0, so segments older than
// the one at offset 0 were left by an earlier upload and are ignored. Within
// one upload, overlapping segments hold the same source bytes; the first wins.
func resolveLayout(prefix string, segs []segmentInfo) (*layout, bool) {
	type placed struct {
		segmentInfo
		off int64
	}
	var all []placed
	for _, s := range segs {
		off, err := strconv.ParseInt(strings.TrimPrefix(s.key, prefix), 10, 64)
		if err != nil || off < 0 {
			logger.Warnf("ignoring unexpected key %s under %s", s.key, prefix)
			continue
		}
		if s.size <= 0 {
			continue
		}
		all = append(all, placed{segmentInfo: s, off: off})
	}
	if len(all) == 0 {
		return nil, false
	}
	sort.Slice(all, func(i, j int) bool { return all[i].off < all[j].off })
	if all[0].off != 0 {
		return nil, false
	}
	gen := all[0].modTime
	current := all[:0]
	for _, s := range all {
		if s.modTime.Before(gen) {
			logger.Debugf("ignoring stale segment %s from an earlier upload", s.key)
			continue
		}
		current = append(current, s)
	}
	all = current

	lay := &layout{}
	for _, s := range all {
		if s.off > lay.size {
			logger.Debugf("gap under %s at %d, next segment starts at %d", prefix, lay.size, s.off)
			break
		}
		end := s.off + s.size
		if end <= lay.size {
			continue
		}
		lay.spans = append(lay.spans, span{
			key:    s.key,
			objOff: lay.size,
			segOff: lay.size - s.off,
			length: end - lay.size,
		})
		lay.size = end
		if s.modTime.After(lay.modTime) {
			lay.modTime = s.modTime
		}
	}
	if len(lay.spans) == 0 {
		return nil, false
	}
	return lay, true
}

// SegmentBackend implements Backend on an S3-compatible bucket.
type SegmentBackend struct {
	client segmentClient

	mu      sync.Mutex
	layouts map[string]*layout
}

func newSegmentBackend(client segmentClient) *SegmentBackend {
	return &SegmentBackend{
		client:  client,
		layouts: make(map[string]*layout),
	}
}

func (s *SegmentBackend) String() string {
	return s.client.String()
}

func (s *SegmentBackend) WriteAt(ctx context.Context, name string, p []byte, off int64) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidObjectName)
	}
	key := segmentKey(name, off)
	if err := s.client.putSegment(ctx, key, p); err != nil {
		return fmt.Errorf("failed to put segment %s: %w", key, err)
	}
	s.mu.Lock()
	delete(s.layouts, name)
	s.mu.Unlock()
	return nil
}

func (s *SegmentBackend) refresh(ctx context.Context, name string) (*layout, error) {
	prefix := segmentPrefix(name)
	segs, err := s.client.listSegments(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments of %s: %w", name, err)
	}
	lay, ok := resolveLayout(prefix, segs)
	if !ok {
		return nil, notFound(name)
	}
	s.mu.Lock()
	s.layouts[name] = lay
	s.mu.Unlock()
	return lay, nil
}

func (s *SegmentBackend) cached(ctx context.Context, name string) (*layout, error) {
	s.mu.Lock()
	lay, ok := s.layouts[name]
	s.mu.Unlock()
	if ok {
		return lay, nil
	}
	return s.refresh(ctx, name)
}

func (s *SegmentBackend) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	lay, err := s.refresh(ctx, name)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Name: name, Size: lay.size, ModTime: lay.modTime}, nil
}

func (s *SegmentBackend) ReadAt(ctx context.Context, name string, p []byte, off int64) (int, error) {
	lay, err := s.cached(ctx, name)
	if err != nil {
		return 0, err
	}
	if off >= lay.size {
		return 0, io.EOF
	}

	// first span that ends after off
	i := sort.Search(len(lay.spans), func(i int) bool {
		return lay.spans[i].objOff+lay.spans[i].length > off
	})
	n := 0
	for ; i < len(lay.spans) && n < len(p); i++ {
		sp := lay.spans[i]
		cur := off + int64(n)
		from := cur - sp.objOff
		length := sp.length - from
		if want := int64(len(p) - n); length > want {
			length = want
		}
		data, err := s.client.getSegment(ctx, sp.key, sp.segOff+from, length)
		if err != nil {
			return n, fmt.Errorf("failed to read segment %s: %w", sp.key, err)
		}
		n += copy(p[n:], data)
		if int64(len(data)) < length {
			return n, io.ErrUnexpectedEOF
		}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
