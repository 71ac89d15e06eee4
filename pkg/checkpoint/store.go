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

// Package checkpoint persists transfer progress: for every transfer key it
// records how many contiguous bytes from offset 0 are durable at the
// destination.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zhengshuai-xiao/XferS/internal"
)

var logger = internal.GetLogger("checkpoint")

// ErrStoreUnavailable is returned when the store cannot be reached or rejects
// a write. A transfer cannot continue without a durable checkpoint.
var ErrStoreUnavailable = errors.New("checkpoint store unavailable")

// Store maps a transfer key to the byte offset already written.
type Store interface {
	// Save durably associates offset with key.
	Save(ctx context.Context, key string, offset uint64) error
	// Load returns the saved offset, or 0 if the key was never set or holds
	// something that is not an offset.
	Load(ctx context.Context, key string) (uint64, error)
}

// Clearer removes a progress record. The transfer engine never calls it;
// cleanup is an operator decision.
type Clearer interface {
	Clear(ctx context.Context, key string) error
}

// DedupIndex remembers fingerprints of completely uploaded sources.
type DedupIndex interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Mark(ctx context.Context, fingerprint string) error
}

// Backend is what every driver in this package implements.
type Backend interface {
	Store
	Clearer
	DedupIndex
	Name() string
	Close() error
}

const dedupPrefix = "dedup:"

func dedupKey(fingerprint string) string {
	return dedupPrefix + fingerprint
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrStoreUnavailable, op, key, err)
}

// Open returns the driver selected by the URL scheme:
//
//	redis://[:password@]host:port[/db]   (also host1,host2 for cluster/sentinel)
//	rediss://[:password@]host:port[/db]  (TLS)
//	badger:///path/to/dir
//	memory://
func Open(rawURL string, conf *internal.Config) (Backend, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "redis://" + rawURL
	}
	p := strings.Index(rawURL, "://")
	scheme, rest := rawURL[:p], rawURL[p+3:]
	switch scheme {
	case "redis":
		return NewRedisStore(rest, conf)
	case "rediss":
		return NewRedisStore(rawURL, conf)
	case "badger":
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid badger url %s: %w", rawURL, err)
		}
		dir := u.Host + u.Path
		if dir == "" {
			return nil, fmt.Errorf("%w: badger url needs a directory", internal.ErrInvalidConfig)
		}
		return NewBadgerStore(dir)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: checkpoint scheme %q", internal.ENOTSUP, scheme)
	}
}
