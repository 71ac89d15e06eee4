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
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/zhengshuai-xiao/XferS/internal"
)

/*
Progress:  $key -> "<decimal offset>"
Dedup:     dedup:$sha256 -> "1"
*/

// RedisStore keeps checkpoints as plain decimal strings so they can be
// inspected and edited with redis-cli.
type RedisStore struct {
	rdb  redis.UniversalClient
	addr string
}

// NewRedisStore connects to addr, e.g. "127.0.0.1:6379/1",
// "master,sentinel1:26379,sentinel2:26379/1" or "rediss://host:6380/1" for TLS.
func NewRedisStore(addr string, conf *internal.Config) (*RedisStore, error) {
	rdb, err := newUniversalRedisClient(addr, conf)
	if err != nil {
		return nil, err
	}
	s := &RedisStore{rdb: rdb, addr: addr}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rawInfo, err := rdb.Info(ctx).Result()
	if err != nil {
		logger.Warnf("Failed to query redis info: %s", err)
	} else if _, err := checkRedisInfo(rawInfo); err != nil {
		rdb.Close()
		return nil, err
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an already connected client.
func NewRedisStoreFromClient(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Save(ctx context.Context, key string, offset uint64) error {
	if err := s.rdb.Set(ctx, key, strconv.FormatUint(offset, 10), 0).Err(); err != nil {
		return unavailable("save", key, err)
	}
	logger.Tracef("saved checkpoint %s=%d", key, offset)
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (uint64, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("load", key, err)
	}
	offset, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
	if err != nil {
		logger.Warnf("checkpoint %s holds non-numeric value %q, starting from 0", key, val)
		return 0, nil
	}
	return offset, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return unavailable("clear", key, err)
	}
	return nil
}

func (s *RedisStore) Seen(ctx context.Context, fingerprint string) (bool, error) {
	n, err := s.rdb.Exists(ctx, dedupKey(fingerprint)).Result()
	if err != nil {
		return false, unavailable("exists", dedupKey(fingerprint), err)
	}
	return n == 1, nil
}

func (s *RedisStore) Mark(ctx context.Context, fingerprint string) error {
	if err := s.rdb.Set(ctx, dedupKey(fingerprint), "1", 0).Err(); err != nil {
		return unavailable("mark", dedupKey(fingerprint), err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func redisOptions(addr string, conf *internal.Config) (*redis.UniversalOptions, error) {
	uri := addr
	if !strings.Contains(uri, "://") {
		uri = "redis://" + addr
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address format: %w", err)
	}

	// ParseURL accepts a single host only; db, credentials and TLS are shared
	hosts := strings.Split(u.Host, ",")
	single := *u
	single.Host = hosts[len(hosts)-1]
	opt, err := redis.ParseURL(single.String())
	if err != nil {
		return nil, fmt.Errorf("could not parse redis URL: %w", err)
	}

	// Password from environment if not in URL
	if opt.Password == "" {
		opt.Password = os.Getenv("REDIS_PASSWORD")
	}
	if opt.Password == "" {
		opt.Password = os.Getenv("META_PASSWORD")
	}

	universalOptions := &redis.UniversalOptions{
		Addrs:        hosts,
		DB:           opt.DB,
		Username:     opt.Username,
		Password:     opt.Password,
		MaxRetries:   conf.Retries,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		// set by ParseURL for rediss://
		TLSConfig: opt.TLSConfig,
	}

	if universalOptions.MaxRetries == 0 {
		universalOptions.MaxRetries = -1 // Disable retries for redis client
	}

	// Check for sentinel mode. Convention: masterName,sentinel1:port,sentinel2:port...
	if len(hosts) > 1 && !strings.Contains(hosts[0], ":") {
		universalOptions.MasterName = hosts[0]
		universalOptions.Addrs = hosts[1:]
	}
	return universalOptions, nil
}

// newUniversalRedisClient creates a new Redis client that can connect to a single node,
// a cluster, or a sentinel setup.
func newUniversalRedisClient(addr string, conf *internal.Config) (redis.UniversalClient, error) {
	universalOptions, err := redisOptions(addr, conf)
	if err != nil {
		return nil, err
	}
	if universalOptions.MasterName != "" {
		logger.Infof("Connecting to Redis in Sentinel mode. Master: %s, Sentinels: %v", universalOptions.MasterName, universalOptions.Addrs)
	} else if len(universalOptions.Addrs) > 1 {
		logger.Infof("Connecting to Redis in Cluster mode. Nodes: %v", universalOptions.Addrs)
	} else {
		logger.Infof("Connecting to Redis in Single-node mode. Address: %s, TLS: %v", universalOptions.Addrs[0], universalOptions.TLSConfig != nil)
	}

	rdb := redis.NewUniversalClient(universalOptions)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, unavailable("connect", internal.RemovePassword(addr), err)
	}

	logger.Info("Successfully connected to Redis.")
	return rdb, nil
}
