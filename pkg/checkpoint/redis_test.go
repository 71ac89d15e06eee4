package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhengshuai-xiao/XferS/internal"
)

func TestRedisStoreNonNumericValue(t *testing.T) {
	m := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer s.Close()

	require.NoError(t, m.Set("garbage", "not-a-number"))
	off, err := s.Load(context.Background(), "garbage")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), off)

	require.NoError(t, m.Set("padded", " 4096\n"))
	off, err = s.Load(context.Background(), "padded")
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), off)

	require.NoError(t, m.Set("negative", "-1"))
	off, err = s.Load(context.Background(), "negative")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), off)
}

func TestRedisStoreUnavailable(t *testing.T) {
	m := miniredis.RunT(t)
	conf := internal.DefaultConfig()
	conf.Retries = 0
	conf.ReadTimeout = 200 * time.Millisecond
	conf.WriteTimeout = 200 * time.Millisecond
	s, err := NewRedisStore(m.Addr(), conf)
	require.NoError(t, err)
	defer s.Close()

	m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = s.Save(ctx, "k", 1)
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "got %v", err)

	_, err = s.Load(ctx, "k")
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "got %v", err)
}

func TestNewRedisStoreConnectFailure(t *testing.T) {
	m := miniredis.RunT(t)
	addr := m.Addr()
	m.Close()

	conf := internal.DefaultConfig()
	conf.Retries = 0
	_, err := NewRedisStore(addr, conf)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestRedisStorePasswordFromEnv(t *testing.T) {
	m := miniredis.RunT(t)
	m.RequireAuth("s3cret")
	t.Setenv("REDIS_PASSWORD", "s3cret")

	s, err := NewRedisStore(m.Addr(), internal.DefaultConfig())
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Save(context.Background(), "k", 3))
}

func TestCheckRedisInfo(t *testing.T) {
	raw := `# Server
redis_version:7.2.4
# Persistence
aof_enabled:0
# Memory
maxmemory_policy:noeviction
`
	info, err := checkRedisInfo(raw)
	require.NoError(t, err)
	assert.False(t, info.aofEnabled)
	assert.Equal(t, "7.2.4", info.redisVersion)
	assert.Equal(t, "noeviction", info.maxMemoryPolicy)

	info, err = checkRedisInfo("redis_version:6.0.9\r\naof_enabled:1\r\n")
	require.NoError(t, err)
	assert.True(t, info.aofEnabled)

	_, err = checkRedisInfo("redis_version:2.4.0\n")
	assert.Error(t, err)

	_, err = checkRedisInfo("redis_version:garbage\n")
	assert.NoError(t, err, "unparsable versions only warn")
}

func TestParseRedisVersion(t *testing.T) {
	ver, err := parseRedisVersion("7.2.4")
	require.NoError(t, err)
	assert.Equal(t, 7, ver.major)
	assert.Equal(t, 2, ver.minor)
	assert.False(t, ver.olderThan(oldestSupportedVer))

	_, err = parseRedisVersion("7")
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	conf := internal.DefaultConfig()

	opts, err := redisOptions("127.0.0.1:6379/1", conf)
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:6379"}, opts.Addrs)
	assert.Equal(t, 1, opts.DB)
	assert.Nil(t, opts.TLSConfig)

	opts, err = redisOptions("rediss://:pw@cache.example.com:6380/2", conf)
	require.NoError(t, err)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache.example.com", opts.TLSConfig.ServerName)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)

	opts, err = redisOptions("mymaster,10.0.0.1:26379,10.0.0.2:26379/3", conf)
	require.NoError(t, err)
	assert.Equal(t, "mymaster", opts.MasterName)
	assert.Equal(t, []string{"10.0.0.1:26379", "10.0.0.2:26379"}, opts.Addrs)
}

func TestOpenRedissNeedsTLSServer(t *testing.T) {
	m := miniredis.RunT(t)
	conf := internal.DefaultConfig()
	conf.Retries = 0
	conf.ReadTimeout = 500 * time.Millisecond
	conf.WriteTimeout = 500 * time.Millisecond

	_, err := Open("rediss://"+m.Addr()+"/0", conf)
	require.Error(t, err, "a plain-text server must not satisfy rediss://")
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "got %v", err)

	keys := m.Keys()
	assert.Empty(t, keys)
}
