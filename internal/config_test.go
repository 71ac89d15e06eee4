package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileDefaults(t *testing.T) {
	conf, err := LoadConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMetaURL, conf.MetaURL)
	assert.Equal(t, BackendPOSIX, conf.Backend)
	assert.Equal(t, DefaultChunkSize, conf.ChunkSize)
	assert.Equal(t, 3*time.Second, conf.ReadTimeout)
	assert.Empty(t, conf.Endpoint)
	assert.NoError(t, conf.Validate())
}

func TestBackendDefaultEndpoint(t *testing.T) {
	conf, err := LoadConfigFile("")
	require.NoError(t, err)
	conf.Backend = BackendS3
	conf.Bucket = "b"
	conf.SetBackendDefaults()
	assert.Empty(t, conf.Endpoint, "s3 leaves endpoint resolution to the SDK")
	assert.NoError(t, conf.Validate())

	conf.Backend = BackendMinio
	conf.SetBackendDefaults()
	assert.Equal(t, DefaultMinioEndpoint, conf.Endpoint)
	assert.NoError(t, conf.Validate())

	conf = DefaultConfig()
	conf.Backend = BackendMinio
	conf.Bucket = "b"
	conf.Endpoint = "minio.local:9000"
	conf.SetBackendDefaults()
	assert.Equal(t, "minio.local:9000", conf.Endpoint, "an explicit endpoint is kept")

	conf.Endpoint = ""
	assert.True(t, errors.Is(conf.Validate(), ErrInvalidConfig), "minio needs an endpoint")
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xfers.yaml")
	content := `
meta: redis://10.0.0.5:6379/2
backend: minio
endpoint: minio.local:9000
bucket: backups
access_key: minio
secret_key: minioadmin
chunk_size: 8192
timeout: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	conf, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://10.0.0.5:6379/2", conf.MetaURL)
	assert.Equal(t, BackendMinio, conf.Backend)
	assert.Equal(t, "backups", conf.Bucket)
	assert.Equal(t, 8192, conf.ChunkSize)
	assert.Equal(t, 90*time.Second, conf.Timeout)
	assert.Equal(t, "us-east-1", conf.Region, "unset keys keep their defaults")
	assert.NoError(t, conf.Validate())
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	conf := DefaultConfig()
	conf.ChunkSize = 0
	assert.True(t, errors.Is(conf.Validate(), ErrInvalidConfig))

	conf = DefaultConfig()
	conf.Backend = "ceph"
	assert.True(t, errors.Is(conf.Validate(), ErrUnknownBackend))

	conf = DefaultConfig()
	conf.Backend = BackendS3
	assert.True(t, errors.Is(conf.Validate(), ErrInvalidConfig), "s3 without bucket")
	conf.Bucket = "b"
	assert.NoError(t, conf.Validate())
}
