package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendPOSIX = "posix"
	BackendMinio = "minio"
	BackendS3    = "s3"

	DefaultChunkSize     = 4096
	DefaultMetaURL       = "redis://127.0.0.1:6379/1"
	DefaultMinioEndpoint = "127.0.0.1:9000"
)

// Config carries everything a transfer command needs. It is built once per
// invocation and passed down explicitly.
type Config struct {
	MetaURL      string        `mapstructure:"meta"`
	Retries      int           `mapstructure:"retries"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	Backend   string `mapstructure:"backend"`
	Root      string `mapstructure:"root"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	NoSSL     bool   `mapstructure:"no_ssl"`

	ChunkSize int           `mapstructure:"chunk_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogLevel  string        `mapstructure:"loglevel"`
	LogDir    string        `mapstructure:"logdir"`
}

func DefaultConfig() *Config {
	return &Config{
		MetaURL:      DefaultMetaURL,
		Retries:      3,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Backend:      BackendPOSIX,
		Root:         "./objects",
		Region:       "us-east-1",
		ChunkSize:    DefaultChunkSize,
		LogLevel:     "info",
	}
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("meta", c.MetaURL)
	v.SetDefault("retries", c.Retries)
	v.SetDefault("read_timeout", c.ReadTimeout)
	v.SetDefault("write_timeout", c.WriteTimeout)
	v.SetDefault("backend", c.Backend)
	v.SetDefault("root", c.Root)
	v.SetDefault("endpoint", c.Endpoint)
	v.SetDefault("access_key", c.AccessKey)
	v.SetDefault("secret_key", c.SecretKey)
	v.SetDefault("bucket", c.Bucket)
	v.SetDefault("region", c.Region)
	v.SetDefault("no_ssl", c.NoSSL)
	v.SetDefault("chunk_size", c.ChunkSize)
	v.SetDefault("timeout", c.Timeout)
	v.SetDefault("loglevel", c.LogLevel)
	v.SetDefault("logdir", c.LogDir)
}

// LoadConfigFile reads a yaml/json/toml config file on top of the defaults.
// XFERS_* environment variables override values from the file.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix("XFERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	conf.SetBackendDefaults()
	return conf, nil
}

// SetBackendDefaults fills values that only make sense for the selected
// backend. An s3 backend without an endpoint is left empty so the AWS SDK
// resolves it from the region.
func (c *Config) SetBackendDefaults() {
	if c.Backend == BackendMinio && c.Endpoint == "" {
		c.Endpoint = DefaultMinioEndpoint
	}
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	switch c.Backend {
	case BackendPOSIX:
		if c.Root == "" {
			return fmt.Errorf("%w: posix backend needs a root directory", ErrInvalidConfig)
		}
	case BackendMinio, BackendS3:
		if c.Bucket == "" {
			return fmt.Errorf("%w: %s backend needs a bucket", ErrInvalidConfig, c.Backend)
		}
		if c.Endpoint == "" && c.Backend == BackendMinio {
			return fmt.Errorf("%w: %s backend needs an endpoint", ErrInvalidConfig, c.Backend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.MetaURL == "" {
		return fmt.Errorf("%w: meta url is empty", ErrInvalidConfig)
	}
	return nil
}
