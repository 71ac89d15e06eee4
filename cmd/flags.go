package cmd

import (
	"github.com/urfave/cli/v2"
	"github.com/zhengshuai-xiao/XferS/internal"
)

func globalFlags() []cli.Flag {
	def := internal.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file (yaml/json/toml); flags override its values",
			EnvVars: []string{"XFERS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "meta",
			Value:   def.MetaURL,
			Usage:   "checkpoint store: redis://host:port/db, badger:///dir or memory://",
			EnvVars: []string{"XFERS_META"},
		},
		&cli.StringFlag{
			Name:    "loglevel",
			Value:   def.LogLevel,
			Usage:   "log level: trace/debug/info/warn/error",
			EnvVars: []string{"XFERS_LOGLEVEL"},
		},
		&cli.StringFlag{
			Name:    "logdir",
			Usage:   "write logs to LOGDIR/xfers.log instead of stderr",
			EnvVars: []string{"XFERS_LOGDIR"},
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colors in log output",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "abort the whole transfer after this long (0 means no limit)",
			EnvVars: []string{"XFERS_TIMEOUT"},
		},
	}
}

func storageFlags() []cli.Flag {
	def := internal.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Value:   def.Backend,
			Usage:   "object backend: posix/minio/s3",
			EnvVars: []string{"XFERS_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "root",
			Value:   def.Root,
			Usage:   "root directory of the posix backend",
			EnvVars: []string{"XFERS_ROOT"},
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "S3 endpoint host:port (minio default " + internal.DefaultMinioEndpoint + ", s3 default from --region)",
			EnvVars: []string{"XFERS_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "access-key",
			Usage:   "S3 access key",
			EnvVars: []string{"XFERS_ACCESS_KEY", "MINIO_ROOT_USER"},
		},
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "S3 secret key",
			EnvVars: []string{"XFERS_SECRET_KEY", "MINIO_ROOT_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "bucket holding the objects",
			EnvVars: []string{"XFERS_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "region",
			Value:   def.Region,
			Usage:   "S3 region",
			EnvVars: []string{"XFERS_REGION"},
		},
		&cli.BoolFlag{
			Name:    "no-ssl",
			Usage:   "use plain http for the S3 endpoint",
			EnvVars: []string{"XFERS_NO_SSL"},
		},
		&cli.IntFlag{
			Name:    "chunk-size",
			Value:   def.ChunkSize,
			Usage:   "bytes moved per read/write",
			EnvVars: []string{"XFERS_CHUNK_SIZE"},
		},
	}
}

func expandFlags(compoundFlags ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, fs := range compoundFlags {
		flags = append(flags, fs...)
	}
	return flags
}
