package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"github.com/zhengshuai-xiao/XferS/internal"
	"github.com/zhengshuai-xiao/XferS/pkg/checkpoint"
	"github.com/zhengshuai-xiao/XferS/pkg/objstore"
	"github.com/zhengshuai-xiao/XferS/pkg/transfer"
)

// loadConfig starts from the config file (or the defaults) and applies every
// flag that was given on the command line or through its env var.
func loadConfig(c *cli.Context) (*internal.Config, error) {
	conf, err := internal.LoadConfigFile(c.String("config"))
	if err != nil {
		return nil, err
	}
	strs := map[string]*string{
		"meta":       &conf.MetaURL,
		"loglevel":   &conf.LogLevel,
		"logdir":     &conf.LogDir,
		"backend":    &conf.Backend,
		"root":       &conf.Root,
		"endpoint":   &conf.Endpoint,
		"access-key": &conf.AccessKey,
		"secret-key": &conf.SecretKey,
		"bucket":     &conf.Bucket,
		"region":     &conf.Region,
	}
	for name, dst := range strs {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("no-ssl") {
		conf.NoSSL = c.Bool("no-ssl")
	}
	if c.IsSet("chunk-size") {
		conf.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("timeout") {
		conf.Timeout = c.Duration("timeout")
	}
	conf.SetBackendDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func setupLogging(c *cli.Context, conf *internal.Config) error {
	internal.SetLogLevel(internal.ParseLogLevel(conf.LogLevel))
	if c.Bool("no-color") {
		internal.DisableLogColor()
	}
	internal.SetLogID(fmt.Sprintf("[%s] ", uuid.New().String()[:8]))
	if conf.LogDir == "" {
		return nil
	}
	if err := os.MkdirAll(conf.LogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", conf.LogDir, err)
	}
	return internal.SetOutFile(filepath.Join(conf.LogDir, "xfers.log"))
}

// session is everything one command needs, built from the flags.
type session struct {
	conf    *internal.Config
	store   checkpoint.Backend
	objects objstore.Backend
	cancel  context.CancelFunc
	ctx     context.Context
}

func (s *session) Close() {
	s.cancel()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warnf("failed to close checkpoint store: %s", err)
		}
	}
}

func newSession(c *cli.Context, withObjects bool) (*session, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(c, conf); err != nil {
		return nil, err
	}

	s := &session{conf: conf}
	if conf.Timeout > 0 {
		s.ctx, s.cancel = context.WithTimeout(c.Context, conf.Timeout)
	} else {
		s.ctx, s.cancel = context.WithCancel(c.Context)
	}

	logger.Debugf("checkpoint store %s", internal.RemovePassword(conf.MetaURL))
	if s.store, err = checkpoint.Open(conf.MetaURL, conf); err != nil {
		s.cancel()
		return nil, err
	}
	if withObjects {
		if s.objects, err = objstore.New(s.ctx, conf); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *session) engine(w io.Writer, dedup bool) *transfer.Engine {
	conf := &transfer.Config{ChunkSize: s.conf.ChunkSize}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		conf.Progress = func(ev transfer.Event) {
			fmt.Fprintf(w, "\r%s %s: %s / %s", ev.Op, ev.Name, humanize.IBytes(ev.Done), humanize.IBytes(ev.Total))
			if ev.Done == ev.Total {
				fmt.Fprintln(w)
			}
		}
	}
	if dedup {
		conf.Dedup = s.store
	}
	return transfer.New(s.objects, s.store, conf)
}

// reportFailure prints the error kind and the offset an operator can resume from.
func reportFailure(w io.Writer, err error) {
	var te *transfer.Error
	if !errors.As(err, &te) {
		return
	}
	switch te.Op {
	case transfer.OpUpload:
		fmt.Fprintf(w, "%s failed: %v; last durable offset %d (%s)\n",
			te.Op, te.Kind, te.Offset, humanize.IBytes(te.Offset))
	default:
		fmt.Fprintf(w, "%s failed: %v after %s\n", te.Op, te.Kind, humanize.IBytes(te.Offset))
	}
}
