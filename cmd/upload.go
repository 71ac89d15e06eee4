package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func cmdUpload() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"up"},
		Action:    upload,
		Category:  "TRANSFER",
		Usage:     "Upload a local file, resuming from its checkpoint",
		ArgsUsage: "LOCAL OBJECT",
		Description: `
Every chunk is written at its offset in OBJECT and the new offset is saved in
the checkpoint store under KEY. Running the same command again after a failure
continues from the saved offset.

Examples:
$ xfers --meta redis://localhost:6379/1 upload ./disk.img images/disk.img

# resume under an explicit key, using MinIO
$ export MINIO_ROOT_USER=admin MINIO_ROOT_PASSWORD=12345678
$ xfers --backend minio --bucket images --no-ssl upload --key disk ./disk.img disk.img`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "checkpoint key (default: OBJECT:uploaded)",
			},
			&cli.BoolFlag{
				Name:  "dedup",
				Usage: "skip the upload if identical content was uploaded before",
			},
		},
	}
}

func uploadKey(object, key string) string {
	if key != "" {
		return key
	}
	return object + ":uploaded"
}

func upload(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("upload needs LOCAL and OBJECT, got %d arguments", c.Args().Len())
	}
	local, object := c.Args().Get(0), c.Args().Get(1)
	key := uploadKey(object, c.String("key"))

	s, err := newSession(c, true)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Infof("upload %s -> %s (%s), checkpoint %s in %s", local, object, s.objects, key, s.store.Name())
	start := time.Now()
	res, err := s.engine(c.App.Writer, c.Bool("dedup")).Upload(s.ctx, local, object, key)
	if err != nil {
		reportFailure(c.App.ErrWriter, err)
		return err
	}
	if res.Skipped {
		fmt.Fprintf(c.App.Writer, "%s: identical content already uploaded, skipped\n", local)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "uploaded %s to %s: %s in %d chunks (%s total), %s\n",
		local, object, humanize.IBytes(res.Moved), res.Chunks, humanize.IBytes(res.Size), rate(res.Moved, time.Since(start)))
	return nil
}

func rate(n uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(float64(n)/d.Seconds())) + "/s"
}
