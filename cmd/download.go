package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func cmdDownload() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"down"},
		Action:    download,
		Category:  "TRANSFER",
		Usage:     "Download an object into a local file",
		ArgsUsage: "OBJECT LOCAL",
		Description: `
LOCAL is truncated first and the object is read from the beginning in chunks.
A failed download leaves a partial file behind.

Examples:
$ xfers --backend posix --root /srv/objects download images/disk.img ./disk.img`,
	}
}

func download(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("download needs OBJECT and LOCAL, got %d arguments", c.Args().Len())
	}
	object, local := c.Args().Get(0), c.Args().Get(1)

	s, err := newSession(c, true)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Infof("download %s (%s) -> %s", object, s.objects, local)
	start := time.Now()
	res, err := s.engine(c.App.Writer, false).Download(s.ctx, object, local)
	if err != nil {
		reportFailure(c.App.ErrWriter, err)
		return err
	}
	fmt.Fprintf(c.App.Writer, "downloaded %s to %s: %s in %d chunks, %s\n",
		object, local, humanize.IBytes(res.Moved), res.Chunks, rate(res.Moved, time.Since(start)))
	return nil
}
