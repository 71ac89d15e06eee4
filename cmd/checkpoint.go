package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func cmdCheckpoint() *cli.Command {
	return &cli.Command{
		Name:     "checkpoint",
		Category: "ADMIN",
		Usage:    "Inspect or remove upload checkpoints",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print the saved offset of KEY",
				ArgsUsage: "KEY",
				Action:    showCheckpoint,
			},
			{
				Name:      "clear",
				Usage:     "delete KEY so the next upload starts from 0",
				ArgsUsage: "KEY",
				Action:    clearCheckpoint,
			},
		},
	}
}

func showCheckpoint(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("checkpoint show needs KEY")
	}
	key := c.Args().First()
	s, err := newSession(c, false)
	if err != nil {
		return err
	}
	defer s.Close()

	off, err := s.store.Load(s.ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\n", key, off, humanize.IBytes(off))
	return nil
}

func clearCheckpoint(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("checkpoint clear needs KEY")
	}
	key := c.Args().First()
	s, err := newSession(c, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.Clear(s.ctx, key); err != nil {
		return err
	}
	logger.Infof("checkpoint %s cleared", key)
	return nil
}
