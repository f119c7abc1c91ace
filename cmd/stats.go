package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show archive statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Archive path (overrides server.archive)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			archive, path, err := openArchive(c.String("config"), c.String("archive"))
			if err != nil {
				return err
			}
			defer archive.Close()

			return showStats(archive, path, os.Stdout)
		},
	}
}

// showStats displays archive statistics
func showStats(archive *storage.Archive, path string, out io.Writer) error {
	count, err := archive.Count()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, headerStyle.Render("Archive Statistics"))
	fmt.Fprintf(out, "Path:  %s\n", path)
	fmt.Fprintf(out, "Lines: %s\n", formatNumber(int(count)))

	last, err := archive.Recent(1)
	if err != nil {
		return fmt.Errorf("reading last line: %w", err)
	}
	if len(last) > 0 {
		fmt.Fprintf(out, "Last:  %s\n", formatTime(last[0].CreatedAt))
	}
	return nil
}
