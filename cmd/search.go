package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search archived trace lines",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Archive path (overrides server.archive)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			archive, _, err := openArchive(c.String("config"), c.String("archive"))
			if err != nil {
				return err
			}
			defer archive.Close()

			return searchLines(archive, os.Stdout, strings.Join(c.Args().Slice(), " "), c.Int("limit"))
		},
	}
}

// searchLines prints matching lines, or the most recent ones when query is
// empty.
func searchLines(archive *storage.Archive, out io.Writer, query string, limit int) error {
	var (
		lines []storage.Line
		err   error
	)
	if query == "" {
		lines, err = archive.Recent(limit)
	} else {
		lines, err = archive.Search(query, limit)
	}
	if err != nil {
		return fmt.Errorf("searching archive: %w", err)
	}

	if len(lines) == 0 {
		fmt.Fprintln(out, "No results found")
		return nil
	}

	for i, line := range lines {
		tags, msg := splitTags(line.Text)
		fmt.Fprintf(out, "%d. %s %s\n", i+1, renderLine(tags, msg), metaStyle.Render(formatTime(line.CreatedAt)))
	}
	fmt.Fprintf(out, "\nTotal: %d results\n", len(lines))
	return nil
}
