package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/trace"
	"github.com/urfave/cli/v3"
)

// EmitCommand creates the emit command
func EmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Usage:     "Emit one trace line (or one per stdin line when no message is given)",
		ArgsUsage: "[MESSAGE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Line prefix",
			},
			&cli.StringFlag{
				Name:  "module",
				Usage: "Module name",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Write to this file instead of the configured destination",
			},
			&cli.BoolFlag{
				Name:  "append",
				Usage: "Append to --output instead of truncating it",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if out := c.String("output"); out != "" {
				cfg.Output.Path = out
				cfg.Output.Append = c.Bool("append")
			}

			s := trace.Default()
			if err := setupSink(s, cfg, nil); err != nil {
				return err
			}
			defer s.Exit()

			_, err = emitLines(s, emitOptions{
				prefix: c.String("prefix"),
				module: c.String("module"),
				args:   c.Args().Slice(),
				stdin:  os.Stdin,
			})
			return err
		},
	}
}

type emitOptions struct {
	prefix string
	module string
	args   []string
	stdin  io.Reader
}

// emitLines emits the joined args as one line, or every stdin line when
// there are no args. It returns the number of lines emitted.
func emitLines(s *trace.Sink, opts emitOptions) (int, error) {
	if len(opts.args) > 0 {
		s.Emit(opts.prefix, opts.module, "%s", strings.Join(opts.args, " "))
		return 1, nil
	}

	n := 0
	sc := bufio.NewScanner(opts.stdin)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		s.Emit(opts.prefix, opts.module, "%s", sc.Text())
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading stdin: %w", err)
	}
	return n, nil
}
