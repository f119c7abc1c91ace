package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/trace"
	"github.com/urfave/cli/v3"
)

// RecordCommand creates the record command
func RecordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Record stdin lines into a trace file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Usage:    "Trace file to write",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "zstd",
				Usage: "Compress the trace file with zstd",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "append",
				Usage: "Append to the trace file instead of truncating it",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Line prefix",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			// The recording is the destination; ignore any configured output.
			cfg.Output.Path = ""

			s := trace.Default()
			if err := setupSink(s, cfg, nil); err != nil {
				return err
			}
			defer s.Exit()

			res, err := record(s, os.Stdin, recordOptions{
				output:    c.String("output"),
				compress:  c.Bool("zstd"),
				appendOut: c.Bool("append"),
				prefix:    c.String("prefix"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Recorded %s lines to %s (session %s)\n", formatNumber(res.lines), c.String("output"), res.session)
			return nil
		},
	}
}

type recordOptions struct {
	output    string
	compress  bool
	appendOut bool
	prefix    string
}

type recordResult struct {
	session string
	lines   int
}

// record copies every line of in through s into opts.output. Each line is
// tagged with opts.prefix and a short session id. A plain file is opened by
// the sink and owned by it; a zstd encoder is lent to the sink and closed
// here once the sink no longer references it. s must be initialized.
func record(s *trace.Sink, in io.Reader, opts recordOptions) (recordResult, error) {
	res := recordResult{session: uuid.NewString()[:8]}
	// Logged before the recording becomes the destination.
	log.ForService("record").Debugf("recording session %s into %s", res.session, opts.output)

	var finish func() error
	if opts.compress {
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if opts.appendOut {
			// Concatenated zstd frames decode as one stream.
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(opts.output, flag, 0644)
		if err != nil {
			return res, fmt.Errorf("opening %s: %w", opts.output, err)
		}
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return res, fmt.Errorf("creating zstd encoder: %w", err)
		}
		if err := s.SetDestination(enc); err != nil {
			enc.Close()
			f.Close()
			return res, err
		}
		finish = func() error {
			s.ClearDestination()
			if err := enc.Close(); err != nil {
				f.Close()
				return fmt.Errorf("flushing zstd stream: %w", err)
			}
			return f.Close()
		}
	} else {
		if err := s.SetDestinationPath(opts.output, opts.appendOut); err != nil {
			return res, err
		}
		finish = func() error {
			s.ClearDestination()
			return nil
		}
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		s.Emit(opts.prefix, res.session, "%s", sc.Text())
		res.lines++
	}
	scanErr := sc.Err()

	if err := finish(); err != nil {
		return res, err
	}
	if scanErr != nil {
		return res, fmt.Errorf("reading input: %w", scanErr)
	}
	return res, nil
}
