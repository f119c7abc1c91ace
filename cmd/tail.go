package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/realtime"
	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/urfave/cli/v3"
)

// TailCommand creates a CLI command that follows the live tail websocket of
// a running `tracesink serve` and prints every line as it is emitted.
//
// Typical usage:
//
//	tracesink tail
//	tracesink tail --server 10.0.0.5:8089 --history 50
//	tracesink tail --json | jq -r .text
//
// The command reconnects with exponential backoff if the server is not yet
// available or the connection drops, unless --no-retry is set.
func TailCommand() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "Follow the live trace stream of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Server address (overrides server.listen)",
			},
			&cli.IntFlag{
				Name:  "history",
				Usage: "Archived lines to print before following",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print line events as JSON",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "no-retry",
				Usage: "Do not retry on failures; exit on first connection error",
				Value: false,
			},
			&cli.DurationFlag{
				Name:  "initial-backoff",
				Usage: "Initial reconnect backoff",
				Value: 1 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "max-backoff",
				Usage: "Maximum reconnect backoff",
				Value: 30 * time.Second,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			addr := c.String("server")
			if addr == "" {
				cfg, err := config.LoadConfig(c.String("config"))
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				addr = cfg.Server.Listen
			}

			opts := tailOptions{
				url:            tailURL(addr, c.Int("history")),
				history:        c.Int("history") > 0,
				json:           c.Bool("json"),
				noRetry:        c.Bool("no-retry"),
				initialBackoff: c.Duration("initial-backoff"),
				maxBackoff:     c.Duration("max-backoff"),
				stdout:         os.Stdout,
				stderr:         os.Stderr,
			}
			return tailLive(ctx, opts)
		},
	}
}

type tailOptions struct {
	url            string
	history        bool
	json           bool
	noRetry        bool
	initialBackoff time.Duration
	maxBackoff     time.Duration
	stdout         io.Writer
	stderr         io.Writer
}

// liveMessage mirrors the frames sent by the server live tail.
type liveMessage struct {
	Type  string              `json:"type"`
	Lines []storage.Line      `json:"lines"`
	Line  *realtime.LineEvent `json:"line"`
}

func tailURL(addr string, history int) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/api/trace/ws"}
	if history > 0 {
		u.RawQuery = url.Values{"limit": {fmt.Sprint(history)}}.Encode()
	}
	return u.String()
}

func tailLive(ctx context.Context, opts tailOptions) error {
	if opts.initialBackoff <= 0 {
		opts.initialBackoff = time.Second
	}
	if opts.maxBackoff < opts.initialBackoff {
		opts.maxBackoff = 30 * time.Second
	}

	_, _ = fmt.Fprintf(opts.stderr, "Tail: connecting to %s\n", opts.url)
	backoff := opts.initialBackoff

	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.url, nil)
		if err != nil {
			if opts.noRetry {
				return fmt.Errorf("dial: %w", err)
			}
			_, _ = fmt.Fprintf(opts.stderr, "Tail: dial failed (%v), retrying in %s\n", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > opts.maxBackoff {
				backoff = opts.maxBackoff
			}
			continue
		}

		_, _ = fmt.Fprintf(opts.stderr, "Tail: connected\n")
		backoff = opts.initialBackoff

		err = streamLines(ctx, conn, opts)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if opts.noRetry {
			return err
		}
		_, _ = fmt.Fprintf(opts.stderr, "Tail: disconnected (%v), reconnecting...\n", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
		// History was already printed on the first connection.
		opts.history = false
	}
}

func streamLines(ctx context.Context, conn *websocket.Conn, opts tailOptions) error {
	defer func() { _ = conn.Close() }()

	// Unblock ReadJSON when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read error: %w", err)
		}

		switch msg.Type {
		case "init":
			if !opts.history {
				continue
			}
			for _, line := range msg.Lines {
				printLiveLine(opts, line.ID, line.CreatedAt, line.Text)
			}
		case "line":
			if msg.Line != nil {
				printLiveLine(opts, int64(msg.Line.Seq), msg.Line.Time, msg.Line.Text)
			}
		}
	}
}

func printLiveLine(opts tailOptions, seq int64, at time.Time, text string) {
	if opts.json {
		b, err := json.Marshal(map[string]any{"seq": seq, "time": at, "text": text})
		if err == nil {
			_, _ = fmt.Fprintln(opts.stdout, string(b))
		}
		return
	}
	tags, msg := splitTags(text)
	_, _ = fmt.Fprintln(opts.stdout, renderLine(tags, msg))
}
