package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubiojr/tracesink/pkg/api"
	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/realtime"
	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/rubiojr/tracesink/pkg/trace"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Host the trace sink API, live tail and archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides server.listen)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Do not copy tapped lines to stdout",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"), c.Bool("quiet"))
		},
	}
}

// serve runs the API until SIGINT/SIGTERM. SIGHUP and config file changes
// reapply the mode, line ending and destination to the running sink.
func serve(ctx context.Context, configPath, listen string, quiet bool) error {
	l := log.ForService("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	sink := trace.Default()
	if err := sink.Init(); err != nil {
		return fmt.Errorf("initializing trace sink: %w", err)
	}
	defer sink.Exit()

	var archive *storage.Archive
	if cfg.Server.Archive != "" {
		archive, err = storage.OpenArchive(cfg.Server.Archive)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer func() {
			if err := archive.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: archive write failed: %v\n", err)
			}
			if err := archive.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close archive: %v\n", err)
			}
		}()
	}

	var extra []io.Writer
	if !quiet {
		extra = append(extra, os.Stdout)
	}
	server := api.NewServer(sink, realtime.NewHub(256), archive, extra...)

	if err := config.Apply(sink, cfg, server.Tap()); err != nil {
		return err
	}

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		l.Infof("listening on http://%s", cfg.Server.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	reload := func(newCfg *config.Config) {
		if newCfg.Server.Listen != cfg.Server.Listen || newCfg.Server.Archive != cfg.Server.Archive {
			l.Warnf("server settings changed; restart to apply them")
		}
		if err := config.Apply(sink, newCfg, server.Tap()); err != nil {
			l.Errorf("failed to apply configuration: %v", err)
			return
		}
		l.Infof("mode %s, destination %s", newCfg.Mode, destinationName(newCfg))
	}

	go func() {
		if err := config.Watch(ctx, configPath, reload); err != nil {
			l.Warnf("config file reload disabled: %v", err)
		}
	}()

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)

	for {
		select {
		case <-hupCh:
			l.Infof("received SIGHUP, reloading configuration")
			newCfg, err := config.LoadConfig(configPath)
			if err != nil {
				l.Errorf("failed to reload configuration: %v", err)
				continue
			}
			reload(newCfg)
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
			l.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	}
}

func destinationName(cfg *config.Config) string {
	if cfg.Output.Path != "" {
		return cfg.Output.Path
	}
	return "live tap"
}
