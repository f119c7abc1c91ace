package main

import (
	"context"
	stdlog "log"
	"os"

	"github.com/rubiojr/tracesink/cmd"
	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "tracesink",
		Usage: "A process-wide diagnostic trace sink",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, cmd.StartLogging(c.Bool("debug"))
		},
		After: func(ctx context.Context, c *cli.Command) error {
			cmd.StopLogging()
			return nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.EmitCommand(),
			cmd.RecordCommand(),
			cmd.CatCommand(),
			cmd.StressCommand(),
			cmd.ServeCommand(),
			cmd.TailCommand(),
			cmd.SearchCommand(),
			cmd.StatsCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		stdlog.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		stdlog.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
