package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/tracesink/pkg/trace"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StressCommand creates the stress command
func StressCommand() *cli.Command {
	return &cli.Command{
		Name:  "stress",
		Usage: "Emit from concurrent workers into a file and verify no line is torn",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent emitters",
				Value: 8,
			},
			&cli.IntFlag{
				Name:  "lines",
				Usage: "Lines per worker",
				Value: 10000,
			},
			&cli.StringFlag{
				Name:     "output",
				Usage:    "Trace file to write (truncated)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			report, err := runStress(ctx, trace.Default(), stressOptions{
				workers: c.Int("workers"),
				lines:   c.Int("lines"),
				output:  c.String("output"),
			})
			if err != nil {
				return err
			}
			printStressReport(report)
			if !report.ok() {
				return fmt.Errorf("%d torn and %d out of order lines", report.Torn, report.OutOfOrder)
			}
			return nil
		},
	}
}

type stressOptions struct {
	workers int
	lines   int
	output  string
}

type stressReport struct {
	RunID      string
	Expected   int
	Found      int
	Torn       int
	OutOfOrder int
	Duration   time.Duration
}

func (r stressReport) ok() bool {
	return r.Found == r.Expected && r.Torn == 0 && r.OutOfOrder == 0
}

// runStress owns the lifecycle of s: it initializes it, points it at
// opts.output, emits from opts.workers goroutines and exits it before
// reading the file back.
func runStress(ctx context.Context, s *trace.Sink, opts stressOptions) (stressReport, error) {
	report := stressReport{
		RunID:    uuid.NewString()[:8],
		Expected: opts.workers * opts.lines,
	}
	if opts.workers < 1 || opts.lines < 1 {
		return report, fmt.Errorf("workers and lines must be positive")
	}

	if err := s.Init(); err != nil {
		return report, err
	}
	if err := s.SetDestinationPath(opts.output, false); err != nil {
		s.Exit()
		return report, err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.workers; w++ {
		module := fmt.Sprintf("w%03d", w)
		g.Go(func() error {
			for i := 0; i < opts.lines; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				s.Emit(report.RunID, module, "line %d", i)
			}
			return nil
		})
	}
	err := g.Wait()
	report.Duration = time.Since(start)
	s.Exit()
	if err != nil {
		return report, err
	}

	return report, verifyStress(opts.output, &report)
}

// verifyStress checks that every line of path is one whole emission of this
// run and that each worker's lines appear in order.
func verifyStress(path string, report *stressReport) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	next := make(map[string]int)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		report.Found++
		tags, msg := splitTags(strings.TrimSuffix(sc.Text(), "\r"))
		var i int
		if len(tags) != 2 || tags[0] != report.RunID || !strings.HasPrefix(tags[1], "w") {
			report.Torn++
			continue
		}
		if _, err := fmt.Sscanf(msg, "line %d", &i); err != nil {
			report.Torn++
			continue
		}
		if i != next[tags[1]] {
			report.OutOfOrder++
		}
		next[tags[1]] = i + 1
	}
	return sc.Err()
}

func printStressReport(r stressReport) {
	status := "passed"
	if !r.ok() {
		status = "failed"
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("Stress run %s %s", r.RunID, cases.Title(language.English).String(status))))
	fmt.Printf("  lines:        %s of %s\n", formatNumber(r.Found), formatNumber(r.Expected))
	fmt.Printf("  torn:         %d\n", r.Torn)
	fmt.Printf("  out of order: %d\n", r.OutOfOrder)
	fmt.Printf("  duration:     %s (%s)\n", r.Duration.Round(time.Millisecond), formatRate(r.Found, r.Duration))
}
