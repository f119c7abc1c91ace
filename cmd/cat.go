package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/klauspost/compress/zstd"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	prefixStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	moduleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(1, 0, 0, 0)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CatCommand creates the cat command
func CatCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "Print a trace file, decompressing zstd recordings",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print lines without highlighting",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print a per-prefix line count after the lines",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one trace file")
			}
			_, err := catFile(c.Args().First(), os.Stdout, catOptions{
				plain:   c.Bool("plain"),
				summary: c.Bool("summary"),
			})
			return err
		},
	}
}

type catOptions struct {
	plain   bool
	summary bool
}

// catFile writes every line of the trace file at path to out and returns
// the number of lines per prefix ("" for untagged lines).
func catFile(path string, out io.Writer, opts catOptions) (map[string]int, error) {
	r, err := openTrace(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	counts := make(map[string]int)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		tags, msg := splitTags(line)
		prefix := ""
		if len(tags) > 0 {
			prefix = tags[0]
		}
		counts[prefix]++

		if opts.plain {
			fmt.Fprintln(out, line)
			continue
		}
		fmt.Fprintln(out, renderLine(tags, msg))
	}
	if err := sc.Err(); err != nil {
		return counts, fmt.Errorf("reading %s: %w", path, err)
	}

	if opts.summary {
		printSummary(out, counts)
	}
	return counts, nil
}

// renderLine highlights the prefix and module segments of a line.
func renderLine(tags []string, msg string) string {
	var b strings.Builder
	for i, tag := range tags {
		style := prefixStyle
		if i == 1 {
			style = moduleStyle
		}
		b.WriteString(style.Render("[" + tag + "]"))
		b.WriteString(": ")
	}
	b.WriteString(msg)
	return b.String()
}

func printSummary(out io.Writer, counts map[string]int) {
	prefixes := make([]string, 0, len(counts))
	for p := range counts {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	fmt.Fprintln(out, headerStyle.Render(cases.Title(language.English).String("lines by prefix")))
	for _, p := range prefixes {
		name := p
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(out, "  %-20s %s\n", name, metaStyle.Render(formatNumber(counts[p])))
	}
}

type traceReader struct {
	io.Reader
	f   *os.File
	dec *zstd.Decoder
}

func (t *traceReader) Close() error {
	if t.dec != nil {
		t.dec.Close()
	}
	return t.f.Close()
}

// openTrace opens a trace file, decoding it when it is a zstd stream.
func openTrace(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(len(zstdMagic))
	if !strings.HasSuffix(path, ".zst") && string(magic) != string(zstdMagic) {
		return &traceReader{Reader: br, f: f}, nil
	}

	dec, err := zstd.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &traceReader{Reader: dec, f: f, dec: dec}, nil
}
