package cmd

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/trace"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		line string
		tags []string
		msg  string
	}{
		{line: "[X]: [Y]: hi", tags: []string{"X", "Y"}, msg: "hi"},
		{line: "[X]: hi", tags: []string{"X"}, msg: "hi"},
		{line: "plain", msg: "plain"},
		{line: "[a]: [b]: [c]: deep", tags: []string{"a", "b"}, msg: "[c]: deep"},
		{line: "[unterminated", msg: "[unterminated"},
		{line: "", msg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tags, msg := splitTags(tt.line)
			if !reflect.DeepEqual(tags, tt.tags) {
				t.Errorf("expected tags %v, got %v", tt.tags, tags)
			}
			if msg != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, msg)
			}
		})
	}
}

func TestEmitLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emit.log")
	s := trace.New(trace.WithLineEnding(trace.LF))
	cfg := config.GetDefaultConfig()
	cfg.Output.Path = path
	cfg.LineEnding = "lf"
	if err := setupSink(s, cfg, nil); err != nil {
		t.Fatalf("setup sink: %v", err)
	}

	n, err := emitLines(s, emitOptions{prefix: "cli", args: []string{"hello", "world"}})
	if err != nil || n != 1 {
		t.Fatalf("emit args: n=%d err=%v", n, err)
	}
	n, err = emitLines(s, emitOptions{module: "stdin", stdin: strings.NewReader("one\ntwo\n")})
	if err != nil || n != 2 {
		t.Fatalf("emit stdin: n=%d err=%v", n, err)
	}
	s.Exit()

	expected := "[cli]: hello world\n[stdin]: one\n[stdin]: two\n"
	if got := readFile(t, path); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSetupSinkAppliesMode(t *testing.T) {
	s := trace.New()
	cfg := config.GetDefaultConfig()
	cfg.Mode = trace.ModeFile
	if err := setupSink(s, cfg, nil); err != nil {
		t.Fatalf("setup sink: %v", err)
	}
	defer s.Exit()

	if s.Mode() != trace.ModeFile {
		t.Errorf("expected mode file, got %v", s.Mode())
	}
}

func TestInitConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := initConfig(path); err != nil {
		t.Fatalf("init config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if cfg.Server.Listen != config.DefaultListen {
		t.Errorf("expected default listen, got %s", cfg.Server.Listen)
	}
}

func TestStartLoggingShowsDebugOutput(t *testing.T) {
	if err := StartLogging(true); err != nil {
		t.Fatalf("start logging: %v", err)
	}
	defer func() {
		StopLogging()
		log.SetGlobalDebug(false)
	}()

	buf := &bytes.Buffer{}
	if err := trace.SetDestination(buf); err != nil {
		t.Fatalf("set destination: %v", err)
	}

	// Opening an archive applies migrations, which log at debug level.
	archive, _, err := openArchive(filepath.Join(t.TempDir(), "missing.toml"), filepath.Join(t.TempDir(), "a.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	if !strings.Contains(buf.String(), "[DEBUG]: [db]: applying migration 1") {
		t.Errorf("expected migration debug output, got %q", buf.String())
	}
}

func TestStopLoggingReleasesDefaultSink(t *testing.T) {
	if err := StartLogging(false); err != nil {
		t.Fatalf("start logging: %v", err)
	}
	buf := &bytes.Buffer{}
	trace.SetDestination(buf)
	StopLogging()

	if trace.Destination() != nil {
		t.Errorf("expected no destination after StopLogging")
	}
	log.ForService("stats").Infof("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected nothing logged after StopLogging, got %q", buf.String())
	}
}
