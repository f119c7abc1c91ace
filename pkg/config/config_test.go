package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/tracesink/pkg/trace"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != trace.ModePrint {
		t.Fatalf("expected print mode, got %v", cfg.Mode)
	}
	if !cfg.Output.Append {
		t.Fatalf("expected append by default")
	}
	if cfg.Server.Listen != DefaultListen {
		t.Fatalf("expected default listen address, got %q", cfg.Server.Listen)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `mode = "file"
line_ending = "crlf"

[output]
path = "/tmp/app.trace"
append = false

[server]
listen = ":9000"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != trace.ModeFile {
		t.Fatalf("expected file mode, got %v", cfg.Mode)
	}
	if cfg.Ending() != trace.CRLF {
		t.Fatalf("expected crlf, got %v", cfg.Ending())
	}
	if cfg.Output.Path != "/tmp/app.trace" || cfg.Output.Append {
		t.Fatalf("unexpected output section: %+v", cfg.Output)
	}
	if cfg.Server.Listen != ":9000" {
		t.Fatalf("unexpected listen %q", cfg.Server.Listen)
	}
}

func TestLoadConfigNumericMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`mode = "17"`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != 17 {
		t.Fatalf("expected mode 17, got %v", cfg.Mode)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad mode", data: `mode = "loud"`},
		{name: "bad line ending", data: `line_ending = "cr"`},
		{name: "bad toml", data: `mode = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatalf("expected error for %q", tt.data)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := GetDefaultConfig()
	cfg.Mode = 5
	cfg.LineEnding = "lf"
	cfg.Output.Path = "/var/log/x.trace"

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Mode != 5 || back.LineEnding != "lf" || back.Output.Path != "/var/log/x.trace" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := GetDefaultConfig()
	cfg.Server.Archive = "/data/archive.db"

	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("save template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `archive = "/data/archive.db"`) {
		t.Fatalf("archive placeholder not replaced:\n%s", data)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if loaded.Server.Archive != "/data/archive.db" {
		t.Fatalf("unexpected archive %q", loaded.Server.Archive)
	}
}

func TestApply(t *testing.T) {
	console := &bytes.Buffer{}
	s := trace.New(trace.WithPrinter(console))
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer s.Exit()

	path := filepath.Join(t.TempDir(), "out.trace")
	cfg := GetDefaultConfig()
	cfg.Mode = trace.ModeFile
	cfg.LineEnding = "crlf"
	cfg.Output = OutputConfig{Path: path, Append: false}

	hub := &bytes.Buffer{}
	if err := Apply(s, cfg, hub); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Mode() != trace.ModeFile {
		t.Fatalf("mode not applied")
	}
	if !s.Owned() {
		t.Fatalf("expected owned file destination")
	}

	s.Emit("", "", "to file")

	// Dropping the path falls back to the borrowed writer.
	cfg.Output.Path = ""
	if err := Apply(s, cfg, hub); err != nil {
		t.Fatalf("apply fallback: %v", err)
	}
	if s.Owned() || s.Destination() != hub {
		t.Fatalf("expected borrowed fallback destination")
	}
	s.Emit("", "", "to hub")

	// Without a fallback the console takes over.
	if err := Apply(s, cfg, nil); err != nil {
		t.Fatalf("apply console: %v", err)
	}
	s.Emit("", "", "to console")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "to file\r\n" {
		t.Fatalf("unexpected file content %q", data)
	}
	if hub.String() != "to hub\r\n" {
		t.Fatalf("unexpected hub content %q", hub.String())
	}
	if console.String() != "to console\r\n" {
		t.Fatalf("unexpected console content %q", console.String())
	}
}

func TestApplyBadPath(t *testing.T) {
	s := trace.New()
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer s.Exit()

	cfg := GetDefaultConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "missing", "out.trace")
	if err := Apply(s, cfg, nil); err == nil {
		t.Fatalf("expected error for unopenable path")
	}
}
