package integration_tests

import (
	"path/filepath"
	"testing"

	"github.com/rubiojr/tracesink/pkg/api"
	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/realtime"
	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/rubiojr/tracesink/pkg/trace"
)

// CreateTestConfig creates a configuration that archives into tempDir and
// leaves the output path empty so lines go to the live tap.
func CreateTestConfig(tempDir string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.LineEnding = "lf"
	cfg.Server.Archive = filepath.Join(tempDir, "archive.db")
	return cfg
}

// testStack is the serve wiring without the HTTP listener.
type testStack struct {
	sink    *trace.Sink
	hub     *realtime.Hub
	archive *storage.Archive
	server  *api.Server
}

func newTestStack(t *testing.T, cfg *config.Config) *testStack {
	t.Helper()

	sink := trace.New()
	if err := sink.Init(); err != nil {
		t.Fatalf("Failed to init sink: %v", err)
	}
	t.Cleanup(sink.Exit)

	archive, err := storage.OpenArchive(cfg.Server.Archive)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	t.Cleanup(func() {
		if err := archive.Close(); err != nil {
			t.Errorf("Failed to close archive: %v", err)
		}
	})

	hub := realtime.NewHub(64)
	server := api.NewServer(sink, hub, archive)
	if err := config.Apply(sink, cfg, server.Tap()); err != nil {
		t.Fatalf("Failed to apply config: %v", err)
	}
	return &testStack{sink: sink, hub: hub, archive: archive, server: server}
}

func archivedCount(t *testing.T, archive *storage.Archive) int64 {
	t.Helper()
	n, err := archive.Count()
	if err != nil {
		t.Fatalf("Failed to count archived lines: %v", err)
	}
	return n
}
