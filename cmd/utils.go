package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rubiojr/tracesink/pkg/config"
	"github.com/rubiojr/tracesink/pkg/log"
	"github.com/rubiojr/tracesink/pkg/storage"
	"github.com/rubiojr/tracesink/pkg/trace"
)

// StartLogging initializes the process-wide sink for the whole command run
// so pkg/log output is visible even in commands that never emit traces.
func StartLogging(debug bool) error {
	log.SetGlobalDebug(debug)
	if err := trace.Init(); err != nil {
		return fmt.Errorf("initializing trace sink: %w", err)
	}
	return nil
}

// StopLogging releases the process-wide sink.
func StopLogging() {
	trace.Exit()
}

// setupSink initializes s and applies cfg to it. fallback, when non-nil,
// becomes the borrowed destination if cfg has no output path.
func setupSink(s *trace.Sink, cfg *config.Config, fallback io.Writer) error {
	if err := s.Init(); err != nil {
		return fmt.Errorf("initializing trace sink: %w", err)
	}
	if err := config.Apply(s, cfg, fallback); err != nil {
		s.Exit()
		return fmt.Errorf("applying config: %w", err)
	}
	return nil
}

// openArchive opens the archive at override, the configured archive or the
// default archive path, in that order.
func openArchive(configPath, override string) (*storage.Archive, string, error) {
	path := override
	if path == "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		path = cfg.Server.Archive
	}
	if path == "" {
		var err error
		if path, err = config.GetDefaultArchivePath(); err != nil {
			return nil, "", err
		}
	}

	archive, err := storage.OpenArchive(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening archive %s: %w", path, err)
	}
	return archive, path, nil
}

// splitTags peels up to two leading "[tag]: " segments off a trace line.
func splitTags(line string) ([]string, string) {
	var tags []string
	for len(tags) < 2 && strings.HasPrefix(line, "[") {
		end := strings.Index(line, "]: ")
		if end < 0 {
			break
		}
		tags = append(tags, line[1:end])
		line = line[end+3:]
	}
	return tags, line
}
