package config

import (
	"fmt"
	"io"

	"github.com/rubiojr/tracesink/pkg/trace"
)

// Apply pushes cfg into a running sink. A configured output path becomes an
// owned destination; otherwise fallback, when non-nil, is installed as a
// borrowed one, and with neither the sink goes back to the console.
func Apply(s *trace.Sink, cfg *Config, fallback io.Writer) error {
	if err := s.SetMode(cfg.Mode); err != nil {
		return fmt.Errorf("setting mode: %w", err)
	}
	s.SetLineEnding(cfg.Ending())

	if cfg.Output.Path != "" {
		if err := s.SetDestinationPath(cfg.Output.Path, cfg.Output.Append); err != nil {
			return fmt.Errorf("setting destination: %w", err)
		}
		return nil
	}

	if fallback == nil {
		s.ClearDestination()
		return nil
	}
	if err := s.SetDestination(fallback); err != nil {
		return fmt.Errorf("setting destination: %w", err)
	}
	return nil
}
