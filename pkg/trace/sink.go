package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	// ErrInvalidArgument is returned for a nil writer, an empty path or an
	// unusable line capacity.
	ErrInvalidArgument = errors.New("trace: invalid argument")

	// ErrIO is returned when a destination file cannot be opened.
	ErrIO = errors.New("trace: i/o error")
)

// Opener is the file primitive used by SetDestinationPath.
type Opener func(name string, flag int, perm os.FileMode) (io.WriteCloser, error)

func openFile(name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, perm)
}

// destination is either owned or borrowed; a nil destination means unset.
type destination interface {
	writer() io.Writer
}

// owned was opened by the sink and is closed when replaced or on Exit.
type owned struct{ w io.WriteCloser }

// borrowed belongs to the caller and is never closed by the sink.
type borrowed struct{ w io.Writer }

func (d owned) writer() io.Writer    { return d.w }
func (d borrowed) writer() io.Writer { return d.w }

// Sink is a trace sink. The zero value is not usable; call New.
type Sink struct {
	mu      sync.Mutex
	mode    Mode
	dest    destination
	ending  LineEnding
	initial LineEnding // ending chosen at construction, restored by Exit
	line    lineBuffer
	lineMax int
	printer io.Writer
	open    Opener
}

// Option configures a Sink at construction.
type Option func(*Sink)

// WithPrinter sets the print collaborator used when no destination is set.
func WithPrinter(w io.Writer) Option {
	return func(s *Sink) {
		if w != nil {
			s.printer = w
		}
	}
}

// WithOpener replaces the file primitive used by SetDestinationPath.
func WithOpener(open Opener) Option {
	return func(s *Sink) {
		if open != nil {
			s.open = open
		}
	}
}

// WithLineEnding overrides the platform line ending.
func WithLineEnding(e LineEnding) Option {
	return func(s *Sink) {
		s.ending = e
	}
}

// WithLineMax overrides the line buffer capacity (terminator included).
func WithLineMax(n int) Option {
	return func(s *Sink) {
		s.lineMax = n
	}
}

// New returns a sink that must be initialized with Init before emitting.
func New(opts ...Option) *Sink {
	s := &Sink{
		mode:    ModePrint,
		ending:  NativeLineEnding(),
		lineMax: LineMax,
		printer: os.Stdout,
		open:    openFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initial = s.ending
	return s
}

// Init allocates the line buffer. It must be called once before any other
// operation and must not race with them.
func (s *Sink) Init() error {
	if s.lineMax < 2 {
		return fmt.Errorf("line capacity %d: %w", s.lineMax, ErrInvalidArgument)
	}
	s.mu.Lock()
	s.line = lineBuffer{buf: make([]byte, s.lineMax)}
	s.mu.Unlock()
	return nil
}

// Exit closes an owned destination and resets the mode and line ending to
// their construction-time values.
// It is the final call and must be serialized by the caller with every
// other operation.
func (s *Sink) Exit() {
	s.mu.Lock()
	s.mode = ModePrint
	s.ending = s.initial
	s.release()
	s.dest = nil
	s.line = lineBuffer{}
	s.mu.Unlock()
}

// Mode returns the current mode.
func (s *Sink) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode stores m verbatim. It never fails.
func (s *Sink) SetMode(m Mode) error {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return nil
}

// LineEnding returns the current line ending.
func (s *Sink) LineEnding() LineEnding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ending
}

// SetLineEnding changes the line ending used by later emissions.
func (s *Sink) SetLineEnding(e LineEnding) {
	s.mu.Lock()
	s.ending = e
	s.mu.Unlock()
}

// Destination returns the current destination, or nil when unset. The
// writer may be closed by the sink at any later replacement.
func (s *Sink) Destination() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dest == nil {
		return nil
	}
	return s.dest.writer()
}

// Owned reports whether the current destination was opened by the sink.
func (s *Sink) Owned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dest.(owned)
	return ok
}

// SetDestination makes w the destination. The caller keeps ownership of w.
func (s *Sink) SetDestination(w io.Writer) error {
	if w == nil {
		return fmt.Errorf("nil destination: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	s.release()
	s.dest = borrowed{w: w}
	s.mu.Unlock()
	return nil
}

// ClearDestination closes an owned destination and returns the sink to the
// print collaborator. A borrowed destination is dropped without closing.
func (s *Sink) ClearDestination() {
	s.mu.Lock()
	s.release()
	s.dest = nil
	s.mu.Unlock()
}

// SetDestinationPath opens path and makes it the destination, owned by the
// sink. The file is created if absent and either appended to or truncated.
// On failure the destination is left unset.
func (s *Sink) SetDestinationPath(path string, appending bool) error {
	if path == "" {
		return fmt.Errorf("empty destination path: %w", ErrInvalidArgument)
	}

	flag := os.O_RDWR | os.O_CREATE
	if appending {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.release()
	s.dest = nil

	f, err := s.open(path, flag, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w: %w", path, ErrIO, err)
	}
	s.dest = owned{w: f}
	return nil
}

// release closes the current destination if the sink owns it. Callers hold
// s.mu. Close errors are dropped: nothing can report them.
func (s *Sink) release() {
	if d, ok := s.dest.(owned); ok {
		_ = d.w.Close()
	}
}
