package trace

import (
	"fmt"
	"io"
)

// Emit formats one line and writes it to the destination, or to the print
// collaborator when no destination is set. An empty format is a no-op, as is
// emitting on a sink that is not initialized. Emit never reports errors.
func (s *Sink) Emit(prefix, module, format string, args ...any) {
	if format == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.line.buf == nil {
		return
	}

	l := &s.line
	l.reset()
	if prefix != "" {
		l.bracket(prefix)
	}
	if module != "" {
		l.bracket(module)
	}
	fmt.Fprintf(l, format, args...)
	if s.ending == CRLF {
		l.putByte('\r')
	}
	l.putByte('\n')

	var w io.Writer = s.printer
	if s.dest != nil {
		w = s.dest.writer()
	}
	_, _ = w.Write(l.bytes())
}

// Emitf emits a line without prefix or module.
func (s *Sink) Emitf(format string, args ...any) {
	s.Emit("", "", format, args...)
}

// lineBuffer is a fixed-size buffer with snprintf semantics: writes are
// clipped to the capacity minus the terminator slot while the cursor keeps
// advancing by the full logical length.
type lineBuffer struct {
	buf []byte
	n   int
}

func (b *lineBuffer) reset() {
	b.n = 0
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	if end := len(b.buf) - 1; b.n < end {
		copy(b.buf[b.n:end], p)
	}
	b.n += len(p)
	return len(p), nil
}

func (b *lineBuffer) WriteString(s string) (int, error) {
	if end := len(b.buf) - 1; b.n < end {
		copy(b.buf[b.n:end], s)
	}
	b.n += len(s)
	return len(s), nil
}

// putByte appends c only while the cursor is inside the buffer.
func (b *lineBuffer) putByte(c byte) {
	if b.n < len(b.buf) {
		b.buf[b.n] = c
		b.n++
	}
}

func (b *lineBuffer) bracket(s string) {
	b.WriteString("[")
	b.WriteString(s)
	b.WriteString("]: ")
}

// bytes returns the finished line. The last byte of buf is the terminator
// slot and never part of the line.
func (b *lineBuffer) bytes() []byte {
	return b.buf[:min(b.n, len(b.buf)-1)]
}
