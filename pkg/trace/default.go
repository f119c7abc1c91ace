package trace

import "io"

// std is the process-wide sink used by the package-level functions.
var std = New()

// Default returns the process-wide sink.
func Default() *Sink {
	return std
}

func Init() error { return std.Init() }

func Exit() { std.Exit() }

func GetMode() Mode { return std.Mode() }

func SetMode(m Mode) error { return std.SetMode(m) }

func Destination() io.Writer { return std.Destination() }

func SetDestination(w io.Writer) error { return std.SetDestination(w) }

func SetDestinationPath(path string, appending bool) error {
	return std.SetDestinationPath(path, appending)
}

// Emit emits a line through the process-wide sink.
func Emit(prefix, module, format string, args ...any) {
	std.Emit(prefix, module, format, args...)
}

// Emitf emits an unprefixed line through the process-wide sink.
func Emitf(format string, args ...any) {
	std.Emitf(format, args...)
}
