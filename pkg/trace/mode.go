package trace

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Mode is an opaque operating mode stored and reported by the sink. Values
// other than the named ones are accepted and kept verbatim.
type Mode uint32

const (
	ModePrint Mode = iota
	ModeFile
)

// String returns the mode name, or its decimal value for unnamed modes.
func (m Mode) String() string {
	switch m {
	case ModePrint:
		return "print"
	case ModeFile:
		return "file"
	default:
		return strconv.FormatUint(uint64(m), 10)
	}
}

// ParseMode converts a name ("print", "file") or a decimal number to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "print":
		return ModePrint, nil
	case "file":
		return ModeFile, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return ModePrint, fmt.Errorf("invalid trace mode %q (expected: print|file|<number>): %w", s, ErrInvalidArgument)
	}
	return Mode(n), nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	var err error
	*m, err = ParseMode(string(text))
	return err
}

// LineEnding selects the bytes that terminate every emitted line.
type LineEnding uint8

const (
	LF   LineEnding = iota // "\n"
	CRLF                   // "\r\n"
)

// NativeLineEnding returns CRLF on windows and LF everywhere else.
func NativeLineEnding() LineEnding {
	if runtime.GOOS == "windows" {
		return CRLF
	}
	return LF
}

func (e LineEnding) String() string {
	if e == CRLF {
		return "crlf"
	}
	return "lf"
}

// ParseLineEnding accepts "lf", "crlf" and "native" (or empty).
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return NativeLineEnding(), nil
	case "lf":
		return LF, nil
	case "crlf":
		return CRLF, nil
	default:
		return LF, fmt.Errorf("invalid line ending %q (expected: native|lf|crlf): %w", s, ErrInvalidArgument)
	}
}
