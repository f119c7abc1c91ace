package trace

import (
	"errors"
	"runtime"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{input: "print", expected: ModePrint},
		{input: "PRINT", expected: ModePrint},
		{input: "", expected: ModePrint},
		{input: "file", expected: ModeFile},
		{input: " 7 ", expected: 7},
		{input: "verbose", wantErr: true},
		{input: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestModeText(t *testing.T) {
	for _, m := range []Mode{ModePrint, ModeFile, 9} {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", m, err)
		}
		var back Mode
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != m {
			t.Fatalf("expected %v, got %v", m, back)
		}
	}
}

func TestParseLineEnding(t *testing.T) {
	if e, _ := ParseLineEnding("crlf"); e != CRLF {
		t.Fatalf("expected crlf, got %v", e)
	}
	if e, _ := ParseLineEnding("LF"); e != LF {
		t.Fatalf("expected lf, got %v", e)
	}
	native := LF
	if runtime.GOOS == "windows" {
		native = CRLF
	}
	if e, _ := ParseLineEnding("native"); e != native {
		t.Fatalf("expected native %v, got %v", native, e)
	}
	if _, err := ParseLineEnding("cr"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
