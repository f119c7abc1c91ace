package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rubiojr/tracesink/pkg/trace"
)

// helper routes output to a fresh sink and returns buffer and logger
func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	s := trace.New(trace.WithPrinter(buf), trace.WithLineEnding(trace.LF))
	if err := s.Init(); err != nil {
		t.Fatalf("init sink: %v", err)
	}
	SetSink(s)
	t.Cleanup(func() {
		SetSink(nil)
		s.Exit()
	})
	return ForService(name), buf
}

func TestPrefixInfo(t *testing.T) {
	SetGlobalDebug(false)

	const name = "prefix_service_test"
	l, buf := newTestLogger(t, name)

	l.Infof("hello %s", "world")
	expected := "[INFO]: [" + name + "]: hello world\n"
	if got := buf.String(); got != expected {
		t.Fatalf("expected %q, got: %q", expected, got)
	}
}

func TestEmptyNameIsUnknown(t *testing.T) {
	if ForService("").Name() != "unknown" {
		t.Fatalf("expected empty name to map to unknown")
	}
	if ForService("same") != ForService("same") {
		t.Fatalf("expected memoized logger")
	}
}

func TestDebugPerService(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_specific"
	DisableDebugFor(name) // ensure clean state
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug message appeared while debug disabled (per service & global)")
	}

	EnableDebugFor(name)
	l.Debugf("visible now")
	if !strings.Contains(buf.String(), "[DEBUG]: ["+name+"]: visible now") {
		t.Fatalf("expected debug message after enabling per-service debug; got: %q", buf.String())
	}
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug message appeared while global debug disabled")
	}

	SetGlobalDebug(true)
	defer SetGlobalDebug(false) // cleanup for other tests

	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "global visible") {
		t.Fatalf("expected debug message after enabling global debug; got: %q", buf.String())
	}
}

func TestWarnOnceNotice(t *testing.T) {
	SetGlobalDebug(false)

	const name = "warn_service_test"
	l, buf := newTestLogger(t, name)

	l.Warnf("attention needed")
	l.Warnf("again")
	out := buf.String()

	if strings.Count(out, "warnings active for this logger") != 1 {
		t.Fatalf("expected one-time warnings notice, got: %q", out)
	}
	if !strings.Contains(out, "[WARN]: ["+name+"]: attention needed\n") {
		t.Fatalf("expected warn message in output, got: %q", out)
	}
}

func TestErrorf(t *testing.T) {
	l, buf := newTestLogger(t, "error_service_test")
	l.Errorf("failed: %v", "boom")
	if got := buf.String(); got != "[ERROR]: [error_service_test]: failed: boom\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFormatVerbsInMessageAreLiteral(t *testing.T) {
	l, buf := newTestLogger(t, "verbs")
	l.Infof("%s", "100%d done")
	if got := buf.String(); got != "[INFO]: [verbs]: 100%d done\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
