package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/tracesink/pkg/trace"
)

func TestRunStress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress.log")
	s := trace.New()

	report, err := runStress(context.Background(), s, stressOptions{workers: 6, lines: 300, output: path})
	if err != nil {
		t.Fatalf("stress: %v", err)
	}
	if !report.ok() {
		t.Fatalf("stress run failed: %+v", report)
	}
	if report.Found != 1800 {
		t.Errorf("expected 1800 lines, got %d", report.Found)
	}
	if s.Destination() != nil {
		t.Errorf("expected the sink to be exited")
	}
}

func TestRunStressCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runStress(ctx, trace.New(), stressOptions{workers: 2, lines: 10, output: filepath.Join(t.TempDir(), "s.log")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunStressInvalid(t *testing.T) {
	if _, err := runStress(context.Background(), trace.New(), stressOptions{workers: 0, lines: 1}); err == nil {
		t.Fatal("expected error for zero workers")
	}
}

func TestVerifyStressDetectsDamage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "damaged.log")
	content := "[run1]: [w000]: line 0\n" +
		"[run1]: [w000]: line 2\n" + // skipped line 1
		"[run1]: [w0\n" + // torn
		"[other]: [w001]: line 0\n" // foreign run
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	report := stressReport{RunID: "run1", Expected: 4}
	if err := verifyStress(path, &report); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Found != 4 || report.Torn != 2 || report.OutOfOrder != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.ok() {
		t.Errorf("damaged run reported ok")
	}
}
