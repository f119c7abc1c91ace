package integration_tests

import (
	"testing"
)

func TestSQLInjectionProtectionIntegration(t *testing.T) {
	stack := newTestStack(t, CreateTestConfig(t.TempDir()))

	// Lines with content that could be targeted by SQL injection
	for _, text := range []string{
		"sensitive user data",
		"password: secret123",
		"admin configuration",
		"DROP TABLE users",
		"normal content",
	} {
		stack.sink.Emit("", "", "%s", text)
	}

	attempts := []string{
		"'; DROP TABLE lines; --",
		"' UNION SELECT * FROM sqlite_master; --",
		"' UNION SELECT sql FROM sqlite_master WHERE type='table'; --",
		"normal\" OR 1=1 --",
		"[INFO]: admin",
		"*",
	}
	for _, query := range attempts {
		t.Run(query, func(t *testing.T) {
			// Errors are acceptable: FTS5 rejects most of these as syntax.
			_, _ = stack.archive.Search(query, 10)

			if n := archivedCount(t, stack.archive); n != 5 {
				t.Fatalf("Archive altered by query %q: %d lines", query, n)
			}
		})
	}

	found, err := stack.archive.Search("normal", 10)
	if err != nil {
		t.Fatalf("Search after injection attempts failed: %v", err)
	}
	if len(found) != 1 || found[0].Text != "normal content" {
		t.Errorf("Unexpected search result: %+v", found)
	}
}
