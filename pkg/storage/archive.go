// Package storage keeps an SQLite archive of emitted trace lines. An Archive
// is an io.Writer so it can sit behind the trace sink as a borrowed
// destination, alone or inside an io.MultiWriter.
package storage

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/tracesink/pkg/db"
)

// Line is one archived trace line.
type Line struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
}

type Archive struct {
	db *sql.DB

	// mu guards lastErr; database/sql serializes the rest.
	mu      sync.Mutex
	lastErr error
}

// OpenArchive opens (creating if needed) the archive at dbPath and applies
// pending schema migrations.
func OpenArchive(dbPath string) (*Archive, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Apply performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA temp_store = memory",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Archive{db: conn}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Write stores p as one line. Line terminators are stripped. Insert failures
// are kept for Err instead of being returned, so a broken archive never
// disturbs the other writers sharing the sink.
func (a *Archive) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\r\n")
	if _, err := a.db.Exec("INSERT INTO lines (created_at, text) VALUES (?, ?)", time.Now().UTC(), text); err != nil {
		a.mu.Lock()
		a.lastErr = fmt.Errorf("archiving line: %w", err)
		a.mu.Unlock()
	}
	return len(p), nil
}

// Err returns the last insert error, if any.
func (a *Archive) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Count returns the number of archived lines.
func (a *Archive) Count() (int64, error) {
	var n int64
	if err := a.db.QueryRow("SELECT COUNT(*) FROM lines").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting lines: %w", err)
	}
	return n, nil
}

// Recent returns up to limit of the newest lines, oldest first.
func (a *Archive) Recent(limit int) ([]Line, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := a.db.Query("SELECT id, created_at, text FROM lines ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent lines: %w", err)
	}
	lines, err := scanLines(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(lines)
	return lines, nil
}

// Search runs an FTS5 query over archived lines and returns up to limit
// matches, newest first.
func (a *Archive) Search(query string, limit int) ([]Line, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = 30
	}
	rows, err := a.db.Query(`
		SELECT l.id, l.created_at, l.text
		FROM lines_fts f JOIN lines l ON l.id = f.rowid
		WHERE lines_fts MATCH ?
		ORDER BY l.id DESC
		LIMIT ?`, escapeFTS5Query(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching lines: %w", err)
	}
	return scanLines(rows)
}

func scanLines(rows *sql.Rows) ([]Line, error) {
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Text); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func escapeFTS5Query(query string) string {
	// The query is used in a parameterized query with MATCH ?,
	// so SQL injection is already prevented by SQLite's parameter binding.
	// Bracketed trace segments ("[net]:") are not valid FTS5 syntax, so
	// brackets and colons are turned into spaces.
	return strings.NewReplacer("[", " ", "]", " ", ":", " ").Replace(query)
}
