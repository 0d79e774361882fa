// Package history keeps the command lines executed by shell sessions in a
// SQLite table. The default DSN is an in-memory database, so nothing is
// written to the host unless a file DSN is configured.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryDSN is a private in-memory database.
const MemoryDSN = ":memory:"

// Entry is one recorded command line.
type Entry struct {
	ID      int64
	Seq     int64 // 1-based position within its session
	Session string
	Line    string
	OK      bool
	At      time.Time
}

// Store records and lists command lines.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dsn.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", dsn, err)
	}
	// :memory: is private to a connection, so every query must share one.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		line TEXT NOT NULL,
		ok INTEGER NOT NULL,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_session ON history(session, id);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Append records line for session.
func (s *Store) Append(ctx context.Context, session, line string, ok bool) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO history (session, line, ok, at) VALUES (?, ?, ?, ?)",
		session, line, boolToInt(ok), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns the last limit entries of session, oldest first.
// A limit of zero or less returns every entry.
func (s *Store) List(ctx context.Context, session string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, session, line, ok, at FROM (
			SELECT id, seq, session, line, ok, at FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY id) AS seq, session, line, ok, at
				FROM history WHERE session = ?
			) ORDER BY id DESC LIMIT ?
		) ORDER BY id`, session, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			ok   int
			nano int64
		)
		if err := rows.Scan(&e.ID, &e.Seq, &e.Session, &e.Line, &ok, &nano); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.OK = ok != 0
		e.At = time.Unix(0, nano)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
