// Package auditlog persists the search-term audit trail: one entry per
// validated term on channels whose logging gate is open. This package only
// stores and lists entries; the gating decision belongs to the adapters.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/in-session/magento2-search-blocker/search"
)

// Verdict labels stored with each entry.
const (
	VerdictAllowed = "allowed"
	VerdictBlocked = "blocked"
)

// Entry is one audit record for a validated search term.
type Entry struct {
	TraceID   string
	Channel   string
	Term      string // normalized
	Verdict   string // "allowed" or "blocked"
	Reason    string // block reason message, empty for allowed terms
	CreatedAt time.Time
}

// FromVerdict builds an entry for one validation outcome.
func FromVerdict(traceID string, ch search.Channel, term string, v search.Verdict) Entry {
	e := Entry{TraceID: traceID, Channel: string(ch), Term: term, Verdict: VerdictAllowed}
	if v.Blocked {
		e.Verdict = VerdictBlocked
		e.Reason = v.Message
	}
	return e
}

// Level returns the log level the entry is mirrored at: warn for blocked
// terms, info otherwise.
func (e Entry) Level() slog.Level {
	if e.Verdict == VerdictBlocked {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Writer persists audit entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// Reader lists recent entries for the admin API, newest first.
type Reader interface {
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Maintainer purges the audit trail.
type Maintainer interface {
	Purge(ctx context.Context) error
}

// NoopWriter ignores all writes.
type NoopWriter struct{}

// Write implements Writer.
func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLStore persists entries to SQLite/Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteStore opens (and if needed initializes) a SQLite audit store.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "searchblocker-audit.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite audit store: %w", err)
	}
	s := &SQLStore{db: db, dialect: "sqlite"}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore opens (and if needed initializes) a Postgres audit store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres audit store: %w", err)
	}
	s := &SQLStore{db: db, dialect: "postgres"}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s audit store: %w", s.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS search_audit (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	channel TEXT NOT NULL,
	term TEXT NOT NULL,
	verdict TEXT NOT NULL,
	reason TEXT,
	created_at TIMESTAMP NOT NULL
);`

	if s.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS search_audit (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	channel TEXT NOT NULL,
	term TEXT NOT NULL,
	verdict TEXT NOT NULL,
	reason TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize audit schema: %w", err)
	}
	return nil
}

// Write implements Writer.
func (s *SQLStore) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO search_audit(trace_id, channel, term, verdict, reason, created_at)
	VALUES(?, ?, ?, ?, ?, ?)`
	if s.dialect == "postgres" {
		query = `INSERT INTO search_audit(trace_id, channel, term, verdict, reason, created_at)
		VALUES($1, $2, $3, $4, $5, $6)`
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Channel,
		entry.Term,
		entry.Verdict,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// List implements Reader. limit <= 0 defaults to 100.
func (s *SQLStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT trace_id, channel, term, verdict, reason, created_at
	FROM search_audit ORDER BY id DESC LIMIT ?`
	if s.dialect == "postgres" {
		query = `SELECT trace_id, channel, term, verdict, reason, created_at
		FROM search_audit ORDER BY id DESC LIMIT $1`
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var traceID, reason sql.NullString
		if err := rows.Scan(&traceID, &e.Channel, &e.Term, &e.Verdict, &reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.TraceID = traceID.String
		e.Reason = reason.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Purge implements Maintainer.
func (s *SQLStore) Purge(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_audit`); err != nil {
		return fmt.Errorf("purge audit entries: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
