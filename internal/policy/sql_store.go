package policy

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	searchblocker "github.com/in-session/magento2-search-blocker"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Loader loads the persisted policy, reporting whether one is stored.
type Loader interface {
	Load() (searchblocker.Config, bool, error)
}

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// SQLStore persists the policy as a single JSON row in SQLite/Postgres, so
// the admin surface can change it without restarting the service.
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewSQLiteStore opens (and if needed initializes) a SQLite-backed store.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "searchblocker-policy.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite policy store: %w", err)
	}
	s := &SQLStore{db: db, dialect: dialectSQLite}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore opens (and if needed initializes) a Postgres-backed store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres policy store: %w", err)
	}
	s := &SQLStore{db: db, dialect: dialectPostgres}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s policy store: %w", s.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS search_policy (
	id INTEGER PRIMARY KEY,
	policy_json TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

	if s.dialect == dialectPostgres {
		ddl = `
CREATE TABLE IF NOT EXISTS search_policy (
	id SMALLINT PRIMARY KEY,
	policy_json TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize policy schema: %w", err)
	}
	return nil
}

// Save upserts the single policy row.
func (s *SQLStore) Save(cfg searchblocker.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	upsert := `
INSERT INTO search_policy(id, policy_json, updated_at)
VALUES(1, ?, ?)
ON CONFLICT(id) DO UPDATE SET policy_json = excluded.policy_json, updated_at = excluded.updated_at`

	if s.dialect == dialectPostgres {
		upsert = `
INSERT INTO search_policy(id, policy_json, updated_at)
VALUES(1, $1, $2)
ON CONFLICT(id) DO UPDATE SET policy_json = EXCLUDED.policy_json, updated_at = EXCLUDED.updated_at`
	}

	if _, err := s.db.Exec(upsert, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	return nil
}

// Load returns the stored policy, or ok=false when none has been saved.
func (s *SQLStore) Load() (searchblocker.Config, bool, error) {
	row := s.db.QueryRow(`SELECT policy_json FROM search_policy WHERE id = 1`)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return searchblocker.Config{}, false, nil
		}
		return searchblocker.Config{}, false, fmt.Errorf("load policy: %w", err)
	}

	var cfg searchblocker.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return searchblocker.Config{}, false, fmt.Errorf("decode policy: %w", err)
	}
	return cfg, true, nil
}

// Delete removes the stored policy, reverting readers to their fallback.
func (s *SQLStore) Delete() error {
	if _, err := s.db.Exec(`DELETE FROM search_policy WHERE id = 1`); err != nil {
		return fmt.Errorf("delete policy: %w", err)
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
