package mru

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// SQLite persists launch history in a single-table SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create mru directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mru database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS mru (
		entry_id  TEXT PRIMARY KEY,
		last_used INTEGER NOT NULL,
		use_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_mru_last_used ON mru(last_used DESC);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create mru schema: %w", err)
	}
	return nil
}

// GetRecent implements Persistence.
func (s *SQLite) GetRecent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, last_used, use_count FROM mru
		ORDER BY last_used DESC, use_count DESC, entry_id
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query mru: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			rawID    string
			lastUsed int64
			count    int
		)
		if err := rows.Scan(&rawID, &lastUsed, &count); err != nil {
			return nil, fmt.Errorf("scan mru row: %w", err)
		}
		id, err := entry.ParseID(rawID)
		if err != nil {
			continue
		}
		out = append(out, Record{ID: id, Usage: Usage{LastUsed: time.UnixMilli(lastUsed), UseCount: count}})
	}
	return out, rows.Err()
}

// RecordUse implements Persistence.
func (s *SQLite) RecordUse(ctx context.Context, id entry.ID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mru (entry_id, last_used, use_count) VALUES (?, ?, 1)
		ON CONFLICT(entry_id) DO UPDATE SET
			use_count = use_count + 1,
			last_used = MAX(last_used, excluded.last_used)`,
		id.String(), at.UnixMilli())
	if err != nil {
		return fmt.Errorf("record mru use: %w", err)
	}
	return nil
}

// Close implements Persistence.
func (s *SQLite) Close() error {
	return s.db.Close()
}
