package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding stored scans
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	Path   string
}

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	created_at       INTEGER NOT NULL,
	node_count       INTEGER NOT NULL,
	connection_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_source ON scans(source, created_at);

CREATE TABLE IF NOT EXISTS nodes (
	scan_id TEXT NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
	id      INTEGER NOT NULL,
	line    INTEGER NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (scan_id, id)
);

CREATE TABLE IF NOT EXISTS connections (
	scan_id     TEXT NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	line        INTEGER NOT NULL,
	source_node INTEGER NOT NULL,
	source_port INTEGER NOT NULL,
	dest_node   INTEGER NOT NULL,
	dest_port   INTEGER NOT NULL,
	raw         TEXT NOT NULL,
	PRIMARY KEY (scan_id, seq)
);
`

// OpenDB opens (creating if needed) a SQLite database with WAL mode and
// foreign keys enabled, and applies the schema. A nil logger uses slog.Default().
func OpenDB(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Pragmas below are per connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{conn: conn, logger: logger, Path: path}
	if err := d.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Debug("database opened", "path", path)
	return d, nil
}

// Migrate creates the tables if they do not exist
func (d *DB) Migrate() error {
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}
