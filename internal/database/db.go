package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with additional methods
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS snapshots (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        captured_at DATETIME NOT NULL,
        started_at DATETIME,
        completed_at DATETIME,
        packet_count INTEGER NOT NULL,
        byte_count INTEGER NOT NULL,
        detection_rate REAL NOT NULL,
        total_items INTEGER NOT NULL,
        degraded TEXT
    );

    CREATE TABLE IF NOT EXISTS flows (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
        position INTEGER NOT NULL,
        timestamp DATETIME NOT NULL,
        source_ip TEXT NOT NULL,
        destination_ip TEXT NOT NULL,
        protocol TEXT NOT NULL,
        length_bytes INTEGER NOT NULL,
        attack_type TEXT NOT NULL,
        confidence REAL NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_flows_snapshot ON flows(snapshot_id, position);
    CREATE INDEX IF NOT EXISTS idx_flows_attack ON flows(attack_type);

    CREATE TABLE IF NOT EXISTS attack_distribution (
        snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
        position INTEGER NOT NULL,
        label TEXT NOT NULL,
        count INTEGER NOT NULL,
        PRIMARY KEY (snapshot_id, position)
    );

    CREATE TABLE IF NOT EXISTS time_trends (
        snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
        position INTEGER NOT NULL,
        timestamp DATETIME NOT NULL,
        packet_rate REAL NOT NULL,
        flow_rate REAL NOT NULL,
        bytes_per_sec REAL NOT NULL,
        PRIMARY KEY (snapshot_id, position)
    );
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
