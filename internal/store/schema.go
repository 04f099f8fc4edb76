package store

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables and indexes for the snapshot store.
// Uses a transaction for atomicity - all schema creation succeeds or
// fails together.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Enable foreign keys (must be set for each connection)
	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"run_properties", createRunPropertiesTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// schemaExists reports whether the runs table is present.
func schemaExists(db *sql.DB) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check schema existence: %w", err)
	}
	return count > 0, nil
}

// Table DDL constants

const createRunsTable = `
CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,                -- UUID
    source_dir TEXT NOT NULL,               -- Tree the run was extracted from
    created_at TEXT NOT NULL,               -- ISO 8601 with nanoseconds
    pairs_discovered INTEGER NOT NULL DEFAULT 0,
    pairs_extracted INTEGER NOT NULL DEFAULT 0,
    pairs_skipped INTEGER NOT NULL DEFAULT 0,
    properties_emitted INTEGER NOT NULL DEFAULT 0,
    properties_dropped INTEGER NOT NULL DEFAULT 0,
    enterprise_count INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    definitions TEXT NOT NULL DEFAULT '{}'  -- External definitions JSON object
)
`

const createRunPropertiesTable = `
CREATE TABLE run_properties (
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    defined_in TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    visibility TEXT NOT NULL DEFAULT '',
    is_enterprise INTEGER NOT NULL DEFAULT 0, -- Boolean
    is_deprecated INTEGER NOT NULL DEFAULT 0, -- Boolean
    record TEXT NOT NULL,                     -- Full property record JSON
    PRIMARY KEY (run_id, name),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

var schemaIndexes = []string{
	"CREATE INDEX idx_run_properties_name ON run_properties(name)",
	"CREATE INDEX idx_runs_created_at ON runs(created_at)",
}
