// Package store persists extraction runs as SQLite snapshots so search
// and serve commands can work from the last run instead of re-parsing
// the source tree.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/propdoc/propdoc/internal/extractor"
	"github.com/propdoc/propdoc/internal/property"
)

// ErrNoRuns is returned by LatestRun when the store holds no runs yet.
var ErrNoRuns = errors.New("no extraction runs stored")

// RunMeta describes one stored extraction run.
type RunMeta struct {
	ID                string
	SourceDir         string
	CreatedAt         time.Time
	PairsExtracted    int
	PropertiesEmitted int
	EnterpriseCount   int
}

// Store is a SQLite-backed snapshot store. Safe for use from a single
// process; writes go through transactions.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the store at path. Parent
// directories are created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	exists, err := schemaExists(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if !exists {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing store without write access. A missing
// database file is an error, not an empty store.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store %q: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a finished extraction as a new run and returns its
// ID. The document's definitions travel with the run so a later load
// reproduces the full output.
func (s *Store) SaveRun(ctx context.Context, sourceDir string, doc *property.Document, stats *extractor.Stats) (string, error) {
	runID := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	definitions, err := json.Marshal(doc.Definitions)
	if err != nil {
		return "", fmt.Errorf("failed to marshal definitions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, source_dir, created_at,
			pairs_discovered, pairs_extracted, pairs_skipped,
			properties_emitted, properties_dropped, enterprise_count,
			duration_ms, definitions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, sourceDir, now,
		stats.PairsDiscovered, stats.PairsExtracted, stats.PairsSkipped,
		stats.PropertiesEmitted, stats.PropertiesDropped, stats.EnterpriseCount,
		stats.Duration.Milliseconds(), string(definitions),
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO run_properties (
			run_id, name, defined_in, type, visibility,
			is_enterprise, is_deprecated, record
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare property insert: %w", err)
	}
	defer insert.Close()

	for _, name := range doc.Names() {
		rec := doc.Properties[name]
		record, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("failed to marshal property %s: %w", name, err)
		}
		if _, err := insert.ExecContext(ctx,
			runID, rec.Name, rec.DefinedIn, rec.Type, rec.Visibility,
			boolToInt(rec.IsEnterprise), boolToInt(rec.IsDeprecated), string(record),
		); err != nil {
			return "", fmt.Errorf("failed to insert property %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// LatestRun returns metadata for the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (*RunMeta, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, source_dir, created_at,
		       pairs_extracted, properties_emitted, enterprise_count
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`)

	var meta RunMeta
	var createdAt string
	err := row.Scan(&meta.ID, &meta.SourceDir, &createdAt,
		&meta.PairsExtracted, &meta.PropertiesEmitted, &meta.EnterpriseCount)
	if err == sql.ErrNoRows {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	meta.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	return &meta, nil
}

// LoadDocument reconstructs the output document of a stored run.
// Numbers decode as json.Number so unsigned 64-bit defaults survive the
// round trip without float rounding.
func (s *Store) LoadDocument(ctx context.Context, runID string) (*property.Document, error) {
	var definitions string
	err := s.db.QueryRowContext(ctx,
		"SELECT definitions FROM runs WHERE run_id = ?", runID).Scan(&definitions)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	doc := property.NewDocument()
	if err := json.Unmarshal([]byte(definitions), &doc.Definitions); err != nil {
		return nil, fmt.Errorf("failed to parse stored definitions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT record FROM run_properties WHERE run_id = ? ORDER BY name", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run properties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan property record: %w", err)
		}
		rec, err := property.UnmarshalRecord([]byte(record))
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored property record: %w", err)
		}
		doc.Add(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run properties: %w", err)
	}
	return doc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
