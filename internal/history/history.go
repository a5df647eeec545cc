// Package history keeps a local ledger of completed generation runs for
// auditing. It records what was generated, never what was applied.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded generation run.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Status          string // "success"
	TablesGenerated int
	TablesSkipped   int
	Warnings        int
	OutputDir       string
	DryRun          bool
}

// ErrNotFound is returned when a run ID has no recorded entry.
var ErrNotFound = errors.New("run not found")

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store is a SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	status TEXT NOT NULL,
	tables_generated INTEGER NOT NULL,
	tables_skipped INTEGER NOT NULL,
	warnings INTEGER NOT NULL,
	output_dir TEXT NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0
);
`

// Open opens (creating if necessary) the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts one completed run.
func (s *Store) RecordRun(run Run) error {
	dryRun := 0
	if run.DryRun {
		dryRun = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, status, tables_generated, tables_skipped, warnings, output_dir, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Status,
		run.TablesGenerated,
		run.TablesSkipped,
		run.Warnings,
		run.OutputDir,
		dryRun,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns all recorded runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, status, tables_generated, tables_skipped, warnings, output_dir, dry_run
		FROM runs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID, or ErrNotFound.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, status, tables_generated, tables_skipped, warnings, output_dir, dry_run
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanRun(scan func(...any) error) (Run, error) {
	var run Run
	var started, finished string
	var dryRun int
	if err := scan(&run.ID, &started, &finished, &run.Status,
		&run.TablesGenerated, &run.TablesSkipped, &run.Warnings, &run.OutputDir, &dryRun); err != nil {
		return Run{}, err
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return Run{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return Run{}, fmt.Errorf("parsing finished_at: %w", err)
	}
	run.DryRun = dryRun != 0
	return run, nil
}
