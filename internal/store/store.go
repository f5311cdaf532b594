// Package store persists run history in SQLite: one row per analysis run
// and one per processed band, for later listing and comparison.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default relative path for the run-history database.
const DefaultDBPath = ".raybands/runs.db"

// Run is one recorded analysis run.
type Run struct {
	ID         string
	StartedAt  time.Time
	ProcessID  int
	Source     string
	Surface    string
	RunSize    int
	Filtered   int
	TotalPower float64
	Bands      []BandRow
}

// BandRow is one processed band within a run.
type BandRow struct {
	UpperPercent float64
	LowerPercent float64
	RayCount     int
	BandPower    float64
	CSVPath      string
	ImagePath    string
	Warning      string
}

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	process_id INTEGER NOT NULL,
	source TEXT NOT NULL,
	surface TEXT NOT NULL,
	run_size INTEGER NOT NULL,
	filtered INTEGER NOT NULL,
	total_power REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS bands (
	run_id TEXT NOT NULL REFERENCES runs(id),
	upper_percent REAL NOT NULL,
	lower_percent REAL NOT NULL,
	ray_count INTEGER NOT NULL,
	band_power REAL NOT NULL,
	csv_path TEXT NOT NULL,
	image_path TEXT NOT NULL,
	warning TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bands_run ON bands(run_id);
`

// Open opens or creates the run-history database at path, creating the
// parent directory if needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// RecordRun inserts the run and its bands, assigning the run an id when it
// has none. Returns the run id.
func (s *Store) RecordRun(r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs(id, started_at, process_id, source, surface, run_size, filtered, total_power)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.ProcessID,
		r.Source, r.Surface, r.RunSize, r.Filtered, r.TotalPower,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for _, b := range r.Bands {
		_, err = tx.Exec(
			`INSERT INTO bands(run_id, upper_percent, lower_percent, ray_count, band_power, csv_path, image_path, warning)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, b.UpperPercent, b.LowerPercent, b.RayCount, b.BandPower,
			b.CSVPath, b.ImagePath, b.Warning,
		)
		if err != nil {
			return "", fmt.Errorf("insert band: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return r.ID, nil
}

// ListRuns returns recorded runs, most recent first, without band detail.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(
		`SELECT id, started_at, process_id, source, surface, run_size, filtered, total_power
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.ProcessID, &r.Source, &r.Surface, &r.RunSize, &r.Filtered, &r.TotalPower); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads one run with its bands.
func (s *Store) GetRun(id string) (*Run, error) {
	var r Run
	var started string
	err := s.conn.QueryRow(
		`SELECT id, started_at, process_id, source, surface, run_size, filtered, total_power
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &started, &r.ProcessID, &r.Source, &r.Surface, &r.RunSize, &r.Filtered, &r.TotalPower)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		r.StartedAt = t
	}

	rows, err := s.conn.Query(
		`SELECT upper_percent, lower_percent, ray_count, band_power, csv_path, image_path, warning
		 FROM bands WHERE run_id = ? ORDER BY upper_percent DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("query bands: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b BandRow
		if err := rows.Scan(&b.UpperPercent, &b.LowerPercent, &b.RayCount, &b.BandPower, &b.CSVPath, &b.ImagePath, &b.Warning); err != nil {
			return nil, fmt.Errorf("scan band: %w", err)
		}
		r.Bands = append(r.Bands, b)
	}
	return &r, rows.Err()
}
