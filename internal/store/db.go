// Package store provides the SQLite persistence layer for flattened
// shift data, KPI rows, and run bookkeeping.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"shift-etl/internal/model"
)

// Store wraps the SQLite connection. All entity writes are append-only;
// the only deletes happen through Reset.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and provisions the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and is
	// plenty for the sequential pipeline.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		shift_id TEXT PRIMARY KEY,
		shift_date DATETIME NOT NULL,
		shift_start DATETIME NOT NULL,
		shift_finish DATETIME NOT NULL,
		shift_cost REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS allowances (
		allowance_id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(shift_id) ON DELETE CASCADE,
		allowance_value REAL NOT NULL,
		allowance_cost REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS award_interpretations (
		award_id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(shift_id) ON DELETE CASCADE,
		award_date DATETIME NOT NULL,
		award_units REAL NOT NULL,
		award_cost REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS breaks (
		break_id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(shift_id) ON DELETE CASCADE,
		break_start DATETIME NOT NULL,
		break_finish DATETIME NOT NULL,
		is_paid BOOLEAN NOT NULL
	);

	CREATE TABLE IF NOT EXISTS kpis (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kpi_name TEXT NOT NULL,
		kpi_value REAL NOT NULL,
		kpi_date DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_allowances_shift ON allowances(shift_id);
	CREATE INDEX IF NOT EXISTS idx_awards_shift ON award_interpretations(shift_id);
	CREATE INDEX IF NOT EXISTS idx_breaks_shift ON breaks(shift_id);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		shift_count INTEGER NOT NULL DEFAULT 0,
		allowance_count INTEGER NOT NULL DEFAULT 0,
		award_count INTEGER NOT NULL DEFAULT 0,
		break_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		error_message TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all shift-derived tables and the KPI table so a rerun
// with identical input does not duplicate rows. Child tables are
// cleared through the shifts cascade.
func (s *Store) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM shifts`); err != nil {
		return fmt.Errorf("resetting shift tables: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM kpis`); err != nil {
		return fmt.Errorf("resetting kpis: %w", err)
	}
	return nil
}

// SaveDataset appends all flattened rows in one transaction, parents
// before children: shifts, allowances, award interpretations, breaks.
// Any failure rolls the transaction back and aborts the run.
func (s *Store) SaveDataset(ds *model.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sh := range ds.Shifts {
		_, err := tx.Exec(
			`INSERT INTO shifts (shift_id, shift_date, shift_start, shift_finish, shift_cost) VALUES (?, ?, ?, ?, ?)`,
			sh.ID, sh.Date, sh.Start, sh.Finish, sh.Cost)
		if err != nil {
			return fmt.Errorf("inserting shifts: %w", err)
		}
	}

	for _, a := range ds.Allowances {
		_, err := tx.Exec(
			`INSERT INTO allowances (allowance_id, shift_id, allowance_value, allowance_cost) VALUES (?, ?, ?, ?)`,
			a.ID, a.ShiftID, a.Value, a.Cost)
		if err != nil {
			return fmt.Errorf("inserting allowances: %w", err)
		}
	}

	for _, aw := range ds.AwardInterpretations {
		_, err := tx.Exec(
			`INSERT INTO award_interpretations (award_id, shift_id, award_date, award_units, award_cost) VALUES (?, ?, ?, ?, ?)`,
			aw.ID, aw.ShiftID, aw.Date, aw.Units, aw.Cost)
		if err != nil {
			return fmt.Errorf("inserting award interpretations: %w", err)
		}
	}

	for _, b := range ds.Breaks {
		_, err := tx.Exec(
			`INSERT INTO breaks (break_id, shift_id, break_start, break_finish, is_paid) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.ShiftID, b.Start, b.Finish, b.Paid)
		if err != nil {
			return fmt.Errorf("inserting breaks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing inserts: %w", err)
	}
	return nil
}

// SaveKPIs appends one row per computed metric.
func (s *Store) SaveKPIs(kpis []model.KPI) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning kpi transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range kpis {
		_, err := tx.Exec(
			`INSERT INTO kpis (kpi_name, kpi_value, kpi_date) VALUES (?, ?, ?)`,
			k.Name, k.Value, k.Date)
		if err != nil {
			return fmt.Errorf("inserting kpis: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing kpis: %w", err)
	}
	return nil
}

// LatestKPIs returns the KPI rows of the most recent write, newest
// insertion first.
func (s *Store) LatestKPIs() ([]model.KPI, error) {
	rows, err := s.db.Query(
		`SELECT kpi_name, kpi_value, kpi_date FROM kpis ORDER BY id DESC LIMIT 6`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kpis []model.KPI
	for rows.Next() {
		var k model.KPI
		if err := rows.Scan(&k.Name, &k.Value, &k.Date); err != nil {
			return nil, err
		}
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

// EntityCounts reports row counts per entity table.
func (s *Store) EntityCounts() (shifts, allowances, awards, breaks, kpis int, err error) {
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM shifts`, &shifts},
		{`SELECT COUNT(*) FROM allowances`, &allowances},
		{`SELECT COUNT(*) FROM award_interpretations`, &awards},
		{`SELECT COUNT(*) FROM breaks`, &breaks},
		{`SELECT COUNT(*) FROM kpis`, &kpis},
	}
	for _, c := range counts {
		if err = s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return
		}
	}
	return
}

// SaveRun records a new pending run.
func (s *Store) SaveRun(runID string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		runID, model.RunStatusPending, now, now)
	return err
}

// UpdateRunStatus moves a run to a new status.
func (s *Store) UpdateRunStatus(runID, status string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), runID)
	return err
}

// UpdateRunCounts records how many rows a run produced per entity.
func (s *Store) UpdateRunCounts(runID string, ds *model.Dataset) error {
	_, err := s.db.Exec(
		`UPDATE runs SET shift_count = ?, allowance_count = ?, award_count = ?, break_count = ?, updated_at = ? WHERE id = ?`,
		len(ds.Shifts), len(ds.Allowances), len(ds.AwardInterpretations), len(ds.Breaks),
		time.Now().UTC(), runID)
	return err
}

// SaveRunError records a failure for a run.
func (s *Store) SaveRunError(runID string, runErr error) error {
	if runErr == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, runErr.Error(), time.Now().UTC())
	return err
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(runID string) (*model.Run, error) {
	var r model.Run
	err := s.db.QueryRow(
		`SELECT id, status, created_at, updated_at, shift_count, allowance_count, award_count, break_count
		 FROM runs WHERE id = ?`, runID).
		Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.ShiftCount, &r.AllowanceCount, &r.AwardCount, &r.BreakCount)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]model.Run, error) {
	rows, err := s.db.Query(
		`SELECT id, status, created_at, updated_at, shift_count, allowance_count, award_count, break_count
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.ShiftCount, &r.AllowanceCount, &r.AwardCount, &r.BreakCount); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunErrors returns all errors recorded for a run.
func (s *Store) GetRunErrors(runID string) ([]model.RunError, error) {
	rows, err := s.db.Query(
		`SELECT run_id, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []model.RunError
	for rows.Next() {
		var e model.RunError
		if err := rows.Scan(&e.RunID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}
