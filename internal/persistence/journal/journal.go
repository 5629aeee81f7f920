// Package journal keeps a queryable record of runs and their steps in
// sqlite, one database per pilot installation. Step volume is a few rows
// per second at worst, so writes go straight through instead of queueing.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

type Run struct {
	ID         string
	Agent      string
	Target     [3]float64
	StartedAt  time.Time
	FinishedAt time.Time
	Arrived    bool
	Finished   bool
}

type StepRow struct {
	Seq       int
	At        time.Time
	Success   bool
	Progress  float64
	Mined     int
	Pillared  int
	Code      string
	Narrative string
}

type RunSummary struct {
	Steps    int
	Failures int
	Mined    int
	Pillared int
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			agent       TEXT NOT NULL,
			target_x    REAL NOT NULL,
			target_y    REAL NOT NULL,
			target_z    REAL NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT,
			arrived     INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS steps (
			run_id    TEXT NOT NULL REFERENCES runs(run_id),
			seq       INTEGER NOT NULL,
			at        TEXT NOT NULL,
			success   INTEGER NOT NULL,
			progress  REAL NOT NULL,
			mined     INTEGER NOT NULL,
			pillared  INTEGER NOT NULL,
			code      TEXT NOT NULL DEFAULT '',
			narrative TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error { return d.db.Close() }

// CreateRun registers a new run and returns its id.
func (d *DB) CreateRun(agent string, target [3]float64) (string, error) {
	id := uuid.NewString()
	_, err := d.db.Exec(
		`INSERT INTO runs (run_id, agent, target_x, target_y, target_z, started_at) VALUES (?,?,?,?,?,?)`,
		id, agent, target[0], target[1], target[2], timestamp(time.Now()),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *DB) FinishRun(runID string, arrived bool) error {
	res, err := d.db.Exec(
		`UPDATE runs SET finished_at=?, arrived=? WHERE run_id=?`,
		timestamp(time.Now()), boolInt(arrived), runID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown run %s", runID)
	}
	return nil
}

func (d *DB) InsertStep(runID string, s StepRow) error {
	_, err := d.db.Exec(
		`INSERT INTO steps (run_id, seq, at, success, progress, mined, pillared, code, narrative)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		runID, s.Seq, timestamp(s.At), boolInt(s.Success), s.Progress, s.Mined, s.Pillared, s.Code, s.Narrative,
	)
	return err
}

func (d *DB) Summary(runID string) (RunSummary, error) {
	var sum RunSummary
	row := d.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN success=0 THEN 1 ELSE 0 END),0),
		        COALESCE(SUM(mined),0),
		        COALESCE(SUM(pillared),0)
		 FROM steps WHERE run_id=?`, runID)
	if err := row.Scan(&sum.Steps, &sum.Failures, &sum.Mined, &sum.Pillared); err != nil {
		return sum, err
	}
	return sum, nil
}

// RecentRuns lists runs newest first.
func (d *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(
		`SELECT run_id, agent, target_x, target_y, target_z, started_at, COALESCE(finished_at,''), arrived
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		var arrived int
		if err := rows.Scan(&r.ID, &r.Agent, &r.Target[0], &r.Target[1], &r.Target[2], &started, &finished, &arrived); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
			r.Finished = true
		}
		r.Arrived = arrived != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
