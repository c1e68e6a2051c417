// Package persistence archives finished runs in SQLite: the parameters,
// the final report, the per-tick population history and the event log.
// Runs are never resumed from the archive.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/warzone/internal/engine"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = errors.New("run not found")

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Run is one archived run.
type Run struct {
	ID         string `db:"id" json:"id"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	Seed       int64  `db:"seed" json:"seed"`
	Width      int    `db:"width" json:"width"`
	Height     int    `db:"height" json:"height"`
	Ticks      uint64 `db:"ticks" json:"ticks"`
	Terminated bool   `db:"terminated" json:"terminated"`
	ParamsJSON string `db:"params_json" json:"-"`
	ReportJSON string `db:"report_json" json:"-"`
}

// Report decodes the stored report. ok is false for runs archived before
// they terminated.
func (r *Run) Report() (rep engine.Report, ok bool, err error) {
	if r.ReportJSON == "" {
		return engine.Report{}, false, nil
	}
	if err := json.Unmarshal([]byte(r.ReportJSON), &rep); err != nil {
		return engine.Report{}, false, fmt.Errorf("decode report %s: %w", r.ID, err)
	}
	return rep, true, nil
}

// NewRunID returns a fresh archive id.
func NewRunID() string {
	return uuid.NewString()
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		terminated INTEGER NOT NULL,
		params_json TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		civilians INTEGER NOT NULL,
		military INTEGER NOT NULL,
		insurgents INTEGER NOT NULL,
		hazards INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun inserts or replaces a run row.
func (db *DB) SaveRun(r Run) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO runs
		(id, created_at, seed, width, height, ticks, terminated, params_json, report_json)
		VALUES (:id, :created_at, :seed, :width, :height, :ticks, :terminated, :params_json, :report_json)`,
		r,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// SaveSamples writes a run's population history (full replace).
func (db *DB) SaveSamples(runID string, samples []engine.Sample) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM samples WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO samples
		(run_id, tick, civilians, military, insurgents, hazards)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(runID, s.Tick, s.Civilians, s.Military, s.Insurgents, s.Hazards); err != nil {
			return fmt.Errorf("insert sample %d: %w", s.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to a run's log.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			runID, e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in archive metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM archive_meta WHERE key = ?", key)
	return value, err
}

// ArchiveRun stores everything about a simulation under a new run id and
// returns that id. It may be called on a run that has not terminated; the
// report is then left empty.
func (db *DB) ArchiveRun(sim *engine.Simulation, params engine.Params) (string, error) {
	id := NewRunID()
	slog.Info("archiving run", "run", id, "seed", sim.Seed(), "ticks", sim.Tick())

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	r := Run{
		ID:         id,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		Seed:       sim.Seed(),
		Width:      sim.Width(),
		Height:     sim.Height(),
		Ticks:      sim.Tick(),
		ParamsJSON: string(paramsJSON),
	}
	if rep, ok := sim.Report(); ok {
		b, err := json.Marshal(rep)
		if err != nil {
			return "", fmt.Errorf("encode report: %w", err)
		}
		r.Terminated = true
		r.ReportJSON = string(b)
	}

	if err := db.SaveRun(r); err != nil {
		return "", err
	}
	if err := db.SaveSamples(id, sim.History()); err != nil {
		return "", fmt.Errorf("save samples: %w", err)
	}
	if err := db.SaveEvents(id, sim.Events()); err != nil {
		return "", fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_run", id); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}

	slog.Info("run archived", "run", id)
	return id, nil
}

// LoadRun returns one archived run, or ErrNotFound.
func (db *DB) LoadRun(id string) (*Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RecentRuns returns the most recently archived runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// Samples returns a run's population history in tick order.
func (db *DB) Samples(runID string) ([]engine.Sample, error) {
	var samples []engine.Sample
	err := db.conn.Select(&samples,
		`SELECT tick, civilians, military, insurgents, hazards
		FROM samples WHERE run_id = ? ORDER BY tick`,
		runID,
	)
	return samples, err
}

// RecentEvents returns a run's most recent N events, newest first.
func (db *DB) RecentEvents(runID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}
