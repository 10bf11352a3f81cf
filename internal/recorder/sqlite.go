package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc readers don't block the batch writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			universe    INTEGER,
			processed   INTEGER,
			skipped     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS bucket_hits (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL,
			bucket  TEXT NOT NULL,
			ticker  TEXT NOT NULL,
			company TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_run ON bucket_hits(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_ticker ON bucket_hits(ticker)`,

		`CREATE TABLE IF NOT EXISTS latest_signals (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL,
			ticker   TEXT NOT NULL,
			close    REAL,
			macd_rsi TEXT,
			macd_rci TEXT,
			bb_macd  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON latest_signals(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, universe, processed, skipped)
		VALUES (?,?,?,?,?,?)`,
		run.RunID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Universe, run.Processed, run.Skipped,
	)
	return err
}

func (r *SQLiteRecorder) RecordBucketHits(runID string, hits []BucketHit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, h := range hits {
		if _, err := tx.Exec(`INSERT INTO bucket_hits (run_id, bucket, ticker, company)
			VALUES (?,?,?,?)`, runID, h.Bucket, h.Ticker, h.Company); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordLatestSignals(runID string, signals []LatestSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, s := range signals {
		if _, err := tx.Exec(`INSERT INTO latest_signals (run_id, ticker, close, macd_rsi, macd_rci, bb_macd)
			VALUES (?,?,?,?,?,?)`, runID, s.Ticker, s.Close, s.MACDRSI, s.MACDRCI, s.BBMACD); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
