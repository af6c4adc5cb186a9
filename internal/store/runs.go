package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one crawl request as remembered in the history table. Notices are
// never stored.
type Run struct {
	ID         string          `json:"id"`
	RequestID  string          `json:"request_id,omitempty"`
	Status     string          `json:"status"`
	From       string          `json:"fecha_inicio"`
	To         string          `json:"fecha_fin"`
	MaxResults int             `json:"max_resultados"`
	Enrich     bool            `json:"incluir_cubso"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Count      int             `json:"cantidad"`
	Pages      int             `json:"pages"`
	StopReason string          `json:"stop_reason,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	Report     json.RawMessage `json:"report,omitempty"`
}

// Fixed-width timestamps so started_at sorts as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  request_id TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  date_from TEXT NOT NULL,
  date_to TEXT NOT NULL,
  max_results INTEGER NOT NULL DEFAULT 0,
  enrich INTEGER NOT NULL DEFAULT 0,
  started_at TEXT NOT NULL,
  finished_at TEXT,
  count INTEGER NOT NULL DEFAULT 0,
  pages INTEGER NOT NULL DEFAULT 0,
  stop_reason TEXT NOT NULL DEFAULT '',
  error TEXT NOT NULL DEFAULT '',
  duration_ms INTEGER NOT NULL DEFAULT 0,
  report TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_runs_started_at
ON runs(started_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// StartRun records a run as running.
func StartRun(ctx context.Context, db *sql.DB, r Run) error {
	if r.ID == "" {
		return errors.New("run id is empty")
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO runs(id, request_id, status, date_from, date_to, max_results, enrich, started_at)
VALUES(?,?,?,?,?,?,?,?);`,
		r.ID, r.RequestID, RunRunning, r.From, r.To, r.MaxResults, boolInt(r.Enrich),
		r.StartedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome. A non-empty errMsg marks the run failed.
func FinishRun(ctx context.Context, db *sql.DB, id string, count, pages int, stop, errMsg string, dur time.Duration, report any) error {
	status := RunOK
	if errMsg != "" {
		status = RunFailed
	}
	var rep string
	if report != nil {
		b, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		rep = string(b)
	}
	res, err := db.ExecContext(ctx, `
UPDATE runs
SET status = ?, finished_at = ?, count = ?, pages = ?, stop_reason = ?, error = ?, duration_ms = ?, report = ?
WHERE id = ?;`,
		status, time.Now().UTC().Format(tsLayout), count, pages, stop, errMsg, dur.Milliseconds(), rep, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

const runColumns = `id, request_id, status, date_from, date_to, max_results, enrich, started_at, finished_at, count, pages, stop_reason, error, duration_ms, report`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var (
		r        Run
		enrich   int
		started  string
		finished sql.NullString
		report   string
	)
	if err := sc.Scan(&r.ID, &r.RequestID, &r.Status, &r.From, &r.To, &r.MaxResults, &enrich,
		&started, &finished, &r.Count, &r.Pages, &r.StopReason, &r.Error, &r.DurationMS, &report); err != nil {
		return Run{}, err
	}
	r.Enrich = enrich != 0
	r.StartedAt, _ = time.Parse(tsLayout, started)
	if finished.Valid && finished.String != "" {
		if t, err := time.Parse(tsLayout, finished.String); err == nil {
			r.FinishedAt = &t
		}
	}
	if report != "" {
		r.Report = json.RawMessage(report)
	}
	return r, nil
}

// ListRuns returns the newest runs first. limit is clamped to 1..500.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT `+runColumns+`
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func GetRun(ctx context.Context, db *sql.DB, id string) (Run, error) {
	r, err := scanRun(db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// CleanupOldRuns deletes history older than keep.
func CleanupOldRuns(ctx context.Context, db *sql.DB, keep time.Duration) (deleted int64, err error) {
	cutoff := time.Now().Add(-keep).UTC().Format(tsLayout)
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// MarkInterrupted fails runs left "running" by a previous process.
func MarkInterrupted(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `
UPDATE runs SET status = ?, error = 'interrupted'
WHERE status = ?;`, RunFailed, RunRunning)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
