package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/checkpoint/internal/verify"
)

// Run is one saved verification run. Result is stored as JSON so the full
// normalized shape survives round trips.
type Run struct {
	ID              string
	TaskTitle       string
	TaskDescription string
	RepoURL         string
	BaseCommit      string
	HeadCommit      string
	Passed          bool
	Capped          bool
	Result          *verify.VerificationResult
	Iterations      int
	TokensIn        int64
	TokensOut       int64
	CreatedAt       time.Time
}

// SaveRun persists a run, assigning an ID and timestamp when missing.
func (db *DB) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Result == nil {
		return fmt.Errorf("run has no result")
	}

	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO runs (id, task_title, task_description, repo_url, base_commit, head_commit,
			passed, capped, result, iterations, tokens_in, tokens_out, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TaskTitle, run.TaskDescription, run.RepoURL, run.BaseCommit, run.HeadCommit,
		boolToInt(run.Passed), boolToInt(run.Capped), string(resultJSON),
		run.Iterations, run.TokensIn, run.TokensOut, formatTime(run.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// GetRun fetches a run by ID.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, task_title, task_description, repo_url, base_commit, head_commit,
			passed, capped, result, iterations, tokens_in, tokens_out, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, task_title, task_description, repo_url, base_commit, head_commit,
			passed, capped, result, iterations, tokens_in, tokens_out, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PurgeOldRuns deletes runs older than the specified duration.
// Returns the number of runs deleted.
func (db *DB) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old runs: %w", err)
	}

	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var passed, capped int
	var resultJSON, createdAt string

	err := row.Scan(&run.ID, &run.TaskTitle, &run.TaskDescription, &run.RepoURL,
		&run.BaseCommit, &run.HeadCommit, &passed, &capped, &resultJSON,
		&run.Iterations, &run.TokensIn, &run.TokensOut, &createdAt)
	if err != nil {
		return nil, err
	}

	run.Passed = passed != 0
	run.Capped = capped != 0

	if err := json.Unmarshal([]byte(resultJSON), &run.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
