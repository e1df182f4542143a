package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vidgen/internal/jobs"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout keeps a fixed-width fraction so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the journal was written by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one render attempt.
type Entry struct {
	ID            int64       `json:"id"`
	JobID         string      `json:"job_id"`
	RequestID     string      `json:"request_id"`
	Series        string      `json:"series"`
	Part          int         `json:"part"`
	Language      string      `json:"language"`
	Voice         string      `json:"voice,omitempty"`
	Status        jobs.Status `json:"status"`
	FailedStage   string      `json:"failed_stage,omitempty"`
	ErrorKind     string      `json:"error_kind,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	VideoPath     string      `json:"video_path,omitempty"`
	FinishedVideo string      `json:"finished_video,omitempty"`
	PublishedURL  string      `json:"published_url,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`
}

// Duration returns how long the attempt ran, or zero while in flight.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt == nil {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Outcome describes how an attempt ended.
type Outcome struct {
	Status        jobs.Status
	FailedStage   string
	ErrorKind     string
	ErrorMessage  string
	Voice         string
	VideoPath     string
	FinishedVideo string
	PublishedURL  string
}

// Store records render attempts in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Begin records a job that has just been picked and returns its entry id.
func (s *Store) Begin(ctx context.Context, item *jobs.Item) (int64, error) {
	if item == nil {
		return 0, errors.New("journal: item is required")
	}
	started := item.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO renders (job_id, request_id, series, part, language, voice, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Job.ID,
		item.RequestID,
		item.Job.Series,
		int(item.Job.Part),
		nullableString(item.Job.Language),
		nullableString(item.Job.Voice),
		string(jobs.StatusRendering),
		started.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert render: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Finish stamps the outcome of entry id.
func (s *Store) Finish(ctx context.Context, id int64, outcome Outcome) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE renders SET status = ?, failed_stage = ?, error_kind = ?, error_message = ?,
             voice = COALESCE(?, voice), video_path = ?, finished_video = ?, published_url = ?, finished_at = ?
         WHERE id = ?`,
		string(outcome.Status),
		nullableString(outcome.FailedStage),
		nullableString(outcome.ErrorKind),
		nullableString(outcome.ErrorMessage),
		nullableString(outcome.Voice),
		nullableString(outcome.VideoPath),
		nullableString(outcome.FinishedVideo),
		nullableString(outcome.PublishedURL),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("update render: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("render entry %d not found", id)
	}
	return nil
}

const entryColumns = "id, job_id, request_id, series, part, language, voice, status, failed_stage, error_kind, error_message, video_path, finished_video, published_url, started_at, finished_at"

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM renders ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ForJob returns every attempt recorded for jobID, oldest first.
func (s *Store) ForJob(ctx context.Context, jobID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM renders WHERE job_id = ? ORDER BY started_at ASC, id ASC", strings.TrimSpace(jobID))
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Stats counts entries by status.
func (s *Store) Stats(ctx context.Context) (map[jobs.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM renders GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[jobs.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[jobs.Status(status)] = count
	}
	return stats, rows.Err()
}

// Prune deletes finished entries that started before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM renders WHERE finished_at IS NOT NULL AND started_at < ?",
		cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	return res.RowsAffected()
}
