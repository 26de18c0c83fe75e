package ledger

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

	"journalimport/internal/config"
	"journalimport/internal/importer"
	"journalimport/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is a recorded import run.
type Run struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Journals     []string   `json:"journals"`
	Strategy     string     `json:"strategy"`
	Completed    int        `json:"completed"`
	Invalid      int        `json:"invalid"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Entry is a recorded volume outcome.
type Entry struct {
	importer.Outcome
	RunID      string    `json:"run_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Open initializes or connects to the ledger database at cfg.LedgerPath().
func Open(cfg *config.Config) (*Store, error) {
	dbPath := cfg.LedgerPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

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
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start a fresh history)",
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

// StartRun inserts a run row.
func (s *Store) StartRun(ctx context.Context, runID string, journals []string, strategy string) error {
	if strings.TrimSpace(runID) == "" {
		return services.Wrap(services.ErrValidation, "ledger", "start run", "run id is empty", nil)
	}
	return s.exec(ctx,
		`INSERT INTO runs (id, started_at, journals, strategy) VALUES (?, ?, ?, ?)`,
		runID, timestamp(time.Now()), strings.Join(journals, ","), strategy,
	)
}

// FinishRun stores the final counts of a run. runErr may be nil.
func (s *Store) FinishRun(ctx context.Context, runID string, summary importer.Summary, runErr error) error {
	var message any
	if runErr != nil {
		message = runErr.Error()
	}
	return s.exec(ctx,
		`UPDATE runs SET finished_at = ?, completed = ?, invalid = ?, error_message = ? WHERE id = ?`,
		timestamp(time.Now()), summary.Completed, summary.InvalidData, message, runID,
	)
}

// Record implements importer.Recorder. The run id is taken from ctx.
func (s *Store) Record(ctx context.Context, o importer.Outcome) error {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return services.Wrap(services.ErrValidation, "ledger", "record", "context carries no run id", nil)
	}
	return s.exec(ctx,
		`INSERT INTO outcomes (run_id, process_title, journal_id, volume_folder, status, error_kind,
			error_message, metadata_file, image_count, cleanup_warnings, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.ProcessTitle, o.JournalID, o.VolumeFolder, string(o.Status),
		nullIfEmpty(o.ErrorKind), nullIfEmpty(o.ErrorMessage), nullIfEmpty(o.MetadataFile),
		o.ImageCount, o.CleanupWarnings, timestamp(time.Now()),
	)
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(queryContext(ctx),
		`SELECT id, started_at, finished_at, journals, strategy, completed, invalid, error_message
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                  Run
			started, journals    string
			finished, errMessage sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &journals, &run.Strategy, &run.Completed, &run.Invalid, &errMessage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = parseTimestamp(started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finished.Valid {
			if t, err := parseTimestamp(finished.String); err == nil {
				run.FinishedAt = &t
			}
		}
		if journals != "" {
			run.Journals = strings.Split(journals, ",")
		}
		run.ErrorMessage = errMessage.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns the outcomes of a run in recording order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Entry, error) {
	return s.queryEntries(ctx, `WHERE run_id = ? ORDER BY id`, runID)
}

// History returns every recorded outcome of a process title, newest first.
func (s *Store) History(ctx context.Context, processTitle string) ([]Entry, error) {
	return s.queryEntries(ctx, `WHERE process_title = ? ORDER BY id DESC`, processTitle)
}

func (s *Store) queryEntries(ctx context.Context, clause string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(queryContext(ctx),
		`SELECT run_id, process_title, journal_id, volume_folder, status, error_kind, error_message,
			metadata_file, image_count, cleanup_warnings, recorded_at
		 FROM outcomes `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                          Entry
			status, recorded           string
			kind, message, metadataRaw sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.ProcessTitle, &e.JournalID, &e.VolumeFolder, &status, &kind, &message,
			&metadataRaw, &e.ImageCount, &e.CleanupWarnings, &recorded); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		e.Status = importer.Status(status)
		e.ErrorKind = kind.String
		e.ErrorMessage = message.String
		e.MetadataFile = metadataRaw.String
		if e.RecordedAt, err = parseTimestamp(recorded); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
