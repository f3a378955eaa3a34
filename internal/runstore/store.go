package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run and artifact persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateRun inserts a new pending run.
func (s *Store) CreateRun(ctx context.Context, id, title string) (*Run, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, title, status, line_count, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)`,
		id,
		nullableString(title),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun fetches a run by identifier. Returns nil when no run matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// UpdateRun persists changes to an existing run.
func (s *Store) UpdateRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	run.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET title = ?, status = ?, line_count = ?, output_path = ?,
             error_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(run.Title),
		run.Status,
		run.LineCount,
		nullableString(run.OutputPath),
		nullableString(run.ErrorMessage),
		run.UpdatedAt.Format(time.RFC3339Nano),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordArtifact stores or replaces the artifact entry for a stage.
func (s *Store) RecordArtifact(ctx context.Context, stage, fingerprint, artifactPath string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_artifacts (stage, fingerprint, artifact_path, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(stage) DO UPDATE SET
             fingerprint = excluded.fingerprint,
             artifact_path = excluded.artifact_path,
             updated_at = excluded.updated_at`,
		stage,
		fingerprint,
		artifactPath,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// LookupArtifact returns the recorded artifact for a stage, or nil when the
// stage has never completed.
func (s *Store) LookupArtifact(ctx context.Context, stage string) (*Artifact, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT stage, fingerprint, artifact_path, updated_at FROM stage_artifacts WHERE stage = ?`,
		stage,
	)
	var (
		artifact   Artifact
		updatedRaw string
	)
	err := row.Scan(&artifact.Stage, &artifact.Fingerprint, &artifact.ArtifactPath, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup artifact: %w", err)
	}
	if updated, parseErr := parseTimeString(updatedRaw); parseErr == nil {
		artifact.UpdatedAt = updated
	}
	return &artifact, nil
}

// ClearArtifacts removes all stage artifact records, forcing every stage to
// rebuild on the next run.
func (s *Store) ClearArtifacts(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stage_artifacts`)
	if err != nil {
		return 0, fmt.Errorf("clear artifacts: %w", err)
	}
	return res.RowsAffected()
}

const runColumns = "id, title, status, line_count, output_path, error_message, created_at, updated_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           string
		title        sql.NullString
		statusStr    string
		lineCount    int
		outputPath   sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(&id, &title, &statusStr, &lineCount, &outputPath, &errorMessage, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Title:        title.String,
		Status:       Status(statusStr),
		LineCount:    lineCount,
		OutputPath:   outputPath.String,
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
