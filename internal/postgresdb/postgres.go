package postgresdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-analyzer/internal/models"
	"resume-analyzer/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id              UUID PRIMARY KEY,
		status          TEXT NOT NULL,
		file_name       TEXT NOT NULL,
		document_bytes  INTEGER NOT NULL,
		page_count      INTEGER NOT NULL DEFAULT 0,
		extracted_chars INTEGER NOT NULL DEFAULT 0,
		error_message   TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at     TIMESTAMPTZ
	)
	`

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Store, error) {
	if connString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to create analysis_runs table: %w", err)
	}
	return nil
}

func (s *Store) StartRun(ctx context.Context, run *models.Run) error {

	sql := `
		INSERT INTO analysis_runs (id, status, file_name, document_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		`

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.Pool.Exec(
		ctx,
		sql,
		run.ID,
		models.StatusRunning.String(),
		run.FileName,
		run.DocumentBytes,
		createdAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	return nil
}

func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, pageCount, extractedChars int) error {

	sql := `
		UPDATE analysis_runs
		SET status = $2, page_count = $3, extracted_chars = $4, finished_at = now()
		WHERE id = $1
		`

	return s.finish(ctx, runID, sql, models.StatusSucceeded.String(), pageCount, extractedChars)
}

func (s *Store) FailRun(ctx context.Context, runID uuid.UUID, message string) error {

	sql := `
		UPDATE analysis_runs
		SET status = $2, error_message = $3, finished_at = now()
		WHERE id = $1
		`

	return s.finish(ctx, runID, sql, models.StatusFailed.String(), message)
}

func (s *Store) finish(ctx context.Context, runID uuid.UUID, sql string, args ...any) error {

	tag, err := s.Pool.Exec(ctx, sql, append([]any{runID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", runID, storage.ErrRunNotFound)
	}

	return nil
}

func (s *Store) RunByID(ctx context.Context, runID uuid.UUID) (*models.Run, error) {

	var run models.Run

	// convert to string before sending back
	var statusString string

	sql := `
        SELECT id, status, file_name, document_bytes, page_count, extracted_chars,
               error_message, created_at, finished_at
        FROM analysis_runs
        WHERE id = $1
        `

	err := s.Pool.QueryRow(
		ctx,
		sql,
		runID,
	).Scan(
		&run.ID,
		&statusString,
		&run.FileName,
		&run.DocumentBytes,
		&run.PageCount,
		&run.ExtractedChars,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.FinishedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, storage.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve run %s: %w", runID, err)
	}

	status, err := models.ParseStatus(statusString)
	if err != nil {
		return nil, fmt.Errorf("database contains invalid run status: %w", err)
	}
	run.Status = status

	return &run, nil
}
