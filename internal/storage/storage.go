package storage

import (
	"context"
	"errors"

	"resume-analyzer/internal/models"

	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

// RunRecorder keeps the metadata ledger of pipeline runs.
type RunRecorder interface {
	StartRun(ctx context.Context, run *models.Run) error
	CompleteRun(ctx context.Context, runID uuid.UUID, pageCount, extractedChars int) error
	FailRun(ctx context.Context, runID uuid.UUID, message string) error
}

// RunReader looks up one run. An unknown id yields ErrRunNotFound.
type RunReader interface {
	RunByID(ctx context.Context, runID uuid.UUID) (*models.Run, error)
}

type RunStore interface {
	RunRecorder
	RunReader
}
