package mocks

import (
	"context"

	"resume-analyzer/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRunRecorder struct {
	mock.Mock
}

func (m *MockRunRecorder) StartRun(ctx context.Context, run *models.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRecorder) CompleteRun(ctx context.Context, runID uuid.UUID, pageCount, extractedChars int) error {
	args := m.Called(ctx, runID, pageCount, extractedChars)
	return args.Error(0)
}

func (m *MockRunRecorder) FailRun(ctx context.Context, runID uuid.UUID, message string) error {
	args := m.Called(ctx, runID, message)
	return args.Error(0)
}
