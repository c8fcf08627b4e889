package mocks

import (
	"context"

	"resume-analyzer/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRunReader struct {
	mock.Mock
}

func (m *MockRunReader) RunByID(ctx context.Context, runID uuid.UUID) (*models.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Run), args.Error(1)
}
