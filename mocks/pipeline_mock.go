package mocks

import (
	"context"

	"resume-analyzer/internal/models"
	"resume-analyzer/internal/processor"

	"github.com/stretchr/testify/mock"
)

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Process(ctx context.Context, req processor.Request) (*models.AnalysisResult, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}
