package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockImageReader struct {
	mock.Mock
}

func (m *MockImageReader) ReadImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	args := m.Called(ctx, image, mimeType, instruction)
	return args.String(0), args.Error(1)
}

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
