package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPageCache struct {
	mock.Mock
}

func (m *MockPageCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockPageCache) Set(ctx context.Context, key, text string) error {
	args := m.Called(ctx, key, text)
	return args.Error(0)
}
