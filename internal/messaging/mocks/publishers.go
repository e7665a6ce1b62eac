package mocks

import (
	"context"

	"quest-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock RunUpdatePublisher
type RunUpdatePublisher struct {
	mock.Mock
}

func (m *RunUpdatePublisher) PublishRunUpdate(ctx context.Context, update models.RunUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}
