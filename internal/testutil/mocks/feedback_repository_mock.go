package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/valentine/internal/models"
)

// MockFeedbackRepository is a mock implementation of repository.FeedbackRepository
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Insert(ctx context.Context, feedback models.Feedback) (int64, error) {
	args := m.Called(ctx, feedback)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFeedbackRepository) Tally(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}
