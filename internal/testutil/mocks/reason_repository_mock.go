package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/valentine/internal/models"
)

// MockReasonRepository is a mock implementation of repository.ReasonRepository
type MockReasonRepository struct {
	mock.Mock
}

func (m *MockReasonRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReasonRepository) Get(ctx context.Context, id int) (*models.Reason, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reason), args.Error(1)
}
