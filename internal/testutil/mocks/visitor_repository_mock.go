package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/valentine/internal/models"
)

// MockVisitorRepository is a mock implementation of repository.VisitorRepository
type MockVisitorRepository struct {
	mock.Mock
}

func (m *MockVisitorRepository) Touch(ctx context.Context, id string) (*models.Visitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visitor), args.Error(1)
}

func (m *MockVisitorRepository) Get(ctx context.Context, id string) (*models.Visitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visitor), args.Error(1)
}
