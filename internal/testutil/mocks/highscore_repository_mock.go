package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/valentine/internal/models"
)

// MockHighscoreRepository is a mock implementation of repository.HighscoreRepository
type MockHighscoreRepository struct {
	mock.Mock
}

func (m *MockHighscoreRepository) List(ctx context.Context, filter models.HighscoreFilter) ([]models.Highscore, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Highscore), args.Error(1)
}

func (m *MockHighscoreRepository) Insert(ctx context.Context, score models.Highscore) (models.Highscore, error) {
	args := m.Called(ctx, score)
	return args.Get(0).(models.Highscore), args.Error(1)
}
