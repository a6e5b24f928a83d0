package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/valentine/internal/models"
)

// MockGalleryRepository is a mock implementation of repository.GalleryRepository
type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}
