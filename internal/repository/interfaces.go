package repository

import (
	"context"

	"github.com/vytor/valentine/internal/models"
)

// ReasonRepository serves the unlockable reasons. Get returns nil, nil for
// an unknown id.
type ReasonRepository interface {
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int) (*models.Reason, error)
}

// GalleryRepository serves the photo and video gallery in display order.
type GalleryRepository interface {
	List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryItem, error)
}

// HighscoreRepository stores memory game results, best (fewest moves) first.
type HighscoreRepository interface {
	List(ctx context.Context, filter models.HighscoreFilter) ([]models.Highscore, error)
	Insert(ctx context.Context, score models.Highscore) (models.Highscore, error)
}

// FeedbackRepository records answers to the feedback dialog.
type FeedbackRepository interface {
	Insert(ctx context.Context, feedback models.Feedback) (int64, error)
	Tally(ctx context.Context) (map[string]int, error)
}

// VisitorRepository tracks browsers seen through the visitor cookie.
type VisitorRepository interface {
	Touch(ctx context.Context, id string) (*models.Visitor, error)
	Get(ctx context.Context, id string) (*models.Visitor, error)
}
