package worker

import (
	"context"

	"github.com/vytor/valentine/internal/repository"
)

// GalleryRefresher reloads the cached gallery. It is declared here so the
// worker package does not import services.
type GalleryRefresher interface {
	Refresh(ctx context.Context) error
}

// RefreshGalleryJob repopulates the gallery cache from the content source.
type RefreshGalleryJob struct {
	Gallery GalleryRefresher
}

func (j *RefreshGalleryJob) Name() string { return "refresh_gallery" }

func (j *RefreshGalleryJob) Run(ctx context.Context) error {
	return j.Gallery.Refresh(ctx)
}

// TouchVisitorJob records that a visitor was seen.
type TouchVisitorJob struct {
	Visitors  repository.VisitorRepository
	VisitorID string
}

func (j *TouchVisitorJob) Name() string { return "touch_visitor" }

func (j *TouchVisitorJob) Run(ctx context.Context) error {
	_, err := j.Visitors.Touch(ctx, j.VisitorID)
	return err
}
