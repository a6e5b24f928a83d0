package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueGalleryRefresh() error
	EnqueueVisitorTouch(visitorID string) error
}
