package jobs

import (
	"errors"

	"github.com/vytor/valentine/internal/repository"
	"github.com/vytor/valentine/internal/worker"
)

// ErrQueueFull is returned when a background job could not be queued.
var ErrQueueFull = errors.New("job queue full")

// WorkerQueue implements JobQueue using a worker pool. Jobs are queued
// without blocking so request handlers never wait on background work.
type WorkerQueue struct {
	pool     *worker.Pool
	gallery  worker.GalleryRefresher
	visitors repository.VisitorRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, visitors repository.VisitorRepository) *WorkerQueue {
	return &WorkerQueue{pool: pool, visitors: visitors}
}

// SetGalleryRefresher binds the refresher used by gallery jobs. The gallery
// service needs the queue itself, so it is wired after construction.
func (q *WorkerQueue) SetGalleryRefresher(g worker.GalleryRefresher) {
	q.gallery = g
}

func (q *WorkerQueue) EnqueueGalleryRefresh() error {
	if q.gallery == nil {
		return errors.New("gallery refresher not configured")
	}
	return q.submit(&worker.RefreshGalleryJob{Gallery: q.gallery})
}

func (q *WorkerQueue) EnqueueVisitorTouch(visitorID string) error {
	if q.visitors == nil {
		return nil
	}
	return q.submit(&worker.TouchVisitorJob{Visitors: q.visitors, VisitorID: visitorID})
}

func (q *WorkerQueue) submit(job worker.Job) error {
	if !q.pool.TrySubmit(job) {
		return ErrQueueFull
	}
	return nil
}
