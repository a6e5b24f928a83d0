package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/jobs"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/testutil/mocks"
	"github.com/vytor/valentine/internal/worker"
)

type refresher struct{ done chan struct{} }

func (r *refresher) Refresh(context.Context) error {
	close(r.done)
	return nil
}

func TestWorkerQueue_GalleryRefresh(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	q := jobs.NewWorkerQueue(pool, nil)
	assert.Error(t, q.EnqueueGalleryRefresh(), "refresher not bound yet")

	r := &refresher{done: make(chan struct{})}
	q.SetGalleryRefresher(r)
	require.NoError(t, q.EnqueueGalleryRefresh())

	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh job did not run")
	}
}

func TestWorkerQueue_VisitorTouch(t *testing.T) {
	visitors := new(mocks.MockVisitorRepository)
	touched := make(chan struct{})
	visitors.On("Touch", mock.Anything, "v-1").
		Run(func(mock.Arguments) { close(touched) }).
		Return(&models.Visitor{ID: "v-1"}, nil)

	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, jobs.NewWorkerQueue(pool, visitors).EnqueueVisitorTouch("v-1"))

	select {
	case <-touched:
	case <-time.After(2 * time.Second):
		t.Fatal("touch job did not run")
	}
	visitors.AssertExpectations(t)
}

func TestWorkerQueue_Full(t *testing.T) {
	pool := worker.NewPool(1, 1)
	q := jobs.NewWorkerQueue(pool, new(mocks.MockVisitorRepository))

	require.NoError(t, q.EnqueueVisitorTouch("a"))
	assert.ErrorIs(t, q.EnqueueVisitorTouch("b"), jobs.ErrQueueFull)
}
