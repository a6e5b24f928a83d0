package memorygame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/clock"
)

func TestMismatchTimerReleasedAfterFiring(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC))
	g := New(WithClock(fake))
	defer g.Close()
	g.Deal([]string{"/1.jpg", "/2.jpg"})

	for i := 0; i < 3; i++ {
		_, ok := g.Flip("0-a")
		require.True(t, ok)
		_, ok = g.Flip("1-a")
		require.True(t, ok)

		g.mu.Lock()
		assert.NotNil(t, g.mismatchTimer)
		g.mu.Unlock()

		fake.Advance(DefaultMismatchDelay)

		g.mu.Lock()
		assert.Nil(t, g.mismatchTimer, "fired timer is dropped")
		g.mu.Unlock()
	}
	assert.Equal(t, 0, fake.Pending())
}

func TestResetNoticeTimerReleasedAfterFiring(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC))
	g := New(WithClock(fake))
	defer g.Close()
	g.Deal(nil)

	g.Reset()
	g.Reset()
	assert.Equal(t, 1, fake.Pending(), "a second reset replaces the notice timer")

	fake.Advance(DefaultResetNoticeDelay)
	g.mu.Lock()
	assert.Nil(t, g.noticeTimer)
	g.mu.Unlock()
}
