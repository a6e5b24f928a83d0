package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/valentine/internal/clock"
)

func TestFake_AdvanceRunsTimersInOrder(t *testing.T) {
	start := time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)
	c := clock.NewFake(start)

	var order []string
	c.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	c.AfterFunc(time.Second, func() { order = append(order, "first") })
	c.AfterFunc(5*time.Second, func() { order = append(order, "late") })

	c.Advance(3 * time.Second)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, start.Add(3*time.Second), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestFake_StopCancels(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Minute)

	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFake_TimerScheduledFromCallback(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(2 * time.Second)

	assert.Equal(t, 2, count)
}

func TestFake_StopAfterFire(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	timer := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)
	assert.False(t, timer.Stop())
}
