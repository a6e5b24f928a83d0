package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/ledger"
	"github.com/vytor/valentine/internal/services"
)

func TestLedgerCache_PruneDropsIdleLedgers(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Date(2025, 2, 7, 4, 0, 0, 0, time.UTC))
	cache := services.NewLedgerCache(kvstore.NewMemory(), fake, ledger.WithClock(fake))

	idle := cache.Ledger("idle")
	require.NoError(t, idle.Seed(ctx, 3))
	_, err := idle.MarkOpened(ctx, 1)
	require.NoError(t, err)

	fake.Advance(90 * time.Minute)
	active := cache.Ledger("active")
	assert.Same(t, active, cache.Ledger("active"))
	assert.Equal(t, 2, cache.Len())

	fake.Advance(time.Hour)
	assert.Equal(t, 1, cache.Prune(2*time.Hour))
	assert.Equal(t, 1, cache.Len())
	assert.Same(t, active, cache.Ledger("active"), "recently used ledger is kept")

	rebuilt := cache.Ledger("idle")
	assert.NotSame(t, idle, rebuilt)
	st, ok := rebuilt.State(ctx, 1)
	require.True(t, ok)
	assert.True(t, st.Opened(), "progress survives eviction")
}

func TestLedgerCache_PruneEmpty(t *testing.T) {
	cache := services.NewLedgerCache(kvstore.NewMemory(), clock.NewFake(time.Now()))
	assert.Equal(t, 0, cache.Prune(time.Minute))
}
