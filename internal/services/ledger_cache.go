package services

import (
	"sync"
	"time"

	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/ledger"
)

// LedgerProvider returns the unlock ledger of a visitor.
type LedgerProvider interface {
	Ledger(visitorID string) *ledger.Ledger
}

type cachedLedger struct {
	ledger   *ledger.Ledger
	lastUsed time.Time
}

// LedgerCache keeps one Ledger per active visitor so the ledger mutex and
// its subscribers outlive a single request. Progress lives in the backend,
// so an evicted ledger is rebuilt unchanged on the next request.
type LedgerCache struct {
	backend kvstore.Backend
	clock   clock.Clock
	opts    []ledger.Option

	mu      sync.Mutex
	ledgers map[string]*cachedLedger
}

// NewLedgerCache creates ledgers on demand, each scoped to the visitor's
// namespace of backend. c tracks idle time for Prune.
func NewLedgerCache(backend kvstore.Backend, c clock.Clock, opts ...ledger.Option) *LedgerCache {
	if c == nil {
		c = clock.Real{}
	}
	return &LedgerCache{
		backend: backend,
		clock:   c,
		opts:    opts,
		ledgers: map[string]*cachedLedger{},
	}
}

func (c *LedgerCache) Ledger(visitorID string) *ledger.Ledger {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.ledgers[visitorID]
	if !ok {
		entry = &cachedLedger{ledger: ledger.New(kvstore.Scope(c.backend, visitorID), c.opts...)}
		c.ledgers[visitorID] = entry
	}
	entry.lastUsed = c.clock.Now()
	return entry.ledger
}

// Prune drops ledgers unused for maxIdle and returns how many it removed.
func (c *LedgerCache) Prune(maxIdle time.Duration) int {
	cutoff := c.clock.Now().Add(-maxIdle)

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for visitor, entry := range c.ledgers {
		if entry.lastUsed.Before(cutoff) {
			delete(c.ledgers, visitor)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached ledgers.
func (c *LedgerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ledgers)
}
