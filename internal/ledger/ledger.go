// Package ledger tracks which reason boxes a visitor may open.
//
// Boxes form a linear unlock chain: box 1 is always open, and opening box k
// for the first time schedules box k+1 to unlock one interval later. The
// whole collection is stored as a single JSON document so that every
// mutation is a read-modify-write of the complete state.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/logger"
)

// StorageKey is the key holding the serialized box collection.
const StorageKey = "valentine_box_progress"

// DefaultUnlockInterval separates opening a box from its successor unlocking.
const DefaultUnlockInterval = 24 * time.Hour

// BoxState is the persisted unlock state of one box. Timestamps are
// milliseconds since the Unix epoch.
type BoxState struct {
	BoxID     int    `json:"boxId"`
	OpenedAt  *int64 `json:"openedAt"`
	UnlocksAt *int64 `json:"unlocksAt"`
}

// Opened reports whether the box has been revealed at least once.
func (b BoxState) Opened() bool { return b.OpenedAt != nil }

// Ledger is the unlock state of one visitor. Box ids are dense and start
// at 1.
type Ledger struct {
	store    kvstore.Store
	clock    clock.Clock
	interval time.Duration

	mu      sync.Mutex
	subsMu  sync.Mutex
	subs    map[int]func([]BoxState)
	nextSub int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithUnlockInterval sets the delay between opening a box and its
// successor unlocking.
func WithUnlockInterval(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.interval = d
		}
	}
}

// New returns a Ledger persisting to store.
func New(store kvstore.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		clock:    clock.Real{},
		interval: DefaultUnlockInterval,
		subs:     map[int]func([]BoxState){},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) nowMillis() int64 {
	return l.clock.Now().UnixMilli()
}

func (l *Ledger) load(ctx context.Context) ([]BoxState, bool) {
	var states []BoxState
	if !kvstore.GetJSON(ctx, l.store, StorageKey, &states) {
		return nil, false
	}
	return states, true
}

func (l *Ledger) save(ctx context.Context, states []BoxState) error {
	if err := kvstore.SetJSON(ctx, l.store, StorageKey, states); err != nil {
		return err
	}
	l.notify(states)
	return nil
}

// Seed makes the stored collection hold exactly expectedCount boxes. A
// missing or unreadable collection is created fresh with box 1 unlocked
// now; an existing one is grown with locked boxes or truncated, leaving
// surviving boxes untouched.
func (l *Ledger) Seed(ctx context.Context, expectedCount int) error {
	if expectedCount < 0 {
		expectedCount = 0
	}
	log := logger.FromContext(ctx).WithPrefix("ledger")

	l.mu.Lock()
	defer l.mu.Unlock()

	states, ok := l.load(ctx)
	if !ok {
		now := l.nowMillis()
		states = make([]BoxState, expectedCount)
		for i := range states {
			states[i] = BoxState{BoxID: i + 1}
		}
		if expectedCount > 0 {
			states[0].UnlocksAt = &now
		}
		log.Debug("seeding %d boxes", expectedCount)
		return l.save(ctx, states)
	}

	if len(states) == expectedCount {
		return nil
	}

	log.Debug("resizing ledger from %d to %d boxes", len(states), expectedCount)
	if expectedCount < len(states) {
		states = states[:expectedCount]
	} else {
		for i := len(states); i < expectedCount; i++ {
			states = append(states, BoxState{BoxID: i + 1})
		}
	}
	return l.save(ctx, states)
}

// States returns a copy of the stored collection, empty when unseeded.
func (l *Ledger) States(ctx context.Context) []BoxState {
	states, _ := l.load(ctx)
	return states
}

// State returns the stored state of box id.
func (l *Ledger) State(ctx context.Context, id int) (BoxState, bool) {
	states, _ := l.load(ctx)
	return find(states, id)
}

func find(states []BoxState, id int) (BoxState, bool) {
	if i := indexOf(states, id); i >= 0 {
		return states[i], true
	}
	return BoxState{}, false
}

func indexOf(states []BoxState, id int) int {
	for i, s := range states {
		if s.BoxID == id {
			return i
		}
	}
	return -1
}

// IsUnlocked reports whether box id may be opened. Box 1 is always
// unlocked; unknown boxes never are.
func (l *Ledger) IsUnlocked(ctx context.Context, id int) bool {
	if id == 1 {
		return true
	}
	state, ok := l.State(ctx, id)
	if !ok || state.UnlocksAt == nil {
		return false
	}
	return l.nowMillis() >= *state.UnlocksAt
}

// RemainingTime returns how long until box id unlocks. ok is false when the
// box is unknown or not yet scheduled, meaning the wait is unbounded.
func (l *Ledger) RemainingTime(ctx context.Context, id int) (remaining time.Duration, ok bool) {
	state, found := l.State(ctx, id)
	if !found || state.UnlocksAt == nil {
		return 0, false
	}
	left := *state.UnlocksAt - l.nowMillis()
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * time.Millisecond, true
}

// UnlockTime returns when box id unlocks, if scheduled.
func (l *Ledger) UnlockTime(ctx context.Context, id int) (time.Time, bool) {
	state, found := l.State(ctx, id)
	if !found || state.UnlocksAt == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*state.UnlocksAt), true
}

// MarkOpened records the first reveal of box id and schedules its
// successor. Repeated calls and unknown ids leave the ledger unchanged;
// changed reports whether anything was written.
func (l *Ledger) MarkOpened(ctx context.Context, id int) (changed bool, err error) {
	log := logger.FromContext(ctx).WithPrefix("ledger").WithField("box_id", id)

	l.mu.Lock()
	defer l.mu.Unlock()

	states, _ := l.load(ctx)
	i := indexOf(states, id)
	if i < 0 {
		log.Debug("mark opened on unknown box ignored")
		return false, nil
	}
	if states[i].OpenedAt != nil {
		return false, nil
	}

	now := l.nowMillis()
	states[i].OpenedAt = &now
	if next := indexOf(states, id+1); next >= 0 && states[next].UnlocksAt == nil {
		unlocksAt := now + l.interval.Milliseconds()
		states[next].UnlocksAt = &unlocksAt
		log.Info("box opened, box %d unlocks at %d", id+1, unlocksAt)
	} else {
		log.Info("box opened")
	}

	if err := l.save(ctx, states); err != nil {
		return false, err
	}
	return true, nil
}

// Subscribe registers fn to receive the full collection after every
// persisted mutation. The returned func removes the subscription.
func (l *Ledger) Subscribe(fn func([]BoxState)) (unsubscribe func()) {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.subsMu.Lock()
		delete(l.subs, id)
		l.subsMu.Unlock()
	}
}

func (l *Ledger) notify(states []BoxState) {
	l.subsMu.Lock()
	fns := make([]func([]BoxState), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.subsMu.Unlock()

	for _, fn := range fns {
		snapshot := make([]BoxState, len(states))
		copy(snapshot, states)
		fn(snapshot)
	}
}
