// Package memorygame implements the card-matching game played on the game
// page: six image pairs dealt face down, two flips per move, and a single
// highscore submission once every pair is matched.
package memorygame

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/valentine/internal/clock"
)

const (
	// PairCount is the number of pairs in every deal.
	PairCount = 6

	// PlaceholderKey pads decks when the image pool has too few entries.
	// Each padding pair gets its own fragment so pairs stay distinct.
	PlaceholderKey = "/placeholder.svg"

	// DefaultMismatchDelay is how long a non-matching pair stays face up.
	DefaultMismatchDelay = 800 * time.Millisecond
	// DefaultResetNoticeDelay is how long the reset notification is shown.
	DefaultResetNoticeDelay = time.Second
)

// Errors returned by BeginSubmit.
var (
	// ErrNotWon means the current deal still has unmatched pairs.
	ErrNotWon = errors.New("game is not won yet")
	// ErrSubmitInProgress means another submission for this deal is pending.
	ErrSubmitInProgress = errors.New("score submission already in progress")
	// ErrAlreadySubmitted means this deal's score has been stored.
	ErrAlreadySubmitted = errors.New("score already submitted for this game")
)

// State is the phase of a game session.
type State int

const (
	// Idle is a game that has not been dealt, or has been closed.
	Idle State = iota
	// Dealing is the transient phase while a deck is built.
	Dealing
	// AwaitingFirstFlip waits for the first card of a move.
	AwaitingFirstFlip
	// AwaitingSecondFlip waits for the card completing a move.
	AwaitingSecondFlip
	// Resolving holds a mismatched pair face up until the delay passes.
	Resolving
	// Won means every pair is matched.
	Won
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dealing:
		return "dealing"
	case AwaitingFirstFlip:
		return "awaiting_first_flip"
	case AwaitingSecondFlip:
		return "awaiting_second_flip"
	case Resolving:
		return "resolving"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := Idle; st <= Won; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", text)
}

// Card is one face of the deck. Two cards share each ImageKey.
type Card struct {
	ID        string `json:"id"`
	ImageKey  string `json:"imageKey"`
	IsFlipped bool   `json:"isFlipped"`
	IsMatched bool   `json:"isMatched"`
}

// Snapshot is a copy of the session state safe to render or encode.
type Snapshot struct {
	Generation        uint64   `json:"generation"`
	State             State    `json:"state"`
	Cards             []Card   `json:"cards"`
	FlippedCards      []string `json:"flippedCards"`
	Moves             int      `json:"moves"`
	Matches           int      `json:"matches"`
	IsProcessing      bool     `json:"isProcessing"`
	GameWon           bool     `json:"gameWon"`
	IsSubmittingScore bool     `json:"isSubmittingScore"`
	ScoreSubmitted    bool     `json:"scoreSubmitted"`
	ShowResetNotice   bool     `json:"showResetNotification"`
}

// Submission identifies a highscore submission begun for one deal.
type Submission struct {
	Moves      int
	generation uint64
}

// Game is one player's session. All methods are safe for concurrent use;
// timer callbacks tagged with a superseded generation are dropped.
type Game struct {
	clock            clock.Clock
	rng              *rand.Rand
	mismatchDelay    time.Duration
	resetNoticeDelay time.Duration

	mu          sync.Mutex
	pool        []string
	cards       []Card
	flipped     []int
	moves       int
	matches     int
	state       State
	processing  bool
	submitting  bool
	submitted   bool
	resetNotice bool
	generation  uint64

	mismatchTimer clock.Timer
	noticeTimer   clock.Timer

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// Option configures a Game.
type Option func(*Game)

// WithClock replaces the system clock used for delayed transitions.
func WithClock(c clock.Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithRand sets the shuffle source.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithMismatchDelay sets how long a non-matching pair stays face up.
func WithMismatchDelay(d time.Duration) Option {
	return func(g *Game) {
		if d >= 0 {
			g.mismatchDelay = d
		}
	}
}

// WithResetNoticeDelay sets how long the reset notification is shown.
func WithResetNoticeDelay(d time.Duration) Option {
	return func(g *Game) {
		if d >= 0 {
			g.resetNoticeDelay = d
		}
	}
}

// New returns an idle game. Call Deal to start playing.
func New(opts ...Option) *Game {
	g := &Game{
		clock:            clock.Real{},
		rng:              rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		mismatchDelay:    DefaultMismatchDelay,
		resetNoticeDelay: DefaultResetNoticeDelay,
		state:            Idle,
		subs:             map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Deal discards the current deck and deals a fresh shuffled one from pool.
func (g *Game) Deal(pool []string) Snapshot {
	g.mu.Lock()
	g.dealLocked(pool)
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snap)
	return snap
}

func (g *Game) dealLocked(pool []string) {
	g.cancelTimersLocked()
	g.generation++
	g.state = Dealing
	g.pool = append([]string(nil), pool...)

	keys := selectKeys(pool)
	cards := make([]Card, 0, 2*len(keys))
	for i, key := range keys {
		cards = append(cards,
			Card{ID: fmt.Sprintf("%d-a", i), ImageKey: key},
			Card{ID: fmt.Sprintf("%d-b", i), ImageKey: key},
		)
	}
	shuffle(g.rng, cards)

	g.cards = cards
	g.flipped = nil
	g.moves = 0
	g.matches = 0
	g.processing = false
	g.submitting = false
	g.submitted = false
	g.resetNotice = false
	g.state = AwaitingFirstFlip
}

// selectKeys returns the first PairCount distinct non-empty keys of pool,
// padded with distinct placeholder keys.
func selectKeys(pool []string) []string {
	seen := make(map[string]bool, len(pool))
	keys := make([]string, 0, PairCount)
	for _, key := range pool {
		if len(keys) == PairCount {
			break
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	for n := 1; len(keys) < PairCount; n++ {
		key := fmt.Sprintf("%s#%d", PlaceholderKey, n)
		if seen[key] {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// shuffle is an in-place Fisher–Yates shuffle.
func shuffle(rng *rand.Rand, cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Flip turns cardID face up. It reports false, leaving the game unchanged,
// while a mismatch is resolving, when the card is unknown, already face up
// or matched, and when the game is not in play.
func (g *Game) Flip(cardID string) (Snapshot, bool) {
	g.mu.Lock()
	if !g.flipAllowedLocked() {
		snap := g.snapshotLocked()
		g.mu.Unlock()
		return snap, false
	}

	idx := g.indexLocked(cardID)
	if idx < 0 || g.cards[idx].IsFlipped || g.cards[idx].IsMatched {
		snap := g.snapshotLocked()
		g.mu.Unlock()
		return snap, false
	}

	g.cards[idx].IsFlipped = true
	g.flipped = append(g.flipped, idx)

	if len(g.flipped) == 1 {
		g.state = AwaitingSecondFlip
	} else {
		g.moves++
		g.state = Resolving
		g.resolveLocked()
	}

	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snap)
	return snap, true
}

func (g *Game) flipAllowedLocked() bool {
	if g.processing {
		return false
	}
	return g.state == AwaitingFirstFlip || g.state == AwaitingSecondFlip
}

func (g *Game) indexLocked(cardID string) int {
	for i := range g.cards {
		if g.cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

func (g *Game) resolveLocked() {
	a, b := g.flipped[0], g.flipped[1]

	if g.cards[a].ImageKey == g.cards[b].ImageKey {
		g.cards[a].IsMatched = true
		g.cards[b].IsMatched = true
		g.matches++
		g.flipped = nil
		if g.matches == PairCount {
			g.state = Won
		} else {
			g.state = AwaitingFirstFlip
		}
		return
	}

	g.processing = true
	gen := g.generation
	g.mismatchTimer = g.clock.AfterFunc(g.mismatchDelay, func() {
		g.mu.Lock()
		if g.generation != gen {
			g.mu.Unlock()
			return
		}
		g.mismatchTimer = nil
		g.cards[a].IsFlipped = false
		g.cards[b].IsFlipped = false
		g.flipped = nil
		g.processing = false
		g.state = AwaitingFirstFlip
		snap := g.snapshotLocked()
		g.mu.Unlock()

		g.notify(snap)
	})
}

func (g *Game) cancelTimersLocked() {
	for _, t := range []clock.Timer{g.mismatchTimer, g.noticeTimer} {
		if t != nil {
			t.Stop()
		}
	}
	g.mismatchTimer = nil
	g.noticeTimer = nil
}

// Reset redeals from the last pool, clears the win and submission flags and
// shows the reset notification for the configured delay.
func (g *Game) Reset() Snapshot {
	g.mu.Lock()
	g.dealLocked(g.pool)
	g.resetNotice = true

	gen := g.generation
	g.noticeTimer = g.clock.AfterFunc(g.resetNoticeDelay, func() {
		g.mu.Lock()
		if g.generation != gen {
			g.mu.Unlock()
			return
		}
		g.noticeTimer = nil
		g.resetNotice = false
		snap := g.snapshotLocked()
		g.mu.Unlock()

		g.notify(snap)
	})

	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snap)
	return snap
}

// BeginSubmit claims the single highscore submission of a won game.
func (g *Game) BeginSubmit() (Submission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.state != Won:
		return Submission{}, ErrNotWon
	case g.submitting:
		return Submission{}, ErrSubmitInProgress
	case g.submitted:
		return Submission{}, ErrAlreadySubmitted
	}
	g.submitting = true
	return Submission{Moves: g.moves, generation: g.generation}, nil
}

// FinishSubmit records the outcome of a submission. A failed submission may
// be retried; results for a deal that has since been reset are ignored.
func (g *Game) FinishSubmit(sub Submission, err error) {
	g.mu.Lock()
	if sub.generation != g.generation {
		g.mu.Unlock()
		return
	}
	g.submitting = false
	if err == nil {
		g.submitted = true
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snap)
}

// Close cancels pending timers and returns the game to Idle.
func (g *Game) Close() {
	g.mu.Lock()
	g.cancelTimersLocked()
	g.generation++
	g.state = Idle
	g.processing = false
	g.submitting = false
	g.resetNotice = false
	g.mu.Unlock()
}

// Snapshot returns the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	cards := make([]Card, len(g.cards))
	copy(cards, g.cards)
	flipped := make([]string, len(g.flipped))
	for i, idx := range g.flipped {
		flipped[i] = g.cards[idx].ID
	}
	return Snapshot{
		Generation:        g.generation,
		State:             g.state,
		Cards:             cards,
		FlippedCards:      flipped,
		Moves:             g.moves,
		Matches:           g.matches,
		IsProcessing:      g.processing,
		GameWon:           g.state == Won,
		IsSubmittingScore: g.submitting,
		ScoreSubmitted:    g.submitted,
		ShowResetNotice:   g.resetNotice,
	}
}

// Subscribe registers fn to receive a snapshot after every mutation,
// including those driven by timers.
func (g *Game) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	return func() {
		g.subsMu.Lock()
		delete(g.subs, id)
		g.subsMu.Unlock()
	}
}

func (g *Game) notify(snap Snapshot) {
	g.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
