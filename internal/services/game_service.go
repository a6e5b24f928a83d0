package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/memorygame"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/models"
)

// CardView is a card as the player may see it: face-down cards hide their
// image.
type CardView struct {
	ID        string `json:"id"`
	ImageKey  string `json:"imageKey,omitempty"`
	IsFlipped bool   `json:"isFlipped"`
	IsMatched bool   `json:"isMatched"`
}

// GameView is the rendered state of a visitor's game session.
type GameView struct {
	SessionID         string             `json:"sessionId"`
	State             memorygame.State   `json:"state"`
	Cards             []CardView         `json:"cards"`
	Moves             int                `json:"moves"`
	Matches           int                `json:"matches"`
	IsProcessing      bool               `json:"isProcessing"`
	GameWon           bool               `json:"gameWon"`
	IsSubmittingScore bool               `json:"isSubmittingScore"`
	ScoreSubmitted    bool               `json:"scoreSubmitted"`
	ShowResetNotice   bool               `json:"showResetNotification"`
	Highscores        []models.Highscore `json:"highscores,omitempty"`
}

// GameService runs one memory game session per visitor
type GameService interface {
	View(ctx context.Context, visitorID string) GameView
	Flip(ctx context.Context, visitorID, cardID string) (GameView, bool)
	Reset(ctx context.Context, visitorID string) GameView
	SubmitScore(ctx context.Context, visitorID, playerName string) (*models.HighscoreResult, error)
	Prune(maxIdle time.Duration) int
	Close()
}

type gameSession struct {
	id       string
	game     *memorygame.Game
	lastUsed time.Time
}

type gameService struct {
	gallery    GalleryService
	highscores HighscoreService
	metrics    *metrics.Metrics
	clock      clock.Clock
	opts       []memorygame.Option

	mu       sync.Mutex
	sessions map[string]*gameSession
}

// NewGameService creates a new GameService. opts configure every new game.
func NewGameService(gallery GalleryService, highscores HighscoreService, m *metrics.Metrics, c clock.Clock, opts ...memorygame.Option) GameService {
	if c == nil {
		c = clock.Real{}
	}
	return &gameService{
		gallery:    gallery,
		highscores: highscores,
		metrics:    m,
		clock:      c,
		opts:       opts,
		sessions:   map[string]*gameSession{},
	}
}

// session returns the visitor's session, dealing a new game on first use.
// A session is only published once dealt.
func (s *gameService) session(ctx context.Context, visitorID string) *gameSession {
	s.mu.Lock()
	if sess, ok := s.sessions[visitorID]; ok {
		sess.lastUsed = s.clock.Now()
		s.mu.Unlock()
		return sess
	}
	s.mu.Unlock()

	// Dealt unlocked: the image pool may call the content backend.
	game := memorygame.New(append([]memorygame.Option{memorygame.WithClock(s.clock)}, s.opts...)...)
	game.Deal(s.gallery.ImagePool(ctx))

	s.mu.Lock()
	if sess, ok := s.sessions[visitorID]; ok {
		sess.lastUsed = s.clock.Now()
		s.mu.Unlock()
		game.Close()
		return sess
	}
	sess := &gameSession{id: uuid.NewString(), game: game, lastUsed: s.clock.Now()}
	s.sessions[visitorID] = sess
	s.mu.Unlock()

	logger.FromContext(ctx).WithPrefix("game").WithField("session_id", sess.id).Debug("new game session")
	return sess
}

func (s *gameService) View(ctx context.Context, visitorID string) GameView {
	sess := s.session(ctx, visitorID)
	return s.view(ctx, sess, sess.game.Snapshot())
}

// Flip reports false when the flip was ignored.
func (s *gameService) Flip(ctx context.Context, visitorID, cardID string) (GameView, bool) {
	sess := s.session(ctx, visitorID)
	before := sess.game.Snapshot()
	snap, ok := sess.game.Flip(cardID)
	if ok && !before.GameWon && snap.GameWon {
		logger.FromContext(ctx).WithPrefix("game").WithField("session_id", sess.id).Info("game won in %d moves", snap.Moves)
		s.metrics.GameWon()
	}
	return s.view(ctx, sess, snap), ok
}

// Reset reshuffles the images of the current deal.
func (s *gameService) Reset(ctx context.Context, visitorID string) GameView {
	sess := s.session(ctx, visitorID)
	return s.view(ctx, sess, sess.game.Reset())
}

func (s *gameService) SubmitScore(ctx context.Context, visitorID, playerName string) (*models.HighscoreResult, error) {
	log := logger.FromContext(ctx).WithPrefix("game")
	sess := s.session(ctx, visitorID)

	sub, err := sess.game.BeginSubmit()
	switch {
	case stderrors.Is(err, memorygame.ErrNotWon):
		return nil, errors.NewBadRequestError(err.Error())
	case err != nil:
		return nil, errors.NewConflictError(err.Error())
	}

	result, err := s.highscores.Submit(ctx, models.HighscoreSubmission{PlayerName: playerName, Moves: sub.Moves})
	sess.game.FinishSubmit(sub, err)
	if err != nil {
		log.Warn("highscore submission failed: %v", err)
		return nil, err
	}
	return result, nil
}

// Prune closes sessions unused for maxIdle and returns how many it removed.
func (s *gameService) Prune(maxIdle time.Duration) int {
	cutoff := s.clock.Now().Add(-maxIdle)

	s.mu.Lock()
	var stale []*gameSession
	for visitor, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, visitor)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.game.Close()
	}
	return len(stale)
}

// Close ends every session.
func (s *gameService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]*gameSession{}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.game.Close()
	}
}

func (s *gameService) view(ctx context.Context, sess *gameSession, snap memorygame.Snapshot) GameView {
	cards := make([]CardView, len(snap.Cards))
	for i, c := range snap.Cards {
		cards[i] = CardView{ID: c.ID, IsFlipped: c.IsFlipped, IsMatched: c.IsMatched}
		if c.IsFlipped || c.IsMatched {
			cards[i].ImageKey = c.ImageKey
		}
	}
	v := GameView{
		SessionID:         sess.id,
		State:             snap.State,
		Cards:             cards,
		Moves:             snap.Moves,
		Matches:           snap.Matches,
		IsProcessing:      snap.IsProcessing,
		GameWon:           snap.GameWon,
		IsSubmittingScore: snap.IsSubmittingScore,
		ScoreSubmitted:    snap.ScoreSubmitted,
		ShowResetNotice:   snap.ShowResetNotice,
	}
	// The leaderboard is only shown on load and once the game is won.
	if !snap.GameWon && snap.Moves > 0 {
		return v
	}
	v.Highscores = s.highscores.List(ctx)
	return v
}
