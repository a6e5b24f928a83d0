package services

import (
	"context"
	"time"

	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
	"github.com/vytor/valentine/internal/timefmt"
)

// DefaultReasonCount is used when the reason count cannot be fetched.
const DefaultReasonCount = 9

// BoxView is how the home page renders one reason box.
type BoxView struct {
	ID             int    `json:"id"`
	Unlocked       bool   `json:"unlocked"`
	Opened         bool   `json:"opened"`
	HasActiveTimer bool   `json:"hasActiveTimer"`
	RemainingMs    *int64 `json:"remainingMs"` // nil while the unlock is unscheduled
	Countdown      string `json:"countdown"`
	UnlocksAt      string `json:"unlocksAt,omitempty"`
}

// ReasonService handles reasons and the unlock progress gating them
type ReasonService interface {
	Count(ctx context.Context) int
	Get(ctx context.Context, id int) models.Reason
	Boxes(ctx context.Context, visitorID string) []BoxView
	Open(ctx context.Context, visitorID string, id int) (models.Reason, error)
}

type reasonService struct {
	reasons       repository.ReasonRepository
	ledgers       LedgerProvider
	metrics       *metrics.Metrics
	fallbackCount int
}

// NewReasonService creates a new ReasonService. fallbackCount values below
// one select DefaultReasonCount.
func NewReasonService(reasons repository.ReasonRepository, ledgers LedgerProvider, m *metrics.Metrics, fallbackCount int) ReasonService {
	if fallbackCount < 1 {
		fallbackCount = DefaultReasonCount
	}
	return &reasonService{reasons: reasons, ledgers: ledgers, metrics: m, fallbackCount: fallbackCount}
}

// Count returns the number of reasons, or the fallback count when the
// content source fails.
func (s *reasonService) Count(ctx context.Context) int {
	log := logger.FromContext(ctx).WithPrefix("reasons")

	count, err := s.reasons.Count(ctx)
	if err != nil {
		log.Warn("failed to fetch reason count, using fallback %d: %v", s.fallbackCount, err)
		s.metrics.Fallback("reason_count")
		return s.fallbackCount
	}
	return count
}

// Get returns the reason, or an empty one when it is unknown or the
// content source fails.
func (s *reasonService) Get(ctx context.Context, id int) models.Reason {
	log := logger.FromContext(ctx).WithPrefix("reasons")

	reason, err := s.reasons.Get(ctx, id)
	if err != nil {
		log.Warn("failed to fetch reason %d: %v", id, err)
		s.metrics.Fallback("reason")
		return models.Reason{ID: id}
	}
	if reason == nil {
		log.Debug("reason %d not found", id)
		return models.Reason{ID: id}
	}
	return *reason
}

// Boxes seeds the visitor's ledger with the current reason count and
// describes every box.
func (s *reasonService) Boxes(ctx context.Context, visitorID string) []BoxView {
	log := logger.FromContext(ctx).WithPrefix("reasons")

	count := s.Count(ctx)
	l := s.ledgers.Ledger(visitorID)
	if err := l.Seed(ctx, count); err != nil {
		log.Warn("failed to seed unlock progress: %v", err)
	}

	views := make([]BoxView, 0, count)
	for id := 1; id <= count; id++ {
		v := BoxView{ID: id, Unlocked: l.IsUnlocked(ctx, id)}
		if st, ok := l.State(ctx, id); ok {
			v.Opened = st.Opened()
		}
		remaining, finite := l.RemainingTime(ctx, id)
		if finite {
			ms := remaining.Milliseconds()
			v.RemainingMs = &ms
		}
		if at, ok := l.UnlockTime(ctx, id); ok {
			v.UnlocksAt = timefmt.Display(at)
		}
		v.HasActiveTimer = !v.Unlocked && finite && remaining > 0
		v.Countdown = timefmt.Remaining(remaining, finite)
		views = append(views, v)
	}
	return views
}

// Open loads a reason for display after checking that its box is
// unlocked. A successfully loaded reason marks the box opened, which
// schedules the next box.
func (s *reasonService) Open(ctx context.Context, visitorID string, id int) (models.Reason, error) {
	log := logger.FromContext(ctx).WithPrefix("reasons").WithField("box_id", id)

	if id < 1 {
		return models.Reason{}, errors.NewNotFoundError("reason", id)
	}

	l := s.ledgers.Ledger(visitorID)
	if err := l.Seed(ctx, s.Count(ctx)); err != nil {
		log.Warn("failed to seed unlock progress: %v", err)
	}
	if !l.IsUnlocked(ctx, id) {
		remaining, finite := l.RemainingTime(ctx, id)
		log.Debug("box locked, remaining=%s", timefmt.Remaining(remaining.Truncate(time.Second), finite))
		return models.Reason{}, errors.NewNotFoundError("reason", id)
	}

	reason := s.Get(ctx, id)
	if reason.Empty() {
		// Not shown, so not opened.
		return reason, nil
	}

	changed, err := l.MarkOpened(ctx, id)
	if err != nil {
		log.Error("failed to record opened box: %v", err)
	} else if changed {
		log.Info("box opened")
		s.metrics.BoxOpened()
	}
	return reason, nil
}
