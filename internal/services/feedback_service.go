package services

import (
	"context"

	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

// FeedbackService records answers to the "did you like it?" dialog
type FeedbackService interface {
	Submit(ctx context.Context, visitorID string, sub models.FeedbackSubmission) error
	Tally(ctx context.Context) (map[string]int, error)
}

type feedbackService struct {
	repo    repository.FeedbackRepository
	metrics *metrics.Metrics
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(repo repository.FeedbackRepository, m *metrics.Metrics) FeedbackService {
	return &feedbackService{repo: repo, metrics: m}
}

func (s *feedbackService) Submit(ctx context.Context, visitorID string, sub models.FeedbackSubmission) error {
	log := logger.FromContext(ctx).WithPrefix("feedback")

	if err := validateStruct(sub); err != nil {
		return err
	}
	if _, err := s.repo.Insert(ctx, models.Feedback{VisitorID: visitorID, Answer: sub.Answer}); err != nil {
		log.Error("failed to store feedback: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("feedback recorded: %s", sub.Answer)
	s.metrics.Feedback(sub.Answer)
	return nil
}

func (s *feedbackService) Tally(ctx context.Context) (map[string]int, error) {
	tally, err := s.repo.Tally(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return tally, nil
}
