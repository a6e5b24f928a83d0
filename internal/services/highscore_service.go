package services

import (
	"context"
	"strings"

	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

// HighscoreSavedMessage is returned with every stored score.
const HighscoreSavedMessage = "Highscore saved"

// HighscoreService handles the memory game leaderboard
type HighscoreService interface {
	List(ctx context.Context) []models.Highscore
	Submit(ctx context.Context, sub models.HighscoreSubmission) (*models.HighscoreResult, error)
}

type highscoreService struct {
	repo    repository.HighscoreRepository
	metrics *metrics.Metrics
}

// NewHighscoreService creates a new HighscoreService
func NewHighscoreService(repo repository.HighscoreRepository, m *metrics.Metrics) HighscoreService {
	return &highscoreService{repo: repo, metrics: m}
}

// List returns the leaderboard, or an empty one when the content source
// fails.
func (s *highscoreService) List(ctx context.Context) []models.Highscore {
	scores, err := s.repo.List(ctx, models.HighscoreFilter{})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("highscores").Warn("failed to list highscores: %v", err)
		s.metrics.Fallback("highscores")
		return []models.Highscore{}
	}
	if scores == nil {
		return []models.Highscore{}
	}
	return scores
}

func (s *highscoreService) Submit(ctx context.Context, sub models.HighscoreSubmission) (*models.HighscoreResult, error) {
	log := logger.FromContext(ctx).WithPrefix("highscores")

	sub.PlayerName = strings.TrimSpace(sub.PlayerName)
	if err := validateStruct(sub); err != nil {
		log.Debug("rejected highscore: %v", err)
		return nil, err
	}

	score, err := s.repo.Insert(ctx, models.Highscore{PlayerName: sub.PlayerName, Moves: sub.Moves})
	if err != nil {
		log.Error("failed to store highscore: %v", err)
		return nil, errors.NewUnavailableError(err)
	}

	log.Info("highscore stored: player=%s, moves=%d", score.PlayerName, score.Moves)
	s.metrics.HighscoreSubmitted()
	return &models.HighscoreResult{Message: HighscoreSavedMessage, Score: score}, nil
}
