package services_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/services"
	"github.com/vytor/valentine/internal/testutil/mocks"
)

func TestHighscore_SubmitTrimsName(t *testing.T) {
	repo := new(mocks.MockHighscoreRepository)
	repo.On("Insert", mock.Anything, models.Highscore{PlayerName: "Asha", Moves: 8}).
		Return(models.Highscore{ID: 1, PlayerName: "Asha", Moves: 8}, nil)

	result, err := services.NewHighscoreService(repo, nil).
		Submit(context.Background(), models.HighscoreSubmission{PlayerName: "  Asha ", Moves: 8})
	require.NoError(t, err)
	assert.Equal(t, services.HighscoreSavedMessage, result.Message)
	assert.Equal(t, int64(1), result.Score.ID)
	repo.AssertExpectations(t)
}

func TestHighscore_SubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		sub  models.HighscoreSubmission
	}{
		{name: "blank name", sub: models.HighscoreSubmission{PlayerName: "   ", Moves: 8}},
		{name: "long name", sub: models.HighscoreSubmission{PlayerName: strings.Repeat("x", 33), Moves: 8}},
		{name: "too few moves", sub: models.HighscoreSubmission{PlayerName: "a", Moves: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockHighscoreRepository)
			_, err := services.NewHighscoreService(repo, nil).Submit(context.Background(), tt.sub)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidation), "got %v", err)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestHighscore_ValidationNamesJSONField(t *testing.T) {
	_, err := services.NewHighscoreService(new(mocks.MockHighscoreRepository), nil).
		Submit(context.Background(), models.HighscoreSubmission{Moves: 8})

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "playerName")
}

func TestHighscore_SubmitStorageFailure(t *testing.T) {
	repo := new(mocks.MockHighscoreRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(models.Highscore{}, stderrors.New("503"))

	_, err := services.NewHighscoreService(repo, nil).
		Submit(context.Background(), models.HighscoreSubmission{PlayerName: "a", Moves: 6})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
}

func TestHighscore_ListFallback(t *testing.T) {
	repo := new(mocks.MockHighscoreRepository)
	repo.On("List", mock.Anything, models.HighscoreFilter{}).Return(nil, stderrors.New("down"))

	scores := services.NewHighscoreService(repo, nil).List(context.Background())
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}
