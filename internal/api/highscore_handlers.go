package api

import (
	"net/http"

	"github.com/vytor/valentine/internal/models"
)

func (s *Server) handleAPIHighscores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Highscores.List(r.Context()))
}

func (s *Server) handleAPISubmitHighscore(w http.ResponseWriter, r *http.Request) {
	var sub models.HighscoreSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Highscores.Submit(r.Context(), sub)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}
