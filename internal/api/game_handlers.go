package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/valentine/internal/logger"
)

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	view := s.Games.View(r.Context(), visitorFromContext(r.Context()))
	data := pageData{
		"title": "Memory Game",
		"game":  view,
		"error": r.URL.Query().Get("error"),
	}
	// Without script, reload until pending timers have resolved.
	if view.IsProcessing || view.ShowResetNotice {
		data["refresh"] = 1
	}
	s.render(w, r, "pages/game.html", data)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Games.View(r.Context(), visitorFromContext(r.Context())))
}

func (s *Server) handleGameFlip(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	view, ok := s.Games.Flip(r.Context(), visitorFromContext(r.Context()), cardID)
	if !ok {
		logger.FromContext(r.Context()).Debug("flip of %s ignored", cardID)
	}

	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, map[string]any{"accepted": ok, "game": view})
		return
	}
	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

func (s *Server) handleGameReset(w http.ResponseWriter, r *http.Request) {
	view := s.Games.Reset(r.Context(), visitorFromContext(r.Context()))
	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, view)
		return
	}
	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

func (s *Server) handleGameScore(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PlayerName string `json:"playerName"`
	}
	if wantsJSON(r) {
		if err := decodeJSON(w, r, &in); err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		in.PlayerName = r.FormValue("playerName")
	}

	result, err := s.Games.SubmitScore(r.Context(), visitorFromContext(r.Context()), in.PlayerName)
	if wantsJSON(r) {
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, result)
		return
	}

	if err != nil {
		logger.FromContext(r.Context()).Debug("score submission rejected: %v", err)
		http.Redirect(w, r, "/game?error=score", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/game", http.StatusSeeOther)
}
