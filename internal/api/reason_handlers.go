package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
)

// handleReason shows an unlocked reason. Locked boxes and invalid ids go
// back to the home page.
func (s *Server) handleReason(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Debug("invalid reason id %q, redirecting home", chi.URLParam(r, "id"))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	reason, err := s.Reasons.Open(r.Context(), visitorFromContext(r.Context()), id)
	if err != nil {
		log.Debug("reason %d not available: %v", id, err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.render(w, r, "pages/reason.html", pageData{
		"title":  "Reason",
		"reason": reason,
		"empty":  reason.Empty(),
	})
}

func (s *Server) handleAPIReasonCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, models.ReasonCount{Count: s.Reasons.Count(r.Context())})
}

func (s *Server) handleAPIReason(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		handleError(w, r, errors.NewBadRequestError("invalid reason id"))
		return
	}

	reason := s.Reasons.Get(r.Context(), id)
	if reason.Empty() {
		handleError(w, r, errors.NewNotFoundError("reason", id))
		return
	}
	writeJSON(w, r, http.StatusOK, reason)
}
