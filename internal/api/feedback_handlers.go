package api

import (
	"net/http"

	"github.com/vytor/valentine/internal/models"
)

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var sub models.FeedbackSubmission
	if wantsJSON(r) {
		if err := decodeJSON(w, r, &sub); err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		sub.Answer = r.FormValue("answer")
	}

	if err := s.Feedback.Submit(r.Context(), visitorFromContext(r.Context()), sub); err != nil {
		handleError(w, r, err)
		return
	}
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}
