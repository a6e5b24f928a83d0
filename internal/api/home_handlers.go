package api

import (
	"net/http"

	"github.com/vytor/valentine/internal/logger"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("rendering home page")

	boxes := s.Reasons.Boxes(r.Context(), visitorFromContext(r.Context()))
	s.render(w, r, "pages/home.html", pageData{
		"boxes": boxes,
	})
}

// handleBoxes serves the box views polled by the home page countdowns.
func (s *Server) handleBoxes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Reasons.Boxes(r.Context(), visitorFromContext(r.Context())))
}
