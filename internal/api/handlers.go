package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/jobs"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/services"
)

// Pinger reports database health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Reasons     services.ReasonService
	Gallery     services.GalleryService
	Highscores  services.HighscoreService
	Games       services.GameService
	Feedback    services.FeedbackService
	Preferences services.PreferencesService
	Jobs        jobs.JobQueue
	Metrics     *metrics.Metrics
	DB          Pinger
	Templates   *template.Template
	StaticDir   string

	SecureCookies bool
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	if _, ok := data["audio"]; !ok && s.Preferences != nil {
		data["audio"] = s.Preferences.Audio(r.Context(), visitorFromContext(r.Context()))
	}

	log := logger.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads at most 64KiB of JSON into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

// wantsJSON reports whether the request came from script rather than a form.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
