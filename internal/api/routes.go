package api

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}
	if s.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.StaticDir))))
		r.Get("/placeholder.svg", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(s.StaticDir, "placeholder.svg"))
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(s.visitorMiddleware)

		r.Get("/", s.handleHome)
		r.Get("/boxes", s.handleBoxes)
		r.Get("/reason/{id}", s.handleReason)
		r.Get("/gallery", s.handleGallery)
		r.Get("/game", s.handleGame)
		r.Get("/game/state", s.handleGameState)
		r.Post("/game/flip/{cardID}", s.handleGameFlip)
		r.Post("/game/reset", s.handleGameReset)
		r.Post("/game/score", s.handleGameScore)
		r.Get("/preferences", s.handlePreferences)
		r.Post("/preferences/volume", s.handleSetVolume)
		r.Post("/preferences/song", s.handleSetSong)
		r.Post("/feedback", s.handleFeedback)

		r.Route("/api", func(r chi.Router) {
			r.Get("/gallery/images", s.handleAPIGallery)
			r.Get("/reasons/count", s.handleAPIReasonCount)
			r.Get("/reasons/{id}", s.handleAPIReason)
			r.Get("/highscores", s.handleAPIHighscores)
			r.Post("/highscores", s.handleAPISubmitHighscore)
			r.Post("/feedback", s.handleFeedback)
		})
	})

	return r
}
