package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/services"
)

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Preferences.Audio(r.Context(), visitorFromContext(r.Context())))
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Volume *float64 `json:"volume"`
	}
	if wantsJSON(r) {
		if err := decodeJSON(w, r, &in); err != nil {
			handleError(w, r, err)
			return
		}
	} else if raw := r.FormValue("volume"); raw != "" {
		// Range inputs post whole percentages.
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			handleError(w, r, errors.NewValidationError("volume", "must be a number"))
			return
		}
		v := pct / 100
		in.Volume = &v
	}
	if in.Volume == nil {
		handleError(w, r, errors.NewValidationError("volume", "is required"))
		return
	}

	settings, err := s.Preferences.SetVolume(r.Context(), visitorFromContext(r.Context()), *in.Volume)
	s.respondPreferences(w, r, settings, err)
}

func (s *Server) handleSetSong(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SongID int `json:"songId"`
	}
	if wantsJSON(r) {
		if err := decodeJSON(w, r, &in); err != nil {
			handleError(w, r, err)
			return
		}
	} else {
		id, err := strconv.Atoi(r.FormValue("songId"))
		if err != nil {
			handleError(w, r, errors.NewValidationError("songId", "must be an integer"))
			return
		}
		in.SongID = id
	}

	settings, err := s.Preferences.SetSong(r.Context(), visitorFromContext(r.Context()), in.SongID)
	s.respondPreferences(w, r, settings, err)
}

func (s *Server) respondPreferences(w http.ResponseWriter, r *http.Request, settings services.AudioSettings, err error) {
	if err != nil {
		handleError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, settings)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-site page to return to after a form post.
func backTo(r *http.Request) string {
	if ref := r.FormValue("redirect"); len(ref) > 1 && ref[0] == '/' && ref[1] != '/' && ref[1] != '\\' {
		return ref
	}
	return "/"
}
