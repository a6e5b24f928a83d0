package api

import (
	"net/http"

	"github.com/vytor/valentine/internal/models"
)

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	items := s.Gallery.List(r.Context())

	var images, videos []models.GalleryItem
	for _, it := range items {
		if it.Type == models.MediaVideo {
			videos = append(videos, it)
		} else {
			images = append(images, it)
		}
	}

	s.render(w, r, "pages/gallery.html", pageData{
		"title":  "Gallery",
		"images": images,
		"videos": videos,
		"empty":  len(items) == 0,
	})
}

func (s *Server) handleAPIGallery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Gallery.List(r.Context()))
}
