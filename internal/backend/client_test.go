package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/backend"
	"github.com/vytor/valentine/internal/models"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reasons/count", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 5})
	})
	mux.HandleFunc("GET /api/reasons/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "2" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(models.Reason{ID: 2, Text: "your laugh", ImageURL: "/2.jpg"})
	})
	mux.HandleFunc("GET /api/gallery/images", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"url":"/1.jpg","alt":"one"},
			{"id":2,"url":"/clip.mp4","type":"video","thumbnail":"/t.jpg"},
			{"id":3,"url":"/3.jpg","type":"image"}
		]`))
	})
	mux.HandleFunc("GET /api/highscores", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"playerName":"a","moves":7},{"playerName":"b","moves":9}]`))
	})
	mux.HandleFunc("POST /api/highscores", func(w http.ResponseWriter, r *http.Request) {
		var in models.HighscoreSubmission
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.HighscoreResult{
			Message: "saved",
			Score:   models.Highscore{ID: 11, PlayerName: in.PlayerName, Moves: in.Moves},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Reasons(t *testing.T) {
	srv := newServer(t)
	c := backend.New(srv.URL+"/api/", backend.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	reason, err := c.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, reason)
	assert.Equal(t, "your laugh", reason.Text)

	missing, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClient_GalleryDefaultsAndFilter(t *testing.T) {
	srv := newServer(t)
	c := backend.New(srv.URL+"/api", backend.WithHTTPClient(srv.Client()))

	all, err := c.List(context.Background(), models.GalleryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.MediaImage, all[0].Type, "missing type means image")

	images, err := c.List(context.Background(), models.GalleryFilter{Type: models.MediaImage})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "/1.jpg", images[0].URL)
	assert.Equal(t, "/3.jpg", images[1].URL)
}

func TestClient_Highscores(t *testing.T) {
	srv := newServer(t)
	c := backend.New(srv.URL+"/api", backend.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	scores, err := c.Highscores().List(ctx, models.HighscoreFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "a", scores[0].PlayerName)

	saved, err := c.Highscores().Insert(ctx, models.Highscore{PlayerName: "c", Moves: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(11), saved.ID)
	assert.Equal(t, 12, saved.Moves)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))
	_, err := c.Count(context.Background())

	var statusErr *backend.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := backend.New(url).List(context.Background(), models.GalleryFilter{})
	assert.Error(t, err)
}
