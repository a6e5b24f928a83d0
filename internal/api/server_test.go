package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/config"
	"github.com/vytor/valentine/internal/db"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/ledger"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository/sqlite"
	"github.com/vytor/valentine/internal/services"
	"github.com/vytor/valentine/internal/testutil"
	"github.com/vytor/valentine/internal/testutil/mocks"
)

type testEnv struct {
	server  *Server
	handler http.Handler
	db      *sql.DB
	clock   *clock.Fake
	jobs    *mocks.MockJobQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.NewTestDB(t)
	t.Cleanup(func() { _ = conn.Close() })

	tmpl, err := LoadTemplates(os.DirFS("../../web/templates"))
	require.NoError(t, err)

	fake := clock.NewFake(time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC))
	kv := sqlite.NewKVRepository(conn)
	m := metrics.New()

	jobs := new(mocks.MockJobQueue)
	jobs.On("EnqueueVisitorTouch", mock.Anything).Return(nil)

	gallery := services.NewGalleryService(sqlite.NewGalleryRepository(conn), kvstore.Scope(kv, "site"), nil, fake, time.Hour, m)
	highscores := services.NewHighscoreService(sqlite.NewHighscoreRepository(conn), m)
	games := services.NewGameService(gallery, highscores, m, fake)
	t.Cleanup(games.Close)

	srv := &Server{
		Reasons:     services.NewReasonService(sqlite.NewReasonRepository(conn), services.NewLedgerCache(kv, fake, ledger.WithClock(fake)), m, 9),
		Gallery:     gallery,
		Highscores:  highscores,
		Games:       games,
		Feedback:    services.NewFeedbackService(sqlite.NewFeedbackRepository(conn), m),
		Preferences: services.NewPreferencesService(kv, []config.Song{{ID: 1, Title: "Our Song", URL: "/static/song.mp3"}, {ID: 2, Title: "Second", URL: "/static/two.mp3"}}),
		Jobs:        jobs,
		Metrics:     m,
		DB:          &db.DB{DB: conn},
		Templates:   tmpl,
	}
	return &testEnv{server: srv, handler: srv.Routes(), db: conn, clock: fake, jobs: jobs}
}

func (e *testEnv) do(t *testing.T, req *http.Request, visitor string) *httptest.ResponseRecorder {
	t.Helper()
	if visitor != "" {
		req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: visitor})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.db.Close())
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVisitorCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/boxes", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, visitorCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/boxes", nil), cookies[0].Value)
	assert.Empty(t, rec.Result().Cookies(), "valid cookie is kept")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/boxes", nil), "not-a-uuid")
	assert.Len(t, rec.Result().Cookies(), 1, "malformed cookie is replaced")

	env.jobs.AssertCalled(t, "EnqueueVisitorTouch", cookies[0].Value)
}

func TestHomeAndReasonFlow(t *testing.T) {
	env := newTestEnv(t)
	visitor := uuid.NewString()

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/reason/1"`)
	assert.NotContains(t, body, `href="/reason/2"`)
	assert.Contains(t, body, "Locked")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/reason/2", nil), visitor)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/reason/abc", nil), visitor)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/reason/1", nil), visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your smile")

	boxes := decode[[]services.BoxView](t, env.do(t, httptest.NewRequest(http.MethodGet, "/boxes", nil), visitor))
	require.Len(t, boxes, 9)
	assert.True(t, boxes[0].Opened)
	assert.False(t, boxes[1].Unlocked)
	require.NotNil(t, boxes[1].RemainingMs)
	assert.Equal(t, (24 * time.Hour).Milliseconds(), *boxes[1].RemainingMs)
	assert.Equal(t, "24h 0m 0s", boxes[1].Countdown)
	assert.Nil(t, boxes[2].RemainingMs)

	env.clock.Advance(24 * time.Hour)
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/reason/2", nil), visitor)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIReasons(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/reasons/count", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReasonCount{Count: 9}, decode[models.ReasonCount](t, rec))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/reasons/3", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[models.Reason](t, rec).ID)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/reasons/99", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/reasons/zero", nil), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIGallery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/gallery/images", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.GalleryItem](t, rec), 7)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/gallery", nil), uuid.NewString())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/static/videos/1.mp4")
	assert.Contains(t, rec.Body.String(), `action="/feedback"`)
}

func TestAPIHighscores(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/highscores", `{"playerName":"  Ana ","moves":8}`), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[models.HighscoreResult](t, rec)
	assert.Equal(t, services.HighscoreSavedMessage, result.Message)
	assert.Equal(t, "Ana", result.Score.PlayerName)

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/highscores", `{"playerName":"Bo","moves":2}`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/highscores", `{"playerName":"Bo","moves":8,"cheat":true}`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/highscores", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	scores := decode[[]models.Highscore](t, rec)
	require.Len(t, scores, 1)
	assert.Equal(t, 8, scores[0].Moves)
}

func TestFeedback(t *testing.T) {
	env := newTestEnv(t)
	visitor := uuid.NewString()

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/feedback", `{"answer":"yes"}`), visitor)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, formRequest("/feedback", url.Values{"answer": {"no"}, "redirect": {"/gallery"}}), visitor)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/gallery", rec.Header().Get("Location"))

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/feedback", `{"answer":"maybe"}`), visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tally, err := env.server.Feedback.Tally(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, tally["yes"])
	assert.Equal(t, 1, tally["no"])
}

func TestPreferences(t *testing.T) {
	env := newTestEnv(t)
	visitor := uuid.NewString()

	settings := decode[services.AudioSettings](t, env.do(t, httptest.NewRequest(http.MethodGet, "/preferences", nil), visitor))
	assert.Equal(t, 0.5, settings.Volume)

	rec := env.do(t, formRequest("/preferences/volume", url.Values{"volume": {"30"}, "redirect": {"//evil.example"}}), visitor)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"), "off-site redirects are dropped")

	rec = env.do(t, jsonRequest(http.MethodPost, "/preferences/song", `{"songId":2}`), visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	settings = decode[services.AudioSettings](t, rec)
	assert.InDelta(t, 0.3, settings.Volume, 1e-9)
	assert.True(t, settings.HasSong)
	assert.Equal(t, "Second", settings.Song.Title)

	rec = env.do(t, jsonRequest(http.MethodPost, "/preferences/song", `{"songId":42}`), visitor)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, jsonRequest(http.MethodPost, "/preferences/volume", `{}`), visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), visitor)
	assert.Contains(t, rec.Body.String(), "/static/two.mp3")
}

func TestGameFlow(t *testing.T) {
	env := newTestEnv(t)
	visitor := uuid.NewString()

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/game", nil), visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/game/flip/0-a"`)

	type flipResponse struct {
		Accepted bool              `json:"accepted"`
		Game     services.GameView `json:"game"`
	}

	flip := decode[flipResponse](t, env.do(t, jsonRequest(http.MethodPost, "/game/flip/0-a", ""), visitor))
	assert.True(t, flip.Accepted)
	assert.Equal(t, 1, flip.Game.Moves)

	flip = decode[flipResponse](t, env.do(t, jsonRequest(http.MethodPost, "/game/flip/0-a", ""), visitor))
	assert.False(t, flip.Accepted, "a flipped card cannot be flipped again")

	rec = env.do(t, jsonRequest(http.MethodPost, "/game/score", `{"playerName":"Ana"}`), visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "score needs a won game")

	rec = env.do(t, formRequest("/game/score", url.Values{"playerName": {"Ana"}}), visitor)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/game?error=score", rec.Header().Get("Location"))

	rec = env.do(t, formRequest("/game/reset", nil), visitor)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	state := decode[services.GameView](t, env.do(t, httptest.NewRequest(http.MethodGet, "/game/state", nil), visitor))
	assert.Equal(t, 0, state.Moves)
	assert.True(t, state.ShowResetNotice)
	assert.Len(t, state.Cards, 12)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/game", nil), visitor)
	assert.Contains(t, rec.Body.String(), `http-equiv="refresh"`)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, httptest.NewRequest(http.MethodGet, "/api/reasons/count", nil), "")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `valentine_http_requests_total{method="GET",route="/api/reasons/count",status_code="200"} 1`)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
