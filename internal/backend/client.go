// Package backend is an HTTP client for a remote content API serving
// reasons, gallery items and highscores. It implements the repository
// interfaces so services can use it in place of the local database.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

// DefaultTimeout bounds every request to the remote API.
const DefaultTimeout = 15 * time.Second

var errNotFound = errors.New("not found")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Path, e.Status, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. with an httptest one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the API rooted at baseURL, for example
// "http://localhost:3000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ repository.ReasonRepository    = (*Client)(nil)
	_ repository.GalleryRepository   = (*Client)(nil)
	_ repository.HighscoreRepository = highscores{}
)

func (c *Client) Count(ctx context.Context) (int, error) {
	var out models.ReasonCount
	if err := c.do(ctx, http.MethodGet, "/reasons/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) Get(ctx context.Context, id int) (*models.Reason, error) {
	var out models.Reason
	err := c.do(ctx, http.MethodGet, "/reasons/"+strconv.Itoa(id), nil, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches the gallery. The remote API has no type filter, so it is
// applied here.
func (c *Client) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryItem, error) {
	var items []models.GalleryItem
	if err := c.do(ctx, http.MethodGet, "/gallery/images", nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Type == "" {
			items[i].Type = models.MediaImage
		}
		items[i].Position = i
	}
	if filter.Type == "" {
		return items, nil
	}
	filtered := items[:0]
	for _, it := range items {
		if it.Type == filter.Type {
			filtered = append(filtered, it)
		}
	}
	return filtered, nil
}

// Highscores exposes the highscore endpoints. Its List differs from the
// gallery List on Client, hence the separate type.
func (c *Client) Highscores() repository.HighscoreRepository { return highscores{c} }

type highscores struct{ c *Client }

func (h highscores) List(ctx context.Context, filter models.HighscoreFilter) ([]models.Highscore, error) {
	var scores []models.Highscore
	if err := h.c.do(ctx, http.MethodGet, "/highscores", nil, &scores); err != nil {
		return nil, err
	}
	if filter.Limit > 0 && len(scores) > filter.Limit {
		scores = scores[:filter.Limit]
	}
	return scores, nil
}

func (h highscores) Insert(ctx context.Context, score models.Highscore) (models.Highscore, error) {
	body := models.HighscoreSubmission{PlayerName: score.PlayerName, Moves: score.Moves}
	var out models.HighscoreResult
	if err := h.c.do(ctx, http.MethodPost, "/highscores", body, &out); err != nil {
		return models.Highscore{}, err
	}
	return out.Score, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	log := logger.FromContext(ctx).WithPrefix("backend").WithField("path", path)

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(raw))
		return &StatusError{Path: path, Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return err
	}
	return nil
}
