package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/valentine/internal/logger"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	APIURL               string
	TemplatesDir         string
	StaticDir            string
	ReasonsFallbackCount int
	UnlockInterval       time.Duration
	MismatchDelay        time.Duration
	ResetNoticeDelay     time.Duration
	GalleryCacheTTL      time.Duration
	WorkerCount          int
	WorkerQueueSize      int
	SecureCookies        bool
	Songs                []Song
}

// Song is one entry of the background music catalogue.
type Song struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:valentine.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		APIURL:               strings.TrimRight(os.Getenv("API_URL"), "/"),
		TemplatesDir:         envOr("TEMPLATES_DIR", "web/templates"),
		StaticDir:            envOr("STATIC_DIR", "web/static"),
		ReasonsFallbackCount: envIntOr("REASONS_FALLBACK_COUNT", 9),
		UnlockInterval:       envDurationOr("UNLOCK_INTERVAL", 24*time.Hour),
		MismatchDelay:        envDurationOr("MISMATCH_DELAY", 800*time.Millisecond),
		ResetNoticeDelay:     envDurationOr("RESET_NOTICE_DELAY", time.Second),
		GalleryCacheTTL:      envDurationOr("GALLERY_CACHE_TTL", 24*time.Hour),
		WorkerCount:          envIntOr("WORKER_COUNT", 2),
		WorkerQueueSize:      envIntOr("WORKER_QUEUE_SIZE", 16),
		SecureCookies:        envBoolOr("SECURE_COOKIES", false),
		Songs:                parseSongs(envOr("SONGS", "1|Our Song|/static/song.mp3")),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.APIURL != "" {
		if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("API_URL %q must be an absolute URL", c.APIURL))
		}
	}
	if c.ReasonsFallbackCount < 1 {
		errs = append(errs, errors.New("REASONS_FALLBACK_COUNT must be at least 1"))
	}
	if c.UnlockInterval <= 0 {
		errs = append(errs, errors.New("UNLOCK_INTERVAL must be positive"))
	}
	if c.MismatchDelay < 0 {
		errs = append(errs, errors.New("MISMATCH_DELAY cannot be negative"))
	}
	if c.ResetNoticeDelay < 0 {
		errs = append(errs, errors.New("RESET_NOTICE_DELAY cannot be negative"))
	}
	if c.GalleryCacheTTL <= 0 {
		errs = append(errs, errors.New("GALLERY_CACHE_TTL must be positive"))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, errors.New("WORKER_COUNT must be at least 1"))
	}
	if c.WorkerQueueSize < 1 {
		errs = append(errs, errors.New("WORKER_QUEUE_SIZE must be at least 1"))
	}
	if len(c.Songs) == 0 {
		errs = append(errs, errors.New("SONGS must list at least one song"))
	}
	return errors.Join(errs...)
}

// parseSongs reads "id|title|url" entries separated by commas. Malformed
// entries are skipped.
func parseSongs(raw string) []Song {
	var songs []Song
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), "|")
		if len(parts) != 3 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			log.Printf("invalid song id %q, skipping", parts[0])
			continue
		}
		songs = append(songs, Song{
			ID:    id,
			Title: strings.TrimSpace(parts[1]),
			URL:   strings.TrimSpace(parts[2]),
		})
	}
	return songs
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
