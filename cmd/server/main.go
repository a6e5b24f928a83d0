package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/valentine/internal/api"
	"github.com/vytor/valentine/internal/backend"
	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/config"
	"github.com/vytor/valentine/internal/db"
	"github.com/vytor/valentine/internal/jobs"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/ledger"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/memorygame"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/repository"
	"github.com/vytor/valentine/internal/repository/sqlite"
	"github.com/vytor/valentine/internal/services"
	"github.com/vytor/valentine/internal/worker"
)

// Game sessions and cached ledgers idle this long are dropped.
const idleTimeout = 2 * time.Hour

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Valentine Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("api_url=%s", cfg.APIURL)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("unlock_interval=%s", cfg.UnlockInterval)
	log.Debug("gallery_cache_ttl=%s", cfg.GalleryCacheTTL)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)
	log.Debug("songs=%d", len(cfg.Songs))

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Content comes from the remote API when one is configured. Visitor
	// state always stays local.
	var (
		reasonRepo    repository.ReasonRepository
		galleryRepo   repository.GalleryRepository
		highscoreRepo repository.HighscoreRepository
	)
	if cfg.APIURL != "" {
		log.Info("using remote content API at %s", cfg.APIURL)
		client := backend.New(cfg.APIURL)
		reasonRepo = client
		galleryRepo = client
		highscoreRepo = client.Highscores()
	} else {
		reasonRepo = sqlite.NewReasonRepository(database.DB)
		galleryRepo = sqlite.NewGalleryRepository(database.DB)
		highscoreRepo = sqlite.NewHighscoreRepository(database.DB)
	}
	visitorRepo := sqlite.NewVisitorRepository(database.DB)
	kv := sqlite.NewKVRepository(database.DB)

	// Load templates
	log.Debug("loading templates from %s", cfg.TemplatesDir)
	tmpl, err := api.LoadTemplates(os.DirFS(cfg.TemplatesDir))
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}
	log.Debug("templates loaded successfully")

	m := metrics.New()
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	queue := jobs.NewWorkerQueue(pool, visitorRepo)

	// Initialize services
	realClock := clock.Real{}
	gallerySvc := services.NewGalleryService(galleryRepo, kvstore.Scope(kv, "site"), queue, realClock, cfg.GalleryCacheTTL, m)
	queue.SetGalleryRefresher(gallerySvc)

	ledgers := services.NewLedgerCache(kv, realClock, ledger.WithClock(realClock), ledger.WithUnlockInterval(cfg.UnlockInterval))
	highscoreSvc := services.NewHighscoreService(highscoreRepo, m)
	gameSvc := services.NewGameService(gallerySvc, highscoreSvc, m, realClock,
		memorygame.WithMismatchDelay(cfg.MismatchDelay),
		memorygame.WithResetNoticeDelay(cfg.ResetNoticeDelay),
	)

	srv := &api.Server{
		Reasons:       services.NewReasonService(reasonRepo, ledgers, m, cfg.ReasonsFallbackCount),
		Gallery:       gallerySvc,
		Highscores:    highscoreSvc,
		Games:         gameSvc,
		Feedback:      services.NewFeedbackService(sqlite.NewFeedbackRepository(database.DB), m),
		Preferences:   services.NewPreferencesService(kv, cfg.Songs),
		Jobs:          queue,
		Metrics:       m,
		DB:            database,
		Templates:     tmpl,
		StaticDir:     cfg.StaticDir,
		SecureCookies: cfg.SecureCookies,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := gameSvc.Prune(idleTimeout); n > 0 {
					log.Debug("pruned %d idle game sessions", n)
				}
				if n := ledgers.Prune(idleTimeout); n > 0 {
					log.Debug("pruned %d idle ledgers", n)
				}
			}
		}
	}()

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("closing game sessions")
	gameSvc.Close()

	log.Debug("stopping worker pool")
	cancel()
	pool.Stop()

	log.Info("===========================================")
	log.Info("Valentine Server Stopped")
	log.Info("===========================================")
}
