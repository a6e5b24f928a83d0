package services

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/vytor/valentine/internal/clock"
	"github.com/vytor/valentine/internal/jobs"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/metrics"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

const (
	GalleryCacheKey          = "valentine_gallery_cache"
	GalleryCacheTimestampKey = "valentine_gallery_cache_timestamp"

	// DefaultGalleryCacheTTL is how long a cached gallery is served
	// without refreshing.
	DefaultGalleryCacheTTL = 24 * time.Hour
)

// GalleryService serves the gallery through a cache kept in a key-value
// store, refreshed in the background once stale.
type GalleryService interface {
	List(ctx context.Context) []models.GalleryItem
	Images(ctx context.Context) []models.GalleryItem
	ImagePool(ctx context.Context) []string
	Refresh(ctx context.Context) error
}

type galleryService struct {
	repo    repository.GalleryRepository
	cache   kvstore.Store
	queue   jobs.JobQueue
	clock   clock.Clock
	ttl     time.Duration
	metrics *metrics.Metrics

	pending atomic.Bool
}

// NewGalleryService creates a new GalleryService. A nil queue refreshes
// stale caches inline.
func NewGalleryService(repo repository.GalleryRepository, cache kvstore.Store, queue jobs.JobQueue, c clock.Clock, ttl time.Duration, m *metrics.Metrics) GalleryService {
	if c == nil {
		c = clock.Real{}
	}
	if ttl <= 0 {
		ttl = DefaultGalleryCacheTTL
	}
	return &galleryService{repo: repo, cache: cache, queue: queue, clock: c, ttl: ttl, metrics: m}
}

// List returns the whole gallery, possibly from cache. It returns an empty
// list when nothing is cached and the content source fails.
func (s *galleryService) List(ctx context.Context) []models.GalleryItem {
	log := logger.FromContext(ctx).WithPrefix("gallery")

	var items []models.GalleryItem
	cached := kvstore.GetJSON(ctx, s.cache, GalleryCacheKey, &items)
	if cached && s.fresh(ctx) {
		return items
	}
	if cached {
		log.Debug("gallery cache stale, scheduling refresh")
		s.scheduleRefresh(ctx)
		return items
	}

	items, err := s.load(ctx)
	if err != nil {
		log.Warn("failed to load gallery: %v", err)
		s.metrics.Fallback("gallery")
		return []models.GalleryItem{}
	}
	return items
}

// Images returns the image items in display order.
func (s *galleryService) Images(ctx context.Context) []models.GalleryItem {
	all := s.List(ctx)
	images := make([]models.GalleryItem, 0, len(all))
	for _, it := range all {
		if it.Type == models.MediaImage || it.Type == "" {
			images = append(images, it)
		}
	}
	return images
}

// ImagePool returns the image URLs the memory game deals from.
func (s *galleryService) ImagePool(ctx context.Context) []string {
	images := s.Images(ctx)
	pool := make([]string, len(images))
	for i, it := range images {
		pool[i] = it.URL
	}
	return pool
}

// Refresh reloads the gallery from the content source into the cache. A
// failed refresh leaves the previous cache in place.
func (s *galleryService) Refresh(ctx context.Context) error {
	defer s.pending.Store(false)
	_, err := s.load(ctx)
	return err
}

func (s *galleryService) load(ctx context.Context) ([]models.GalleryItem, error) {
	log := logger.FromContext(ctx).WithPrefix("gallery")

	items, err := s.repo.List(ctx, models.GalleryFilter{})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.GalleryItem{}
	}

	if err := kvstore.SetJSON(ctx, s.cache, GalleryCacheKey, items); err != nil {
		log.Warn("failed to cache gallery: %v", err)
		return items, nil
	}
	stamp := strconv.FormatInt(s.clock.Now().UnixMilli(), 10)
	if err := s.cache.Set(ctx, GalleryCacheTimestampKey, stamp); err != nil {
		log.Warn("failed to write gallery cache timestamp: %v", err)
	}
	log.Debug("cached %d gallery items", len(items))
	return items, nil
}

func (s *galleryService) fresh(ctx context.Context) bool {
	raw, ok, err := s.cache.Get(ctx, GalleryCacheTimestampKey)
	if err != nil || !ok {
		return false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return s.clock.Now().Sub(time.UnixMilli(ms)) < s.ttl
}

func (s *galleryService) scheduleRefresh(ctx context.Context) {
	if !s.pending.CompareAndSwap(false, true) {
		return
	}
	if s.queue == nil {
		_ = s.Refresh(ctx)
		return
	}
	if err := s.queue.EnqueueGalleryRefresh(); err != nil {
		logger.FromContext(ctx).WithPrefix("gallery").Warn("failed to enqueue gallery refresh: %v", err)
		s.pending.Store(false)
	}
}
