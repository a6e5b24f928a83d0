// Package preferences persists the visitor's background music settings.
package preferences

import (
	"context"
	"math"
	"strconv"

	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/logger"
)

const (
	VolumeKey = "valentine_audio_volume"
	SongKey   = "valentine_selected_song"

	// DefaultVolume is used when no valid volume is stored.
	DefaultVolume = 0.5
)

// Audio reads and writes audio preferences in a visitor's store.
type Audio struct {
	store kvstore.Store
}

func NewAudio(store kvstore.Store) *Audio {
	return &Audio{store: store}
}

// SaveVolume stores volume clamped to [0, 1].
func (a *Audio) SaveVolume(ctx context.Context, volume float64) error {
	return a.store.Set(ctx, VolumeKey, strconv.FormatFloat(clamp(volume), 'f', -1, 64))
}

// Volume returns the stored volume, or DefaultVolume when missing,
// unreadable or not a number.
func (a *Audio) Volume(ctx context.Context) float64 {
	raw, ok, err := a.store.Get(ctx, VolumeKey)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("preferences").WithError(err).Warn("failed to read volume")
		return DefaultVolume
	}
	if !ok {
		return DefaultVolume
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return DefaultVolume
	}
	return clamp(v)
}

// SaveSong stores the selected song id.
func (a *Audio) SaveSong(ctx context.Context, songID int) error {
	return a.store.Set(ctx, SongKey, strconv.Itoa(songID))
}

// Song returns the selected song id, if one is stored and parses.
func (a *Audio) Song(ctx context.Context) (int, bool) {
	raw, ok, err := a.store.Get(ctx, SongKey)
	if err != nil || !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultVolume
	}
	return math.Max(0, math.Min(1, v))
}
