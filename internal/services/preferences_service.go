package services

import (
	"context"

	"github.com/vytor/valentine/internal/config"
	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/preferences"
)

// AudioSettings is the music state of a visitor.
type AudioSettings struct {
	Volume  float64       `json:"volume"`
	Song    config.Song   `json:"song"`
	Songs   []config.Song `json:"songs"`
	HasSong bool          `json:"hasSong"`
}

// PreferencesService handles background music settings
type PreferencesService interface {
	Audio(ctx context.Context, visitorID string) AudioSettings
	SetVolume(ctx context.Context, visitorID string, volume float64) (AudioSettings, error)
	SetSong(ctx context.Context, visitorID string, songID int) (AudioSettings, error)
}

type preferencesService struct {
	backend kvstore.Backend
	songs   []config.Song
}

// NewPreferencesService creates a new PreferencesService offering songs.
func NewPreferencesService(backend kvstore.Backend, songs []config.Song) PreferencesService {
	return &preferencesService{backend: backend, songs: songs}
}

func (s *preferencesService) audio(visitorID string) *preferences.Audio {
	return preferences.NewAudio(kvstore.Scope(s.backend, visitorID))
}

// Audio returns the stored settings. An unknown or missing song falls back
// to the first song of the catalogue.
func (s *preferencesService) Audio(ctx context.Context, visitorID string) AudioSettings {
	a := s.audio(visitorID)
	settings := AudioSettings{Volume: a.Volume(ctx), Songs: s.songs}

	if id, ok := a.Song(ctx); ok {
		if song, found := s.song(id); found {
			settings.Song, settings.HasSong = song, true
			return settings
		}
	}
	if len(s.songs) > 0 {
		settings.Song, settings.HasSong = s.songs[0], true
	}
	return settings
}

func (s *preferencesService) SetVolume(ctx context.Context, visitorID string, volume float64) (AudioSettings, error) {
	if err := s.audio(visitorID).SaveVolume(ctx, volume); err != nil {
		logger.FromContext(ctx).WithPrefix("preferences").Error("failed to save volume: %v", err)
		return AudioSettings{}, errors.NewInternalError(err)
	}
	return s.Audio(ctx, visitorID), nil
}

func (s *preferencesService) SetSong(ctx context.Context, visitorID string, songID int) (AudioSettings, error) {
	if _, ok := s.song(songID); !ok {
		return AudioSettings{}, errors.NewNotFoundError("song", songID)
	}
	if err := s.audio(visitorID).SaveSong(ctx, songID); err != nil {
		logger.FromContext(ctx).WithPrefix("preferences").Error("failed to save song: %v", err)
		return AudioSettings{}, errors.NewInternalError(err)
	}
	return s.Audio(ctx, visitorID), nil
}

func (s *preferencesService) song(id int) (config.Song, bool) {
	for _, song := range s.songs {
		if song.ID == id {
			return song, true
		}
	}
	return config.Song{}, false
}
