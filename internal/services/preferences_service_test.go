package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/config"
	"github.com/vytor/valentine/internal/errors"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/preferences"
	"github.com/vytor/valentine/internal/services"
)

var songs = []config.Song{
	{ID: 1, Title: "Our Song", URL: "/static/song.mp3"},
	{ID: 2, Title: "Second", URL: "/static/second.mp3"},
}

func TestPreferences_Defaults(t *testing.T) {
	svc := services.NewPreferencesService(kvstore.NewMemory(), songs)

	settings := svc.Audio(context.Background(), "v")
	assert.Equal(t, preferences.DefaultVolume, settings.Volume)
	assert.True(t, settings.HasSong)
	assert.Equal(t, 1, settings.Song.ID)
	assert.Len(t, settings.Songs, 2)
}

func TestPreferences_SetVolumeAndSong(t *testing.T) {
	ctx := context.Background()
	svc := services.NewPreferencesService(kvstore.NewMemory(), songs)

	settings, err := svc.SetVolume(ctx, "v", 1.7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, settings.Volume)

	settings, err = svc.SetSong(ctx, "v", 2)
	require.NoError(t, err)
	assert.Equal(t, "Second", settings.Song.Title)

	assert.Equal(t, 1, svc.Audio(ctx, "other").Song.ID, "visitors are isolated")
}

func TestPreferences_UnknownSong(t *testing.T) {
	_, err := services.NewPreferencesService(kvstore.NewMemory(), songs).SetSong(context.Background(), "v", 9)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestPreferences_NoCatalogue(t *testing.T) {
	settings := services.NewPreferencesService(kvstore.NewMemory(), nil).Audio(context.Background(), "v")
	assert.False(t, settings.HasSong)
}
