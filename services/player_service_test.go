package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTrimsAndStoresGames(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, discardLogger())

	player, err := svc.Register(context.Background(), "  Alice  ", []string{"Chess", "Chess", " ", "Krunker"})

	require.NoError(t, err)
	assert.Equal(t, "Alice", player.Name)
	assert.Equal(t, []string{"Chess", "Krunker"}, player.Games)
	assert.NotZero(t, player.ID)
}

func TestRegisterRequiresName(t *testing.T) {
	svc := NewPlayerService(newFakePlayerRepo(), nil, discardLogger())

	_, err := svc.Register(context.Background(), "   ", nil)

	require.ErrorIs(t, err, ErrPlayerNameRequired)
}

func TestRegisterDuplicateName(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, discardLogger())

	_, err := svc.Register(context.Background(), "Alice", nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Alice", nil)
	require.ErrorIs(t, err, ErrPlayerNameConflict)
}

func TestListEligibleFiltersByGame(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, discardLogger())

	_, err := svc.Register(context.Background(), "Alice", []string{"Chess"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Bob", []string{"Krunker"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Cara", []string{"Chess", "Krunker"})
	require.NoError(t, err)

	eligible, err := svc.ListEligible(context.Background(), "Chess")
	require.NoError(t, err)

	names := make([]string, len(eligible))
	for i, p := range eligible {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Alice", "Cara"}, names)
}

func TestAddGameUnknownPlayer(t *testing.T) {
	svc := NewPlayerService(newFakePlayerRepo(), nil, discardLogger())

	err := svc.AddGame(context.Background(), 404, "Chess")

	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestUploadAvatarStoresObjectAndKey(t *testing.T) {
	repo := newFakePlayerRepo()
	uploader := newFakeUploader()
	svc := NewPlayerService(repo, uploader, discardLogger())

	player, err := svc.Register(context.Background(), "Alice", nil)
	require.NoError(t, err)

	updated, err := svc.UploadAvatar(context.Background(), player.ID, "image/png", strings.NewReader("pngbytes"))

	require.NoError(t, err)
	require.NotNil(t, updated.AvatarKey)
	assert.Equal(t, "avatars/player_1.png", *updated.AvatarKey)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://cdn.test/avatars/player_1.png", *updated.AvatarURL)
	assert.Contains(t, uploader.objects, "avatars/player_1.png")
}

func TestUploadAvatarReplacesOldObject(t *testing.T) {
	repo := newFakePlayerRepo()
	uploader := newFakeUploader()
	svc := NewPlayerService(repo, uploader, discardLogger())

	player, err := svc.Register(context.Background(), "Alice", nil)
	require.NoError(t, err)

	_, err = svc.UploadAvatar(context.Background(), player.ID, "image/png", strings.NewReader("v1"))
	require.NoError(t, err)
	_, err = svc.UploadAvatar(context.Background(), player.ID, "image/jpeg", strings.NewReader("v2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"avatars/player_1.png"}, uploader.deletes)
	assert.Contains(t, uploader.objects, "avatars/player_1.jpg")
}

func TestUploadAvatarRejectsUnknownContentType(t *testing.T) {
	repo := newFakePlayerRepo()
	uploader := newFakeUploader()
	svc := NewPlayerService(repo, uploader, discardLogger())

	player, err := svc.Register(context.Background(), "Alice", nil)
	require.NoError(t, err)

	_, err = svc.UploadAvatar(context.Background(), player.ID, "image/gif", strings.NewReader("gif"))

	require.ErrorIs(t, err, ErrUnsupportedAvatarType)
	assert.Empty(t, uploader.uploads)
}

func TestUploadAvatarWithoutStorage(t *testing.T) {
	svc := NewPlayerService(newFakePlayerRepo(), nil, discardLogger())

	_, err := svc.UploadAvatar(context.Background(), 1, "image/png", strings.NewReader("x"))

	require.ErrorIs(t, err, ErrAvatarStorageUnavailable)
}
