package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
	"github.com/officegames/tournament-hub/storage"
)

// avatarExtensions is the allowlist of avatar content types and the
// object-key extension each one maps to.
var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type PlayerService interface {
	Register(ctx context.Context, name string, games []string) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	ListEligible(ctx context.Context, game string) ([]*models.Player, error)
	AddGame(ctx context.Context, playerID int, game string) error
	UploadAvatar(ctx context.Context, playerID int, contentType string, reader io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *playerService) Register(ctx context.Context, name string, games []string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{Name: name, Games: normalizeGames(games)}

	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNameConflict, name)
		}
		return nil, mapStorageErr(err)
	}

	s.logger.Info("player registered", slog.Int("player_id", player.ID), slog.String("name", player.Name))
	return player, nil
}

func (s *playerService) GetByName(ctx context.Context, name string) (*models.Player, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	player, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
		}
		return nil, mapStorageErr(err)
	}
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	for _, player := range players {
		populatePlayerAvatarURL(player, s.uploader)
	}
	return players, nil
}

func (s *playerService) ListEligible(ctx context.Context, game string) ([]*models.Player, error) {
	if strings.TrimSpace(game) == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}

	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	players, err := s.playerRepo.ListEligible(ctx, game)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	for _, player := range players {
		populatePlayerAvatarURL(player, s.uploader)
	}
	return players, nil
}

func (s *playerService) AddGame(ctx context.Context, playerID int, game string) error {
	game = strings.TrimSpace(game)
	if game == "" {
		return fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}

	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	if err := s.playerRepo.AddGame(ctx, playerID, game); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return fmt.Errorf("%w: player %d", ErrPlayerNotFound, playerID)
		}
		return mapStorageErr(err)
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID int, contentType string, reader io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrAvatarStorageUnavailable
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAvatarType, contentType)
	}

	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, playerID)
		}
		return nil, mapStorageErr(err)
	}

	key := fmt.Sprintf("avatars/player_%d.%s", playerID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", mapStorageErr(err))
	}

	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &result.Key); err != nil {
		return nil, mapStorageErr(err)
	}

	// A stale object under a different extension is cleaned up best
	// effort; the new key is already live.
	oldKey := derefString(player.AvatarKey)
	if oldKey != "" && oldKey != result.Key {
		if err := s.uploader.Delete(ctx, oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar object",
				slog.String("key", oldKey), slog.Any("error", err))
		}
	}

	player.AvatarKey = &result.Key
	populatePlayerAvatarURL(player, s.uploader)
	s.logger.Info("player avatar updated", slog.Int("player_id", playerID), slog.String("key", result.Key))
	return player, nil
}

func normalizeGames(games []string) []string {
	seen := make(map[string]bool, len(games))
	out := make([]string, 0, len(games))
	for _, g := range games {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
