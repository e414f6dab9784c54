package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
)

type GameService interface {
	Create(ctx context.Context, name string, format models.GameFormat) (*models.Game, error)
	List(ctx context.Context) ([]*models.Game, error)
}

type gameService struct {
	gameRepo repositories.GameRepository
}

func NewGameService(gameRepo repositories.GameRepository) GameService {
	return &gameService{gameRepo: gameRepo}
}

func (s *gameService) Create(ctx context.Context, name string, format models.GameFormat) (*models.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameFormat, format)
	}

	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	game := &models.Game{Name: name, Format: format}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrGameNameConflict, name)
		}
		return nil, mapStorageErr(err)
	}
	return game, nil
}

func (s *gameService) List(ctx context.Context) ([]*models.Game, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return games, nil
}
