package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/officegames/tournament-hub/engine"
	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
	"github.com/officegames/tournament-hub/storage"
)

type TournamentService interface {
	// CreateTournament builds the roster from the game's tag, splits it
	// into two balanced groups and persists the tournament as Scheduled.
	CreateTournament(ctx context.Context, gameName string) (*models.Tournament, error)
	// ScheduleGroupStage generates the group-round fixtures for the
	// game's format and moves the tournament to GroupStage.
	ScheduleGroupStage(ctx context.Context, tournamentID int) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	GroupStandings(ctx context.Context, tournamentID int) (map[models.GroupLabel][]engine.Standing, error)
}

type tournamentService struct {
	tx              TxRunner
	tournamentRepo  repositories.TournamentRepository
	gameRepo        repositories.GameRepository
	playerRepo      repositories.PlayerRepository
	duelMatchRepo   repositories.DuelMatchRepository
	royaleMatchRepo repositories.RoyaleMatchRepository
	partitioner     *engine.GroupPartitioner
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	tx TxRunner,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	duelMatchRepo repositories.DuelMatchRepository,
	royaleMatchRepo repositories.RoyaleMatchRepository,
	partitioner *engine.GroupPartitioner,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		gameRepo:        gameRepo,
		playerRepo:      playerRepo,
		duelMatchRepo:   duelMatchRepo,
		royaleMatchRepo: royaleMatchRepo,
		partitioner:     partitioner,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, gameName string) (*models.Tournament, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	game, err := s.gameRepo.GetByName(ctx, gameName)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrGameNotFound, gameName)
		}
		return nil, mapStorageErr(err)
	}

	eligible, err := s.playerRepo.ListEligible(ctx, game.Name)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	roster := make([]models.Player, len(eligible))
	for i, p := range eligible {
		roster[i] = *p
	}

	groupA, groupB := s.partitioner.Split(roster)

	tournament := &models.Tournament{
		GameID: game.ID,
		Status: models.StatusScheduled,
	}
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return mapStorageErr(err)
		}
		return mapStorageErr(s.tournamentRepo.SetGroups(ctx, exec, tournament.ID, groupA, groupB))
	})
	if err != nil {
		return nil, err
	}

	tournament.Game = game
	tournament.GroupA = groupA
	tournament.GroupB = groupB
	populateTournamentAvatarURLs(tournament, s.uploader)

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("game", game.Name),
		slog.Int("group_a", len(groupA)),
		slog.Int("group_b", len(groupB)))
	return tournament, nil
}

func (s *tournamentService) ScheduleGroupStage(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	tournament, err := s.loadAggregate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(tournament.DuelMatches) > 0 || len(tournament.RoyaleMatches) > 0 {
		return nil, fmt.Errorf("%w: tournament %d", ErrFixturesAlreadyExist, tournamentID)
	}
	if tournament.Status != models.StatusScheduled {
		return nil, fmt.Errorf("%w: cannot schedule group stage from %s", ErrInvalidStatusTransition, tournament.Status)
	}

	generator, err := engine.GeneratorForFormat(tournament.Game.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGameFormat, err)
	}

	fixtures := make([]*engine.Fixture, 0)
	for _, group := range []struct {
		label   models.GroupLabel
		players []models.Player
	}{
		{models.GroupA, tournament.GroupA},
		{models.GroupB, tournament.GroupB},
	} {
		generated, err := generator.GenerateFixtures(ctx, engine.GenerateFixturesParams{
			Group: group.players,
			Label: group.label,
		})
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, generated...)
	}

	// Sub-two groups legitimately yield nothing; without fixtures there
	// is no group stage to enter.
	if len(fixtures) == 0 {
		s.logger.Warn("no group fixtures to schedule",
			slog.Int("tournament_id", tournamentID),
			slog.Int("roster", len(tournament.GroupA)+len(tournament.GroupB)))
		return tournament, nil
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := createFixtureMatches(ctx, exec, s.duelMatchRepo, s.royaleMatchRepo, tournamentID, fixtures); err != nil {
			return err
		}
		return s.mapStatusErr(s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusGroupStage, tournament.Version))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("group stage scheduled",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", generator.GetName()),
		slog.Int("fixtures", len(fixtures)))
	return s.GetTournament(ctx, tournamentID)
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	tournament, err := s.loadAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	populateTournamentAvatarURLs(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	for _, tournament := range tournaments {
		game, err := s.gameRepo.GetByID(ctx, tournament.GameID)
		if err != nil {
			return nil, mapStorageErr(err)
		}
		tournament.Game = game
	}
	return tournaments, nil
}

func (s *tournamentService) GroupStandings(ctx context.Context, tournamentID int) (map[models.GroupLabel][]engine.Standing, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	tournament, err := s.loadAggregate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Game.Format != models.FormatHeadToHead {
		return nil, fmt.Errorf("%w: standings are derived from duel matches only", ErrValidationFailed)
	}

	return map[models.GroupLabel][]engine.Standing{
		models.GroupA: engine.GroupStandings(tournament.GroupA, tournament.DuelMatches, models.GroupA),
		models.GroupB: engine.GroupStandings(tournament.GroupB, tournament.DuelMatches, models.GroupB),
	}, nil
}

func (s *tournamentService) loadAggregate(ctx context.Context, id int) (*models.Tournament, error) {
	return loadTournamentAggregate(ctx, s.tournamentRepo, s.gameRepo, s.duelMatchRepo, s.royaleMatchRepo, id)
}

func (s *tournamentService) mapStatusErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentConflict):
		return fmt.Errorf("%w", ErrTournamentConflict)
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	default:
		return mapStorageErr(err)
	}
}
