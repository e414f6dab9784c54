package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/officegames/tournament-hub/engine"
	"github.com/officegames/tournament-hub/live"
	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
)

// maxResultRetries bounds the optimistic-conflict retries before the
// race is surfaced to the caller.
const maxResultRetries = 3

// RecordResultInput carries a reported outcome. WinnerID fits both
// forms; AdvancerIDs is the winners set of a multi-advance royale
// match; Score is free-form and never interpreted.
type RecordResultInput struct {
	WinnerID    *int    `json:"winner_id,omitempty"`
	AdvancerIDs []int   `json:"advancer_ids,omitempty"`
	Score       *string `json:"score,omitempty"`
}

// Broadcaster pushes tournament events to live subscribers.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type MatchService interface {
	// RecordResult validates and applies a reported outcome, then lets
	// the progression engine decide whether the tournament moves to its
	// next round. Either everything is applied or nothing is.
	RecordResult(ctx context.Context, tournamentID, matchID int, input RecordResultInput) (*models.Tournament, error)
}

type matchService struct {
	tx              TxRunner
	tournamentRepo  repositories.TournamentRepository
	gameRepo        repositories.GameRepository
	duelMatchRepo   repositories.DuelMatchRepository
	royaleMatchRepo repositories.RoyaleMatchRepository
	hub             Broadcaster
	logger          *slog.Logger
}

func NewMatchService(
	tx TxRunner,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	duelMatchRepo repositories.DuelMatchRepository,
	royaleMatchRepo repositories.RoyaleMatchRepository,
	hub Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		gameRepo:        gameRepo,
		duelMatchRepo:   duelMatchRepo,
		royaleMatchRepo: royaleMatchRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *matchService) RecordResult(ctx context.Context, tournamentID, matchID int, input RecordResultInput) (*models.Tournament, error) {
	ctx, cancel := withPersistTimeout(ctx)
	defer cancel()

	// Lost version races are retried against freshly loaded state; the
	// version check serializes concurrent recorders per tournament.
	var lastErr error
	for attempt := 0; attempt < maxResultRetries; attempt++ {
		tournament, err := s.attempt(ctx, tournamentID, matchID, input)
		if err == nil {
			return tournament, nil
		}
		if !errors.Is(err, repositories.ErrTournamentConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("result recording lost a version race, retrying",
			slog.Int("tournament_id", tournamentID),
			slog.Int("match_id", matchID),
			slog.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("%w: %v", ErrTournamentConflict, lastErr)
}

func (s *matchService) attempt(ctx context.Context, tournamentID, matchID int, input RecordResultInput) (*models.Tournament, error) {
	tournament, err := loadTournamentAggregate(ctx, s.tournamentRepo, s.gameRepo, s.duelMatchRepo, s.royaleMatchRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	var applyResult func(exec repositories.SQLExecutor) error
	switch tournament.Game.Format {
	case models.FormatHeadToHead:
		match := tournament.FindDuelMatch(matchID)
		if match == nil {
			return nil, fmt.Errorf("%w: match %d does not belong to tournament %d", ErrMatchNotFound, matchID, tournamentID)
		}
		if err := validateDuelResult(match, input); err != nil {
			return nil, err
		}
		if input.WinnerID != nil {
			match.WinnerID = input.WinnerID
		}
		if input.Score != nil {
			match.Score = input.Score
		}
		applyResult = func(exec repositories.SQLExecutor) error {
			return mapStorageErr(s.duelMatchRepo.UpdateResult(ctx, exec, matchID, match.WinnerID, match.Score))
		}

	case models.FormatBattleRoyale:
		match := tournament.FindRoyaleMatch(matchID)
		if match == nil {
			return nil, fmt.Errorf("%w: match %d does not belong to tournament %d", ErrMatchNotFound, matchID, tournamentID)
		}
		if err := validateRoyaleResult(match, input); err != nil {
			return nil, err
		}
		if input.WinnerID != nil {
			match.WinnerID = input.WinnerID
		}
		if len(input.AdvancerIDs) > 0 {
			match.AdvancerIDs = input.AdvancerIDs
		}
		applyResult = func(exec repositories.SQLExecutor) error {
			return mapStorageErr(s.royaleMatchRepo.UpdateResult(ctx, exec, matchID, match.WinnerID, match.AdvancerIDs))
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameFormat, tournament.Game.Format)
	}

	advancement, err := engine.NextAdvancement(tournament, tournament.Game.Format)
	if err != nil {
		return nil, err
	}
	if advancement != nil && !tournament.Status.CanTransitionTo(advancement.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, advancement.Status)
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := applyResult(exec); err != nil {
			return err
		}
		if advancement == nil {
			// No round change; the bump still fences concurrent writers.
			return s.tournamentRepo.BumpVersion(ctx, exec, tournamentID, tournament.Version)
		}
		if err := createFixtureMatches(ctx, exec, s.duelMatchRepo, s.royaleMatchRepo, tournamentID, advancement.Fixtures); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, advancement.Status, tournament.Version)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(tournamentID, matchID, advancement)

	updated, err := loadTournamentAggregate(ctx, s.tournamentRepo, s.gameRepo, s.duelMatchRepo, s.royaleMatchRepo, tournamentID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *matchService) broadcast(tournamentID, matchID int, advancement *engine.Advancement) {
	if s.hub == nil {
		return
	}
	room := strconv.Itoa(tournamentID)
	s.hub.BroadcastToRoom(room, live.Message{
		Type:    live.EventMatchUpdated,
		Payload: map[string]int{"tournament_id": tournamentID, "match_id": matchID},
		RoomID:  room,
	})
	if advancement == nil {
		return
	}
	eventType := live.EventRoundAdvanced
	if advancement.Status == models.StatusCompleted {
		eventType = live.EventTournamentCompleted
	}
	s.hub.BroadcastToRoom(room, live.Message{
		Type:    eventType,
		Payload: map[string]interface{}{"tournament_id": tournamentID, "status": advancement.Status},
		RoomID:  room,
	})
}

func validateDuelResult(match *models.DuelMatch, input RecordResultInput) error {
	if len(input.AdvancerIDs) > 0 {
		return fmt.Errorf("%w: advancers set reported for a two-party match %d", ErrResultShapeMismatch, match.ID)
	}
	if input.WinnerID == nil && input.Score == nil {
		return fmt.Errorf("%w: no result fields provided", ErrValidationFailed)
	}
	if input.WinnerID != nil && !match.HasParticipant(*input.WinnerID) {
		return fmt.Errorf("%w: player %d in match %d", ErrWinnerNotParticipant, *input.WinnerID, match.ID)
	}
	return nil
}

func validateRoyaleResult(match *models.RoyaleMatch, input RecordResultInput) error {
	if input.Score != nil {
		return fmt.Errorf("%w: score reported for a multi-party match %d", ErrResultShapeMismatch, match.ID)
	}
	if input.WinnerID == nil && len(input.AdvancerIDs) == 0 {
		return fmt.Errorf("%w: no result fields provided", ErrValidationFailed)
	}
	if input.WinnerID != nil && !match.HasParticipant(*input.WinnerID) {
		return fmt.Errorf("%w: player %d in match %d", ErrWinnerNotParticipant, *input.WinnerID, match.ID)
	}
	seen := make(map[int]bool, len(input.AdvancerIDs))
	for _, playerID := range input.AdvancerIDs {
		if !match.HasParticipant(playerID) {
			return fmt.Errorf("%w: player %d in match %d", ErrWinnerNotParticipant, playerID, match.ID)
		}
		if seen[playerID] {
			return fmt.Errorf("%w: player %d reported twice in advancers of match %d", ErrValidationFailed, playerID, match.ID)
		}
		seen[playerID] = true
	}
	return nil
}
