package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/officegames/tournament-hub/engine"
	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
	"github.com/officegames/tournament-hub/storage"
	"golang.org/x/sync/errgroup"
)

// persistTimeout bounds every persistence call made by the services; an
// expired call surfaces as ErrStorageUnavailable rather than hanging.
const persistTimeout = 5 * time.Second

func withPersistTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, persistTimeout)
}

func mapStorageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// loadTournamentAggregate loads a tournament with its game, groups and
// match arenas populated. The related pieces load in parallel.
func loadTournamentAggregate(
	ctx context.Context,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	duelMatchRepo repositories.DuelMatchRepository,
	royaleMatchRepo repositories.RoyaleMatchRepository,
	id int,
) (*models.Tournament, error) {
	tournament, err := tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
		}
		return nil, mapStorageErr(err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		game, err := gameRepo.GetByID(gCtx, tournament.GameID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return fmt.Errorf("%w: game %d of tournament %d", ErrGameNotFound, tournament.GameID, id)
			}
			return mapStorageErr(err)
		}
		tournament.Game = game
		return nil
	})

	g.Go(func() error {
		groupA, groupB, err := tournamentRepo.GetGroups(gCtx, id)
		if err != nil {
			return mapStorageErr(err)
		}
		tournament.GroupA = groupA
		tournament.GroupB = groupB
		return nil
	})

	g.Go(func() error {
		matches, err := duelMatchRepo.ListByTournament(gCtx, id)
		if err != nil {
			return mapStorageErr(err)
		}
		tournament.DuelMatches = make([]models.DuelMatch, len(matches))
		for i, m := range matches {
			tournament.DuelMatches[i] = *m
		}
		return nil
	})

	g.Go(func() error {
		matches, err := royaleMatchRepo.ListByTournament(gCtx, id)
		if err != nil {
			return mapStorageErr(err)
		}
		tournament.RoyaleMatches = make([]models.RoyaleMatch, len(matches))
		for i, m := range matches {
			tournament.RoyaleMatches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

// TxRunner executes a unit of work atomically; every repository call
// inside fn shares the same executor.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner wraps a database pool; fn runs inside a transaction
// where a panic or error rolls back and a clean return commits.
func NewSQLTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapStorageErr(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapStorageErr(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// createFixtureMatches persists engine fixtures into the match arena
// matching their form.
func createFixtureMatches(
	ctx context.Context,
	exec repositories.SQLExecutor,
	duelMatchRepo repositories.DuelMatchRepository,
	royaleMatchRepo repositories.RoyaleMatchRepository,
	tournamentID int,
	fixtures []*engine.Fixture,
) error {
	for _, fixture := range fixtures {
		if fixture.Duel {
			match := &models.DuelMatch{
				TournamentID: tournamentID,
				P1ID:         fixture.P1ID,
				P2ID:         fixture.P2ID,
				Round:        fixture.Round,
				GroupLabel:   fixture.GroupLabel,
			}
			if err := duelMatchRepo.Create(ctx, exec, match); err != nil {
				return mapStorageErr(err)
			}
			continue
		}
		match := &models.RoyaleMatch{
			TournamentID: tournamentID,
			PlayerIDs:    fixture.PlayerIDs,
			Round:        fixture.Round,
			GroupLabel:   fixture.GroupLabel,
		}
		if err := royaleMatchRepo.Create(ctx, exec, match); err != nil {
			return mapStorageErr(err)
		}
	}
	return nil
}

func populatePlayerAvatarURL(player *models.Player, uploader storage.FileUploader) {
	if player == nil || uploader == nil || player.AvatarKey == nil || *player.AvatarKey == "" {
		return
	}
	if url := uploader.GetPublicURL(*player.AvatarKey); url != "" {
		player.AvatarURL = &url
	}
}

func populateTournamentAvatarURLs(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament == nil || uploader == nil {
		return
	}
	for i := range tournament.GroupA {
		populatePlayerAvatarURL(&tournament.GroupA[i], uploader)
	}
	for i := range tournament.GroupB {
		populatePlayerAvatarURL(&tournament.GroupB[i], uploader)
	}
}
