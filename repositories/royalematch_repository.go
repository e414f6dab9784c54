package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/officegames/tournament-hub/models"
)

var (
	ErrRoyaleMatchNotFound      = errors.New("royale match not found")
	ErrRoyaleMatchPlayerInvalid = errors.New("royale match player conflict or invalid")
)

type RoyaleMatchRepository interface {
	// Create persists the match and its fixed participant set.
	Create(ctx context.Context, exec SQLExecutor, match *models.RoyaleMatch) error
	GetByID(ctx context.Context, id int) (*models.RoyaleMatch, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.RoyaleMatch, error)
	// UpdateResult replaces the winner and the advancers set.
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, winnerID *int, advancerIDs []int) error
}

type postgresRoyaleMatchRepository struct {
	db *sql.DB
}

func NewPostgresRoyaleMatchRepository(db *sql.DB) RoyaleMatchRepository {
	return &postgresRoyaleMatchRepository{db: db}
}

func (r *postgresRoyaleMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.RoyaleMatch) error {
	query := `
		INSERT INTO royale_matches (tournament_id, winner_player_id, round, group_label)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.WinnerID,
		match.Round,
		match.GroupLabel,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return r.handleRoyaleMatchError(err)
	}

	insert := `
		INSERT INTO royale_match_players (match_id, player_id, position)
		VALUES ($1, $2, $3)`
	for position, playerID := range match.PlayerIDs {
		if _, err := exec.ExecContext(ctx, insert, match.ID, playerID, position); err != nil {
			return r.handleRoyaleMatchError(err)
		}
	}
	return nil
}

func (r *postgresRoyaleMatchRepository) GetByID(ctx context.Context, id int) (*models.RoyaleMatch, error) {
	query := `
		SELECT id, tournament_id, winner_player_id, round, group_label, created_at
		FROM royale_matches
		WHERE id = $1`

	match := &models.RoyaleMatch{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.WinnerID,
		&match.Round,
		&match.GroupLabel,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoyaleMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan royale match by id %d: %w", id, err)
	}

	if err := r.loadParticipants(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresRoyaleMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.RoyaleMatch, error) {
	query := `
		SELECT id, tournament_id, winner_player_id, round, group_label, created_at
		FROM royale_matches
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query royale matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.RoyaleMatch, 0)
	for rows.Next() {
		var match models.RoyaleMatch
		if err := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.WinnerID,
			&match.Round,
			&match.GroupLabel,
			&match.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan royale match row: %w", err)
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during royale match rows iteration: %w", err)
	}

	for _, match := range matches {
		if err := r.loadParticipants(ctx, match); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (r *postgresRoyaleMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, winnerID *int, advancerIDs []int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE royale_matches SET winner_player_id = $1 WHERE id = $2`, winnerID, id)
	if err != nil {
		return r.handleRoyaleMatchError(err)
	}
	if err := checkAffectedRows(result, ErrRoyaleMatchNotFound); err != nil {
		return err
	}

	if _, err := exec.ExecContext(ctx,
		`UPDATE royale_match_players SET advanced = FALSE, advance_order = NULL WHERE match_id = $1`, id); err != nil {
		return fmt.Errorf("failed to reset advancers for royale match %d: %w", id, err)
	}
	for order, playerID := range advancerIDs {
		result, err := exec.ExecContext(ctx,
			`UPDATE royale_match_players SET advanced = TRUE, advance_order = $1 WHERE match_id = $2 AND player_id = $3`,
			order, id, playerID)
		if err != nil {
			return fmt.Errorf("failed to mark advancer %d in royale match %d: %w", playerID, id, err)
		}
		if err := checkAffectedRows(result, ErrRoyaleMatchPlayerInvalid); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRoyaleMatchRepository) loadParticipants(ctx context.Context, match *models.RoyaleMatch) error {
	query := `
		SELECT player_id, advanced, advance_order
		FROM royale_match_players
		WHERE match_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, match.ID)
	if err != nil {
		return fmt.Errorf("failed to query participants of royale match %d: %w", match.ID, err)
	}
	defer rows.Close()

	match.PlayerIDs = make([]int, 0)
	type advancer struct {
		playerID int
		order    int
	}
	advancers := make([]advancer, 0)
	for rows.Next() {
		var (
			playerID     int
			advanced     bool
			advanceOrder sql.NullInt64
		)
		if err := rows.Scan(&playerID, &advanced, &advanceOrder); err != nil {
			return fmt.Errorf("failed to scan royale participant row: %w", err)
		}
		match.PlayerIDs = append(match.PlayerIDs, playerID)
		if advanced && advanceOrder.Valid {
			advancers = append(advancers, advancer{playerID: playerID, order: int(advanceOrder.Int64)})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error during royale participant rows iteration: %w", err)
	}

	match.AdvancerIDs = make([]int, 0, len(advancers))
	for order := 0; order < len(advancers); order++ {
		for _, a := range advancers {
			if a.order == order {
				match.AdvancerIDs = append(match.AdvancerIDs, a.playerID)
			}
		}
	}
	return nil
}

func (r *postgresRoyaleMatchRepository) handleRoyaleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "royale_matches_winner_player_id_fkey", "royale_match_players_player_id_fkey":
			return ErrRoyaleMatchPlayerInvalid
		}
	}
	return err
}
