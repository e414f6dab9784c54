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
	ErrDuelMatchNotFound      = errors.New("duel match not found")
	ErrDuelMatchPlayerInvalid = errors.New("duel match player conflict or invalid")
)

type DuelMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.DuelMatch) error
	GetByID(ctx context.Context, id int) (*models.DuelMatch, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.DuelMatch, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, winnerID *int, score *string) error
}

type postgresDuelMatchRepository struct {
	db *sql.DB
}

func NewPostgresDuelMatchRepository(db *sql.DB) DuelMatchRepository {
	return &postgresDuelMatchRepository{db: db}
}

func (r *postgresDuelMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.DuelMatch) error {
	query := `
		INSERT INTO duel_matches
			(tournament_id, p1_player_id, p2_player_id, winner_player_id, score, round, group_label)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.P1ID,
		match.P2ID,
		match.WinnerID,
		match.Score,
		match.Round,
		match.GroupLabel,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleDuelMatchError(err)
}

func (r *postgresDuelMatchRepository) GetByID(ctx context.Context, id int) (*models.DuelMatch, error) {
	query := `
		SELECT id, tournament_id, p1_player_id, p2_player_id, winner_player_id, score, round, group_label, created_at
		FROM duel_matches
		WHERE id = $1`

	match := &models.DuelMatch{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.P1ID,
		&match.P2ID,
		&match.WinnerID,
		&match.Score,
		&match.Round,
		&match.GroupLabel,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDuelMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan duel match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresDuelMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.DuelMatch, error) {
	query := `
		SELECT id, tournament_id, p1_player_id, p2_player_id, winner_player_id, score, round, group_label, created_at
		FROM duel_matches
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duel matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.DuelMatch, 0)
	for rows.Next() {
		var match models.DuelMatch
		if err := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.P1ID,
			&match.P2ID,
			&match.WinnerID,
			&match.Score,
			&match.Round,
			&match.GroupLabel,
			&match.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan duel match row: %w", err)
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during duel match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresDuelMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, winnerID *int, score *string) error {
	query := `
		UPDATE duel_matches
		SET winner_player_id = $1, score = $2
		WHERE id = $3`

	result, err := exec.ExecContext(ctx, query, winnerID, score, id)
	if err != nil {
		return r.handleDuelMatchError(err)
	}
	return checkAffectedRows(result, ErrDuelMatchNotFound)
}

func (r *postgresDuelMatchRepository) handleDuelMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "duel_matches_p1_player_id_fkey", "duel_matches_p2_player_id_fkey", "duel_matches_winner_player_id_fkey":
			return ErrDuelMatchPlayerInvalid
		}
	}
	return err
}
