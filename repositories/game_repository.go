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
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNameConflict = errors.New("game name conflict")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	GetByName(ctx context.Context, name string) (*models.Game, error)
	List(ctx context.Context) ([]*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (name, format)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, game.Name, game.Format).Scan(&game.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "games_name_key" {
				return ErrGameNameConflict
			}
		}
		return fmt.Errorf("failed to insert game %q: %w", game.Name, err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	return r.getOne(ctx, `SELECT id, name, format FROM games WHERE id = $1`, id)
}

func (r *postgresGameRepository) GetByName(ctx context.Context, name string) (*models.Game, error) {
	return r.getOne(ctx, `SELECT id, name, format FROM games WHERE name = $1`, name)
}

func (r *postgresGameRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Game, error) {
	game := &models.Game{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&game.ID, &game.Name, &game.Format)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return game, nil
}

func (r *postgresGameRepository) List(ctx context.Context) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, format FROM games ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		var game models.Game
		if err := rows.Scan(&game.ID, &game.Name, &game.Format); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, &game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}
