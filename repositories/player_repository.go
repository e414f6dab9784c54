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
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name conflict")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	// ListEligible returns, in name order, every player carrying the
	// given game tag.
	ListEligible(ctx context.Context, game string) ([]*models.Player, error)
	AddGame(ctx context.Context, playerID int, game string) error
	UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (name, avatar_key)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, player.Name, player.AvatarKey).
		Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "players_name_key" {
				return ErrPlayerNameConflict
			}
		}
		return fmt.Errorf("failed to insert player %q: %w", player.Name, err)
	}

	for _, game := range player.Games {
		if err := r.AddGame(ctx, player.ID, game); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, name, avatar_key, created_at
		FROM players
		WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.Name,
		&player.AvatarKey,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}

	if player.Games, err = r.listGames(ctx, player.ID); err != nil {
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `
		SELECT id, name, avatar_key, created_at
		FROM players
		WHERE name = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&player.ID,
		&player.Name,
		&player.AvatarKey,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by name %q: %w", name, err)
	}

	if player.Games, err = r.listGames(ctx, player.ID); err != nil {
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.name, p.avatar_key, p.created_at, g.game
		FROM players p
		LEFT JOIN player_games g ON g.player_id = p.id
		ORDER BY p.name ASC, g.game ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	return scanPlayersWithGames(rows)
}

func (r *postgresPlayerRepository) ListEligible(ctx context.Context, game string) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.name, p.avatar_key, p.created_at, g.game
		FROM players p
		LEFT JOIN player_games g ON g.player_id = p.id
		WHERE p.id IN (SELECT player_id FROM player_games WHERE game = $1)
		ORDER BY p.name ASC, g.game ASC`

	rows, err := r.db.QueryContext(ctx, query, game)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible players for game %q: %w", game, err)
	}
	defer rows.Close()

	return scanPlayersWithGames(rows)
}

func (r *postgresPlayerRepository) AddGame(ctx context.Context, playerID int, game string) error {
	query := `
		INSERT INTO player_games (player_id, game)
		VALUES ($1, $2)
		ON CONFLICT (player_id, game) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, playerID, game)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to add game %q to player %d: %w", game, playerID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error {
	query := `UPDATE players SET avatar_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, avatarKey, playerID)
	if err != nil {
		return fmt.Errorf("failed to update avatar for player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) listGames(ctx context.Context, playerID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game FROM player_games WHERE player_id = $1 ORDER BY game ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query games for player %d: %w", playerID, err)
	}
	defer rows.Close()

	games := make([]string, 0)
	for rows.Next() {
		var game string
		if err := rows.Scan(&game); err != nil {
			return nil, fmt.Errorf("failed to scan player game row: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// scanPlayersWithGames folds a players-joined-with-games result set into
// one Player per id, preserving row order.
func scanPlayersWithGames(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	byID := make(map[int]*models.Player)
	for rows.Next() {
		var (
			id        int
			name      string
			avatarKey sql.NullString
			createdAt sql.NullTime
			game      sql.NullString
		)
		if err := rows.Scan(&id, &name, &avatarKey, &createdAt, &game); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		player, ok := byID[id]
		if !ok {
			player = &models.Player{ID: id, Name: name, Games: []string{}}
			if avatarKey.Valid {
				player.AvatarKey = &avatarKey.String
			}
			if createdAt.Valid {
				player.CreatedAt = createdAt.Time
			}
			byID[id] = player
			players = append(players, player)
		}
		if game.Valid {
			player.Games = append(player.Games, game.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}
