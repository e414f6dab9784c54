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
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrTournamentGameInvalid = errors.New("tournament game conflict or invalid")
	// ErrTournamentConflict signals a lost optimistic-version race; the
	// caller retries with freshly loaded state.
	ErrTournamentConflict = errors.New("tournament was modified concurrently")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	SetGroups(ctx context.Context, exec SQLExecutor, tournamentID int, groupA, groupB []models.Player) error
	GetGroups(ctx context.Context, tournamentID int) (groupA, groupB []models.Player, err error)
	// UpdateStatus bumps the version and fails with
	// ErrTournamentConflict when expectedVersion is stale.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, expectedVersion int) error
	// BumpVersion is the bare optimistic check for mutations that do not
	// change the status.
	BumpVersion(ctx context.Context, exec SQLExecutor, id int, expectedVersion int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (game_id, status)
		VALUES ($1, $2)
		RETURNING id, version, created_at`

	err := exec.QueryRowContext(ctx, query, tournament.GameID, tournament.Status).
		Scan(&tournament.ID, &tournament.Version, &tournament.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "tournaments_game_id_fkey" {
				return ErrTournamentGameInvalid
			}
		}
		return fmt.Errorf("failed to insert tournament for game %d: %w", tournament.GameID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, game_id, status, version, created_at
		FROM tournaments
		WHERE id = $1`

	tournament := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID,
		&tournament.GameID,
		&tournament.Status,
		&tournament.Version,
		&tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT id, game_id, status, version, created_at
		FROM tournaments
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var tournament models.Tournament
		if err := rows.Scan(
			&tournament.ID,
			&tournament.GameID,
			&tournament.Status,
			&tournament.Version,
			&tournament.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, &tournament)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) SetGroups(ctx context.Context, exec SQLExecutor, tournamentID int, groupA, groupB []models.Player) error {
	insert := `
		INSERT INTO tournament_players (tournament_id, player_id, group_label, position)
		VALUES ($1, $2, $3, $4)`

	for label, group := range map[models.GroupLabel][]models.Player{
		models.GroupA: groupA,
		models.GroupB: groupB,
	} {
		for position, player := range group {
			if _, err := exec.ExecContext(ctx, insert, tournamentID, player.ID, label, position); err != nil {
				if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
					return fmt.Errorf("player %d already grouped in tournament %d: %w", player.ID, tournamentID, err)
				}
				return fmt.Errorf("failed to assign player %d to group %s: %w", player.ID, label, err)
			}
		}
	}
	return nil
}

func (r *postgresTournamentRepository) GetGroups(ctx context.Context, tournamentID int) ([]models.Player, []models.Player, error) {
	query := `
		SELECT tp.group_label, p.id, p.name, p.avatar_key, p.created_at
		FROM tournament_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.tournament_id = $1
		ORDER BY tp.group_label ASC, tp.position ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query groups for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	groupA := make([]models.Player, 0)
	groupB := make([]models.Player, 0)
	for rows.Next() {
		var (
			label     models.GroupLabel
			player    models.Player
			avatarKey sql.NullString
		)
		if err := rows.Scan(&label, &player.ID, &player.Name, &avatarKey, &player.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan group member row: %w", err)
		}
		if avatarKey.Valid {
			player.AvatarKey = &avatarKey.String
		}
		if label == models.GroupA {
			groupA = append(groupA, player)
		} else {
			groupB = append(groupB, player)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groupA, groupB, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, expectedVersion int) error {
	query := `
		UPDATE tournaments
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3`

	result, err := exec.ExecContext(ctx, query, status, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return r.versionCheck(ctx, result, id)
}

func (r *postgresTournamentRepository) BumpVersion(ctx context.Context, exec SQLExecutor, id int, expectedVersion int) error {
	query := `
		UPDATE tournaments
		SET version = version + 1
		WHERE id = $1 AND version = $2`

	result, err := exec.ExecContext(ctx, query, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to bump version of tournament %d: %w", id, err)
	}
	return r.versionCheck(ctx, result, id)
}

// versionCheck distinguishes a missing tournament from a stale version:
// both leave zero rows affected.
func (r *postgresTournamentRepository) versionCheck(ctx context.Context, result sql.Result, id int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to probe tournament %d: %w", id, err)
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return ErrTournamentConflict
}
