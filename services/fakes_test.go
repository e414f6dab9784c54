package services

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
	"github.com/officegames/tournament-hub/storage"
)

// In-memory repository fakes backing the service tests.

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players map[int]*models.Player
	byName  map[string]int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: map[int]*models.Player{}, byName: map[string]int{}}
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[player.Name]; ok {
		return repositories.ErrPlayerNameConflict
	}
	r.nextID++
	player.ID = r.nextID
	cp := *player
	r.players[player.ID] = &cp
	r.byName[player.Name] = player.ID
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) GetByName(ctx context.Context, name string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *r.players[id]
	return &cp, nil
}

func (r *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0, len(r.players))
	for id := 1; id <= r.nextID; id++ {
		if p, ok := r.players[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListEligible(ctx context.Context, game string) ([]*models.Player, error) {
	all, _ := r.List(ctx)
	out := make([]*models.Player, 0, len(all))
	for _, p := range all {
		if p.PlaysGame(game) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) AddGame(ctx context.Context, playerID int, game string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if !p.PlaysGame(game) {
		p.Games = append(p.Games, game)
	}
	return nil
}

func (r *fakePlayerRepo) UpdateAvatarKey(ctx context.Context, playerID int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = avatarKey
	return nil
}

type fakeGameRepo struct {
	games map[int]*models.Game
}

func newFakeGameRepo(games ...*models.Game) *fakeGameRepo {
	r := &fakeGameRepo{games: map[int]*models.Game{}}
	for _, g := range games {
		r.games[g.ID] = g
	}
	return r
}

func (r *fakeGameRepo) Create(ctx context.Context, game *models.Game) error {
	for _, g := range r.games {
		if g.Name == game.Name {
			return repositories.ErrGameNameConflict
		}
	}
	game.ID = len(r.games) + 1
	r.games[game.ID] = game
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return g, nil
}

func (r *fakeGameRepo) GetByName(ctx context.Context, name string) (*models.Game, error) {
	for _, g := range r.games {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, repositories.ErrGameNotFound
}

func (r *fakeGameRepo) List(ctx context.Context) ([]*models.Game, error) {
	out := make([]*models.Game, 0, len(r.games))
	for id := 1; id <= len(r.games); id++ {
		if g, ok := r.games[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// fakeTxRunner runs the unit of work directly; the fakes ignore the
// executor anyway.
type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	r.calls++
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournament *models.Tournament
	groupA     []models.Player
	groupB     []models.Player

	// injectConflicts makes the next N version-checked writes behave as
	// if a concurrent writer won the race first.
	injectConflicts int
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = 1
	t.Version = 1
	r.tournament = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if r.tournament == nil || r.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *r.tournament
	return &cp, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	if r.tournament == nil {
		return nil, nil
	}
	cp := *r.tournament
	return []*models.Tournament{&cp}, nil
}

func (r *fakeTournamentRepo) SetGroups(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupA, groupB []models.Player) error {
	r.groupA = groupA
	r.groupB = groupB
	return nil
}

func (r *fakeTournamentRepo) GetGroups(ctx context.Context, tournamentID int) ([]models.Player, []models.Player, error) {
	return r.groupA, r.groupB, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, expectedVersion int) error {
	if r.tournament == nil || r.tournament.ID != id {
		return repositories.ErrTournamentNotFound
	}
	if r.injectConflicts > 0 {
		r.injectConflicts--
		r.tournament.Version++
		return repositories.ErrTournamentConflict
	}
	if r.tournament.Version != expectedVersion {
		return repositories.ErrTournamentConflict
	}
	r.tournament.Status = status
	r.tournament.Version++
	return nil
}

func (r *fakeTournamentRepo) BumpVersion(ctx context.Context, exec repositories.SQLExecutor, id int, expectedVersion int) error {
	if r.tournament == nil || r.tournament.ID != id {
		return repositories.ErrTournamentNotFound
	}
	if r.injectConflicts > 0 {
		r.injectConflicts--
		r.tournament.Version++
		return repositories.ErrTournamentConflict
	}
	if r.tournament.Version != expectedVersion {
		return repositories.ErrTournamentConflict
	}
	r.tournament.Version++
	return nil
}

type fakeDuelMatchRepo struct {
	matches       []*models.DuelMatch
	updateCalls   int
	lastWinnerID  *int
	lastScore     *string
	lastUpdatedID int
}

func (r *fakeDuelMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.DuelMatch) error {
	match.ID = len(r.matches) + 1
	r.matches = append(r.matches, match)
	return nil
}

func (r *fakeDuelMatchRepo) GetByID(ctx context.Context, id int) (*models.DuelMatch, error) {
	for _, m := range r.matches {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrDuelMatchNotFound
}

func (r *fakeDuelMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.DuelMatch, error) {
	out := make([]*models.DuelMatch, 0, len(r.matches))
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDuelMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, winnerID *int, score *string) error {
	r.updateCalls++
	r.lastUpdatedID = id
	r.lastWinnerID = winnerID
	r.lastScore = score
	for _, m := range r.matches {
		if m.ID == id {
			m.WinnerID = winnerID
			m.Score = score
			return nil
		}
	}
	return repositories.ErrDuelMatchNotFound
}

type fakeRoyaleMatchRepo struct {
	matches     []*models.RoyaleMatch
	updateCalls int
}

func (r *fakeRoyaleMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.RoyaleMatch) error {
	match.ID = len(r.matches) + 1
	r.matches = append(r.matches, match)
	return nil
}

func (r *fakeRoyaleMatchRepo) GetByID(ctx context.Context, id int) (*models.RoyaleMatch, error) {
	for _, m := range r.matches {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoyaleMatchNotFound
}

func (r *fakeRoyaleMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.RoyaleMatch, error) {
	out := make([]*models.RoyaleMatch, 0, len(r.matches))
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRoyaleMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, winnerID *int, advancerIDs []int) error {
	r.updateCalls++
	for _, m := range r.matches {
		if m.ID == id {
			m.WinnerID = winnerID
			if len(advancerIDs) > 0 {
				m.AdvancerIDs = advancerIDs
			}
			return nil
		}
	}
	return repositories.ErrRoyaleMatchNotFound
}

type fakeUploader struct {
	uploads []string
	deletes []string
	objects map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, err
	}
	u.objects[key] = buf.Bytes()
	u.uploads = append(u.uploads, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	delete(u.objects, key)
	u.deletes = append(u.deletes, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeBroadcaster struct {
	messages []interface{}
	rooms    []string
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.rooms = append(b.rooms, roomID)
	b.messages = append(b.messages, message)
}
