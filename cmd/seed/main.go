package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/officegames/tournament-hub/config"
	"github.com/officegames/tournament-hub/db"
	"github.com/officegames/tournament-hub/engine"
	"github.com/officegames/tournament-hub/models"
	"github.com/officegames/tournament-hub/repositories"
	"github.com/officegames/tournament-hub/services"
)

type seedPlayer struct {
	name  string
	games []string
}

var seedPlayers = []seedPlayer{
	{"Bishworup Mollik", []string{"Krunker", "Table Tennis"}},
	{"Sohan", []string{"Table Tennis"}},
	{"Saurov Chandra Biswas", []string{"Table Tennis"}},
	{"Shofiqur Rahman", []string{"Krunker", "Table Tennis"}},
	{"Imtiaz Cho", []string{"Table Tennis"}},
	{"Hiranmoy Das Chowdhury", []string{"Krunker", "Chess"}},
	{"Rasel Hossain", []string{"Krunker", "Table Tennis", "Chess"}},
	{"Nihal Azmain", []string{"Krunker", "Table Tennis", "Chess"}},
	{"Abdul Wahab", []string{"Chess"}},
	{"Sourav Roy", []string{"Krunker", "Table Tennis"}},
	{"Sadi", []string{"Table Tennis", "Chess", "Programming"}},
	{"Rudro Debnath", []string{"Krunker", "Table Tennis", "Chess", "Programming"}},
	{"Neaj Morshad", []string{"Table Tennis", "Programming"}},
	{"Sajib Kumar Chowdhury", []string{"Table Tennis", "Chess", "Programming"}},
	{"Md. Rafi Alam", []string{"Krunker", "Table Tennis", "Programming"}},
	{"Samiul Haque", []string{"Krunker", "Table Tennis", "Chess", "Programming"}},
	{"Zubair Ahmed Rafi", []string{"Krunker", "Table Tennis", "Chess", "Programming"}},
	{"Zahidul Islam", []string{"Table Tennis"}},
	{"Arnob", []string{"Table Tennis", "Chess"}},
}

var seedGames = []models.Game{
	{Name: "Table Tennis", Format: models.FormatHeadToHead},
	{Name: "Krunker", Format: models.FormatBattleRoyale},
	{Name: "Chess", Format: models.FormatHeadToHead},
	{Name: "Programming", Format: models.FormatHeadToHead},
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbConn.Close()

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	duelMatchRepo := repositories.NewPostgresDuelMatchRepository(dbConn)
	royaleMatchRepo := repositories.NewPostgresRoyaleMatchRepository(dbConn)

	playerService := services.NewPlayerService(playerRepo, nil, logger)
	gameService := services.NewGameService(gameRepo)
	tournamentService := services.NewTournamentService(
		services.NewSQLTxRunner(dbConn),
		tournamentRepo,
		gameRepo,
		playerRepo,
		duelMatchRepo,
		royaleMatchRepo,
		engine.NewGroupPartitioner(nil),
		nil,
		logger,
	)

	ctx := context.Background()

	for _, game := range seedGames {
		if _, err := gameService.Create(ctx, game.Name, game.Format); err != nil {
			if errors.Is(err, services.ErrGameNameConflict) {
				logger.Info("game already present", slog.String("game", game.Name))
				continue
			}
			logger.Error("failed to seed game", slog.String("game", game.Name), slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("game seeded", slog.String("game", game.Name))
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range seedPlayers {
		p := p
		g.Go(func() error {
			if _, err := playerService.Register(gCtx, p.name, p.games); err != nil {
				if errors.Is(err, services.ErrPlayerNameConflict) {
					logger.Info("player already present", slog.String("name", p.name))
					return nil
				}
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("failed to seed players", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("players seeded", slog.Int("count", len(seedPlayers)))

	for _, game := range seedGames {
		tournament, err := tournamentService.CreateTournament(ctx, game.Name)
		if err != nil {
			logger.Error("failed to create tournament", slog.String("game", game.Name), slog.Any("error", err))
			os.Exit(1)
		}
		if _, err := tournamentService.ScheduleGroupStage(ctx, tournament.ID); err != nil {
			logger.Error("failed to schedule group stage",
				slog.String("game", game.Name),
				slog.Int("tournament_id", tournament.ID),
				slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("tournament seeded",
			slog.String("game", game.Name),
			slog.Int("tournament_id", tournament.ID),
			slog.Int("group_a", len(tournament.GroupA)),
			slog.Int("group_b", len(tournament.GroupB)))
	}

	logger.Info("seeding complete")
}
