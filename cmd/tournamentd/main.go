package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/officegames/tournament-hub/config"
	"github.com/officegames/tournament-hub/db"
	"github.com/officegames/tournament-hub/engine"
	"github.com/officegames/tournament-hub/handlers"
	"github.com/officegames/tournament-hub/live"
	"github.com/officegames/tournament-hub/repositories"
	"github.com/officegames/tournament-hub/routes"
	"github.com/officegames/tournament-hub/services"
	"github.com/officegames/tournament-hub/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Avatar storage is optional; without credentials the upload
	// endpoint reports 503 and everything else works.
	var uploader storage.FileUploader
	if cfg.AvatarStorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("avatar storage initialized")
	} else {
		logger.Warn("avatar storage not configured, uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	duelMatchRepo := repositories.NewPostgresDuelMatchRepository(dbConn)
	royaleMatchRepo := repositories.NewPostgresRoyaleMatchRepository(dbConn)

	partitioner := engine.NewGroupPartitioner(nil)
	txRunner := services.NewSQLTxRunner(dbConn)

	playerService := services.NewPlayerService(playerRepo, uploader, logger)
	gameService := services.NewGameService(gameRepo)
	tournamentService := services.NewTournamentService(
		txRunner,
		tournamentRepo,
		gameRepo,
		playerRepo,
		duelMatchRepo,
		royaleMatchRepo,
		partitioner,
		uploader,
		logger,
	)
	matchService := services.NewMatchService(
		txRunner,
		tournamentRepo,
		gameRepo,
		duelMatchRepo,
		royaleMatchRepo,
		wsHub,
		logger,
	)

	playerHandler := handlers.NewPlayerHandler(playerService)
	gameHandler := handlers.NewGameHandler(gameService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, matchService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, cfg.CORSOrigins, playerHandler, gameHandler, tournamentHandler, wsHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
