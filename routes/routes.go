package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/officegames/tournament-hub/handlers"
)

// SetupRoutes mounts the HTTP surface on the router. The result update
// endpoint is a PUT: reporting the same outcome twice is idempotent.
func SetupRoutes(
	router *chi.Mux,
	corsOrigins []string,
	playerHandler *handlers.PlayerHandler,
	gameHandler *handlers.GameHandler,
	tournamentHandler *handlers.TournamentHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/players", func(r chi.Router) {
		r.Post("/", playerHandler.RegisterPlayer)
		r.Get("/", playerHandler.ListPlayers)
		r.Get("/{name}", playerHandler.GetPlayerByName)
		r.Post("/{playerID}/games", playerHandler.AddGame)
		r.Post("/{playerID}/avatar", playerHandler.UploadAvatar)
	})

	router.Route("/games", func(r chi.Router) {
		r.Post("/", gameHandler.CreateGame)
		r.Get("/", gameHandler.ListGames)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateTournament)
		r.Get("/", tournamentHandler.ListTournaments)
		r.Get("/{tournamentID}", tournamentHandler.GetTournament)
		r.Post("/{tournamentID}/schedule", tournamentHandler.ScheduleGroupStage)
		r.Get("/{tournamentID}/standings", tournamentHandler.GetStandings)
		r.Put("/{tournamentID}/matches/{matchID}/result", tournamentHandler.RecordMatchResult)
	})

	router.Get("/ws/tournaments/{tournamentID}", wsHandler.ServeWs)
}
