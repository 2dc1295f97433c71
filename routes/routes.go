package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-ops/handlers"
	"github.com/Dosada05/tournament-ops/middleware"
	"github.com/Dosada05/tournament-ops/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type Handlers struct {
	Auth      *handlers.AuthHandler
	Season    *handlers.SeasonHandler
	Match     *handlers.MatchHandler
	Team      *handlers.TeamHandler
	Dashboard *handlers.DashboardHandler
	Health    http.HandlerFunc
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	if opts.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	optionalAuth := middleware.OptionalAuthenticate(opts.JWTSecret)
	adminOnly := chi.Chain(
		middleware.Authenticate(opts.JWTSecret),
		middleware.RequireRole(models.RoleAdmin),
	)

	router.Get("/healthz", h.Health)
	router.Get("/openapi.json", handlers.OpenAPIHandler())
	router.Get("/docs/*", handlers.SwaggerUIHandler("/openapi.json"))

	router.Post("/auth/login", h.Auth.Login)
	router.With(adminOnly...).Get("/dashboard", h.Dashboard.Stats)

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/", h.Season.ListSeasons)
		r.Get("/{id}", h.Season.GetSeason)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.Season.CreateSeason)
			r.Post("/{id}/complete", h.Season.CompleteSeason)
			r.Post("/{id}/recompute", h.Season.RecomputeStandings)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		// Публичные маршруты; токен администратора открывает пароль комнаты
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", h.Match.ListMatches)
			r.Get("/{id}", h.Match.GetMatch)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/add", h.Match.CreateMatch)
			r.Put("/{id}", h.Match.UpdateMatch)
			r.Post("/{id}/teams", h.Match.AddTeams)
			r.Post("/{id}/finish", h.Match.FinishMatch)
			r.Delete("/{id}", h.Match.DeleteMatch)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Post("/register", h.Team.RegisterTeam)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", h.Team.ListTeams)
			r.Get("/{id}", h.Team.GetTeam)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Put("/update", h.Team.UpdateStats)
			r.Put("/{id}/verify", h.Team.VerifyTeam)
		})
	})
}
