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

	"github.com/Dosada05/tournament-ops/announcer"
	"github.com/Dosada05/tournament-ops/config"
	"github.com/Dosada05/tournament-ops/db"
	"github.com/Dosada05/tournament-ops/handlers"
	"github.com/Dosada05/tournament-ops/migrations"
	"github.com/Dosada05/tournament-ops/repositories"
	api "github.com/Dosada05/tournament-ops/routes"
	"github.com/Dosada05/tournament-ops/scheduler"
	"github.com/Dosada05/tournament-ops/services"
	"github.com/Dosada05/tournament-ops/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, db.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
		MaxIdleTime: cfg.DBConnMaxIdleTime,
	}, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := migrations.Run(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Хранилище документов (Cloudflare R2); без ключей регистрация принимает только данные
	documents := storage.NewDisabledStore()
	if cfg.StorageEnabled() {
		documents, err = storage.NewCloudflareR2Store(context.Background(), storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			URLExpiry:       cfg.DocumentURLTTL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 document store initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 credentials not set, document uploads are disabled")
	}

	var resultsAnnouncer services.ResultsAnnouncer
	if cfg.DiscordEnabled() {
		discord, err := announcer.NewDiscord(cfg.DiscordBotToken, cfg.DiscordResultsChannelID)
		if err != nil {
			logger.Error("failed to initialize Discord announcer", slog.Any("error", err))
			os.Exit(1)
		}
		resultsAnnouncer = discord
		logger.Info("Discord results announcer enabled")
	}

	// Инициализация репозиториев
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	adminRepo := repositories.NewPostgresAdminRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn, logger)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(adminRepo, logger)
	seasonService := services.NewSeasonService(seasonRepo, logger)
	standingsService := services.NewStandingsService(teamRepo, matchRepo, seasonRepo, standingRepo, logger)
	teamService := services.NewTeamService(teamRepo, seasonRepo, documents, services.NewEmailService(cfg, logger), logger)
	matchService := services.NewMatchService(
		txManager,
		matchRepo,
		teamRepo,
		seasonRepo,
		standingsService,
		resultsAnnouncer,
		cfg.RoomRevealLead,
		logger,
	)
	dashboardService := services.NewDashboardService(seasonRepo, teamRepo, matchRepo, logger)
	logger.Info("Services initialized")

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to seed admin account", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Планировщик пересчёта таблиц
	reconciler := scheduler.New(standingsService, logger)
	reconciler.RunNow()
	if err := reconciler.Start(cfg.ReconcileSchedule); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
			RequestTimeout: 30 * time.Second,
		},
		api.Handlers{
			Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenTTL),
			Season:    handlers.NewSeasonHandler(seasonService, standingsService),
			Match:     handlers.NewMatchHandler(matchService),
			Team:      handlers.NewTeamHandler(teamService, standingsService),
			Dashboard: handlers.NewDashboardHandler(dashboardService),
			Health:    handlers.HealthCheck(logger, dbConn),
		},
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		reconciler.Stop(shutdownCtx)

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
