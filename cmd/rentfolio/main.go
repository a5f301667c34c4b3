package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/rentfolio/rentfolio/internal/app"
	"github.com/rentfolio/rentfolio/internal/applications"
	"github.com/rentfolio/rentfolio/internal/auth"
	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/maintenance"
	"github.com/rentfolio/rentfolio/internal/observability"
	"github.com/rentfolio/rentfolio/internal/platform/cache"
	"github.com/rentfolio/rentfolio/internal/platform/db"
	"github.com/rentfolio/rentfolio/internal/properties"
	"github.com/rentfolio/rentfolio/internal/shared"
	"github.com/rentfolio/rentfolio/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, cfg.BreakGlassList())

	adminAuth := auth.NewHandler(logger, authService, authz.ConsoleAdmin)
	landlordAuth := auth.NewHandler(logger, authService, authz.ConsoleLandlord)

	gate := authz.Middleware{Logger: logger}
	moderation := shared.NewModerationRecorder(pool, logger)

	enqueuer, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := enqueuer.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	propertiesRepo := properties.NewRepository(pool)
	propertiesService := properties.NewService(propertiesRepo, moderation, enqueuer, logger)
	propertiesHandler := properties.NewHandler(logger, propertiesService, gate)

	applicationsRepo := applications.NewRepository(pool)
	applicationsService := applications.NewService(applicationsRepo, enqueuer, logger)
	applicationsHandler := applications.NewHandler(logger, applicationsService, gate)

	maintenanceRepo := maintenance.NewRepository(pool)
	maintenanceService := maintenance.NewService(maintenanceRepo, enqueuer, logger)
	maintenanceHandler := maintenance.NewHandler(logger, maintenanceService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Auth:                authService,
		Gate:                gate,
		AdminAuthHandler:    adminAuth,
		LandlordAuthHandler: landlordAuth,
		PropertiesHandler:   propertiesHandler,
		ApplicationsHandler: applicationsHandler,
		MaintenanceHandler:  maintenanceHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
