package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/lingo-api/internal/config"
	"github.com/phrazzld/lingo-api/internal/events"
	"github.com/phrazzld/lingo-api/internal/ledger"
	"github.com/phrazzld/lingo-api/internal/platform/postgres"
	"github.com/phrazzld/lingo-api/internal/platform/redis"
	"github.com/phrazzld/lingo-api/internal/scheduler"
	"github.com/phrazzld/lingo-api/internal/service"
	"github.com/phrazzld/lingo-api/internal/service/auth"
	"github.com/phrazzld/lingo-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger      *slog.Logger
	db          *sql.DB
	redisClient *goredis.Client

	// Stores (using interfaces for proper abstraction)
	progressStore  store.ProgressStore
	challengeStore store.ChallengeStore

	// Service interfaces
	jwtService         auth.JWTService
	progressService    *service.ProgressService
	challengeService   *service.ChallengeService
	leaderboardService *service.LeaderboardService

	// Event system and the single-writer mutation queue
	eventEmitter *events.InMemoryEventEmitter
	serializer   *ledger.Serializer

	// Periodic jobs
	scheduler *scheduler.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	app.jwtService = auth.NewHMACJWTService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute,
	)
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.challengeStore = postgres.NewPostgresChallengeStore(db, logger)

	// Initialize Redis-backed leaderboard
	var err error
	app.redisClient, err = setupRedis(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	leaderboardCache := redis.NewLeaderboardCache(app.redisClient, logger)

	// Initialize event emitter and the mutation serializer. All snapshot
	// writes flow through the serializer's single consumer.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.serializer = ledger.NewSerializer(
		app.progressStore,
		app.eventEmitter,
		cfg.Engine.QueueSize,
		logger,
	)
	app.serializer.Start()

	// Initialize services
	app.progressService = service.NewProgressService(
		app.progressStore,
		app.serializer,
		service.ProgressConfig{
			FreezeCostCoins:    cfg.Engine.FreezeCostCoins,
			FreezeWindow:       time.Duration(cfg.Engine.FreezeWindowHours) * time.Hour,
			FreezeCoversAnyGap: cfg.Engine.FreezeCoversAnyGap,
		},
		logger,
	)
	app.challengeService = service.NewChallengeService(
		app.challengeStore,
		app.progressStore,
		app.serializer,
		db,
		logger,
	)
	app.leaderboardService = service.NewLeaderboardService(leaderboardCache, logger)

	// Lesson completions auto-advance active challenges; XP changes feed
	// the weekly leaderboard.
	app.eventEmitter.RegisterHandler(app.challengeService)
	app.eventEmitter.RegisterHandler(app.leaderboardService)

	// Start the daily challenge rollover
	app.scheduler = scheduler.New(app.challengeService, logger)
	if err := app.scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop periodic jobs first so no new mutations are produced
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	// Drain the mutation queue before closing its backing stores
	if app.serializer != nil {
		app.serializer.Stop()
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
