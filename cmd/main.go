package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/config"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/directory"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/handlers"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/logger"
	hostauth "github.com/SimpnicServerTeam/scs-user-federation/internal/middleware"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository/memory"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository/postgres"
	redis_repo "github.com/SimpnicServerTeam/scs-user-federation/internal/repository/redis"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository/sqlite"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/router"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/server"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	startupCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout+5*time.Second)
	defer cancel()

	querier, closeStore, err := openStore(startupCtx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open user store")
	}
	defer closeStore()

	dialect, _ := query.DialectFor(cfg.Database.Driver)
	builder, err := query.NewBuilder(dialect, cfg.Database.Schema)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid user store schema")
	}

	adapter := directory.NewAdapter(querier, builder, cfg.InstanceID,
		directory.WithQueryTimeout(cfg.Database.QueryTimeout),
	)

	attemptRepo, closeAttempts := openAttemptStore(cfg)
	defer closeAttempts()

	federationService := service.NewFederationService(adapter, attemptRepo, cfg.Lockout)

	auth, err := hostauth.NewHostAuth(startupCtx, cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Str("mode", cfg.Auth.Mode).Msg("Failed to set up host authentication")
	}

	app := server.New(server.Options{RateLimit: cfg.RateLimit})
	router.SetupFederationRoutes(app, handlers.NewFederationHandler(federationService), auth)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info().Str("port", cfg.Port).Str("instance", cfg.InstanceID).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 10*time.Second)
	defer cancelShutdown()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully.")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Querier, func(), error) {
	if cfg.Driver == query.SQLite.Name {
		store, err := sqlite.Open(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Bootstrap(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		log.Warn().Str("dsn", cfg.URL).Msg("Using sqlite user store, intended for development only")
		return store, func() { _ = store.Close() }, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.NewStore(pool)
	return store, store.Close, nil
}

func openAttemptStore(cfg *config.Config) (repository.AttemptRepository, func()) {
	if cfg.Lockout.MaxFailures <= 0 {
		log.Info().Msg("Credential lockout disabled")
		return nil, func() {}
	}

	if cfg.Lockout.Store == config.AttemptStoreRedis {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		return redis_repo.NewRedisAttemptRepository(redisClient), func() {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		}
	}

	repo := memory.NewMemoryAttemptRepository(time.Minute)
	return repo, repo.StopCleanup
}
