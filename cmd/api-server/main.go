package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/api"
	"github.com/carebridge/clinic-backend/internal/auth"
	"github.com/carebridge/clinic-backend/internal/config"
	"github.com/carebridge/clinic-backend/internal/db"
	"github.com/carebridge/clinic-backend/internal/identity"
	"github.com/carebridge/clinic-backend/internal/profile"
	"github.com/carebridge/clinic-backend/internal/redisclient"
	"github.com/carebridge/clinic-backend/internal/schedule"
	"github.com/carebridge/clinic-backend/internal/setup"
)

const version = "0.3.0"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log = log.Level(level)

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	signer := auth.NewTokenSigner(cfg.JWTSecret, cfg.JWTTTL)

	identityRepo := identity.NewPgRepository(pgPool)
	profileRepo := profile.NewPgRepository(pgPool)
	profiles := profile.NewStore(profileRepo, identityRepo, log)
	ids := identity.NewService(identityRepo, profiles, signer, log)

	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	scheduleRepo := schedule.NewPgRepository(pgPool)
	sched := schedule.NewService(scheduleRepo, locker, log)

	tokens := redisclient.NewSetupTokenStore(rdb, cfg.SetupTokenTTL)
	setupSvc := setup.NewService(ids, tokens, cfg.AdminSetupSecret, cfg.IsDev(), log)

	router := api.NewRouter(api.RouterConfig{
		Identity: ids,
		Profiles: profiles,
		Schedule: sched,
		Setup:    setupSvc,
		Signer:   signer,
		PgPool:   pgPool,
		Redis:    rdb,
		Logger:   log,
		Env:      cfg.Env,
		Version:  version,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("api-server stopped")
}
