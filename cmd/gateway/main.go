package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playvault/client-gateway/internal/api"
	"github.com/playvault/client-gateway/internal/core/service"
	"github.com/playvault/client-gateway/internal/infrastructure/config"
	mongodb "github.com/playvault/client-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/playvault/client-gateway/internal/infrastructure/db/redis"
	"github.com/playvault/client-gateway/internal/infrastructure/platform"
	"github.com/playvault/client-gateway/internal/infrastructure/queue"
	"github.com/playvault/client-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.CookieSecret == "" {
		log.Fatal().Msg("COOKIE_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	defer redisClient.Close()

	mongoClient, analyticsDB, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo unavailable")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	upstream := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout, log)
	sessionStore := redisdb.NewSessionStore(redisClient, cfg.SessionTTL)
	sessions := service.NewSessionService(upstream, sessionStore, log).
		WithReplayGuard(redisdb.NewReplayGuard(redisClient))

	dispatcher := queue.NewDispatcher(cfg.AnalyticsWorkers, mongodb.NewAnalyticsRecorder(analyticsDB), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Platform:  upstream,
		Analytics: dispatcher,
		HealthChecks: map[string]func(context.Context) error{
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
			"mongodb": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, nil)
			},
		},
		CookieSecret: cfg.CookieSecret,
		SessionTTL:   cfg.SessionTTL,
		Logger:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
