package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/api"
	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/service"
	"github.com/kikipackaging/backoffice/internal/core/session"
	"github.com/kikipackaging/backoffice/internal/infrastructure/db/memory"
	mongostore "github.com/kikipackaging/backoffice/internal/infrastructure/db/mongo"
	redisstore "github.com/kikipackaging/backoffice/internal/infrastructure/db/redis"
	"github.com/kikipackaging/backoffice/internal/infrastructure/http/handlers"
	"github.com/kikipackaging/backoffice/internal/infrastructure/queue"
	"github.com/kikipackaging/backoffice/internal/infrastructure/remote"
	"github.com/kikipackaging/backoffice/internal/pkg/config"
	"github.com/kikipackaging/backoffice/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Env: cfg.Env})

	ctx := context.Background()
	httpClient := &http.Client{Timeout: cfg.API.HTTPTimeout}
	checks := map[string]handlers.Check{
		"remote": handlers.RemoteCheck(cfg.API.BaseURL, cfg.API.AnonKey, httpClient),
	}

	// --- Credential and idempotency stores ---
	var (
		credentials ports.CredentialStore
		idempotency service.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		defer closeRedis(rdb, log)
		credentials = redisstore.NewCredentialStore(rdb, cfg.API.CredentialKey, log)
		idempotency = redisstore.NewIdempotencyStore(rdb)
		checks["redis"] = handlers.RedisCheck(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set; credentials are kept in memory")
		credentials = memory.NewCredentialStore()
		idempotency = memory.NewIdempotencyStore()
	}

	// --- Backend access ---
	authClient := remote.NewAuthClient(cfg.API.BaseURL, cfg.API.AnonKey, httpClient)
	tokens := service.NewTokenService(credentials, authClient, cfg.API.RefreshTimeout, logger.Component(log, "tokens"))
	pipe := remote.NewPipeline(cfg.API.BaseURL, cfg.API.AnonKey, tokens,
		remote.WithHTTPClient(httpClient),
		remote.WithLogger(logger.Component(log, "pipeline")),
	)
	rest := remote.NewRestStore(pipe)
	activityRepo := remote.NewActivityRepository(rest)

	// --- Activity recording ---
	sinks := []queue.Sink{{Name: "remote", ActivitySink: activityRepo}}
	if cfg.Activity.Mirror {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("connect to mongo")
		}
		defer func() {
			if err := mongostore.Disconnect(client); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()
		mirror := mongostore.NewActivityMirror(db)
		if err := mirror.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("activity mirror indexes not created")
		}
		sinks = append(sinks, queue.Sink{Name: "mongo", ActivitySink: mirror})
		checks["mongo"] = handlers.MongoCheck(db)
	}
	dispatcher := queue.NewActivityDispatcher(cfg.Activity.Workers, sinks, logger.Component(log, "activity"))
	dispatcher.Start()

	// --- Services ---
	sess := session.New()
	authService := service.NewAuthService(tokens, remote.NewUserRepository(rest, pipe), sess, dispatcher, activityRepo, logger.Component(log, "auth"))
	inventory := service.NewInventoryService(
		remote.NewProductRepository(rest),
		remote.NewOrderRepository(rest),
		idempotency,
		dispatcher,
		sess,
		logger.Component(log, "inventory"),
	)
	catalog := service.NewCatalogService(remote.NewProductRepository(rest), dispatcher, sess, logger.Component(log, "catalog"))
	accounts := service.NewAccountService(
		remote.NewUserRepository(rest, pipe),
		remote.NewInvitationRepository(rest),
		tokens,
		remote.NewFunctions(pipe),
		dispatcher,
		sess,
		logger.Component(log, "accounts"),
	)
	activity := service.NewActivityService(activityRepo, sess)

	if u, err := authService.RestoreSession(ctx); err == nil {
		log.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("session restored")
	} else if !errors.Is(err, domain.ErrNotAuthenticated) {
		log.Warn().Err(err).Msg("stored session discarded")
	}

	// --- HTTP server ---
	router := api.NewRouter(api.RouterConfig{
		Auth:         authService,
		Catalog:      catalog,
		Inventory:    inventory,
		Accounts:     accounts,
		Activity:     activity,
		HealthChecks: checks,
		Log:          logger.Component(log, "http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.API.HTTPTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("activity queue not fully drained")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
