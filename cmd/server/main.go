package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtiassist/internal/cache"
	"rtiassist/internal/config"
	"rtiassist/internal/llm"
	"rtiassist/internal/logging"
	"rtiassist/internal/service"
	"rtiassist/internal/transport/rest"
	"rtiassist/internal/transport/rest/handler"
	"rtiassist/internal/transport/rest/middleware"
	"rtiassist/internal/web"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Letter body provider
	logger.Info("ai config",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model),
		zap.Bool("api_key_configured", cfg.AI.IsEnabled()))
	completer, err := llm.NewCompleter(ctx, cfg.AI)
	if err != nil {
		logger.Fatal("failed to create llm client", zap.Error(err))
	}

	// Session store: Redis when configured, in-process LRU otherwise
	var sessions cache.SessionCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			logger.Fatal("failed to ping redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		sessions = cache.NewSessionCache(rdb, cfg.SessionTTL)
	} else {
		logger.Warn("REDIS_URI not set, keeping sessions in memory", zap.Int("size", cfg.SessionCacheSz))
		sessions = cache.NewMemorySessionCache(cfg.SessionCacheSz, cfg.SessionTTL)
	}

	if cfg.UsesDefaultSecret() {
		logger.Warn("SESSION_SECRET not set, using development secret")
	}

	// Backend
	backend := service.NewBackendClient(cfg.APIBase, cfg.BackendTimeout, logger)
	statusCtx, statusCancel := context.WithTimeout(ctx, 5*time.Second)
	if status, err := backend.Health(statusCtx); err != nil {
		logger.Warn("backend not reachable at startup", zap.String("api_base", cfg.APIBase), zap.Error(err))
	} else {
		logger.Info("backend reachable", zap.String("api_base", cfg.APIBase), zap.String("version", status.Version))
	}
	statusCancel()

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	// Initialize services
	tokens := service.NewSessionTokenService(cfg.SessionSecret, cfg.SessionTTL)
	wizardSvc := service.NewWizardService(sessions, backend, backend, logger)
	letterBodySvc := service.NewLetterBodyService(completer, logger)

	container := &rest.Container{
		Wizard:     handler.NewWizardHandler(wizardSvc, renderer, logger),
		LetterBody: handler.NewLetterBodyHandler(letterBodySvc, logger),
		Sessions:   middleware.NewSessionMiddleware(tokens, cfg.Env != "local", logger),
		Logger:     logger,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.Strings("endpoints", []string{
				"GET  /",
				"POST /wizard/complaint",
				"POST /wizard/officer",
				"POST /wizard/letter",
				"POST /wizard/back",
				"GET  /wizard/download",
				"POST /v1/letters",
				"GET  /health",
			}))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
