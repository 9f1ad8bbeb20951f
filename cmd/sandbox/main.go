package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connect-client/config"
	"connect-client/internal/adapter/credentials"
	httpHandler "connect-client/internal/adapter/http/handler"
	"connect-client/internal/adapter/metrics"
	memoryStorage "connect-client/internal/adapter/storage/memory"
	redisStorage "connect-client/internal/adapter/storage/redis"
	"connect-client/internal/core/ports"
	"connect-client/internal/service"
	"connect-client/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load(os.Getenv("WCC_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("sandbox", cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Sandbox.TokenKey == "" || cfg.Sandbox.TokenSecret == "" {
		log.Fatal().Msg("sandbox.token_key and sandbox.token_secret are required")
	}
	gin.SetMode(cfg.Sandbox.Mode)

	log.Info().
		Str("mode", cfg.Sandbox.Mode).
		Int("port", cfg.Sandbox.Port).
		Str("nonce_store", cfg.Sandbox.NonceStore).
		Msg("Starting Connect sandbox")

	ctx := context.Background()

	var (
		nonces   ports.NonceStore
		checkers []ports.HealthChecker
	)
	switch cfg.Sandbox.NonceStore {
	case config.OptionsBackendRedis:
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		nonces = redisStorage.NewNonceStore(rdb)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	default:
		nonces = memoryStorage.NewNonceStore()
	}

	deps := httpHandler.RouterDeps{
		Secrets:        credentials.StaticSecrets{cfg.Sandbox.TokenKey: cfg.Sandbox.TokenSecret},
		Signatures:     service.NewHMACSignatureService(),
		Nonces:         nonces,
		HealthCheckers: checkers,
		Logger:         log,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewService(prometheus.DefaultRegisterer)
		deps.MetricsHandler = promhttp.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	router := httpHandler.SetupRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Sandbox.Host, cfg.Sandbox.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
