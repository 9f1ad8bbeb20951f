package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"connect-client/config"
	"connect-client/internal/adapter/credentials"
	"connect-client/internal/adapter/hostenv"
	"connect-client/internal/adapter/metrics"
	memoryStorage "connect-client/internal/adapter/storage/memory"
	pgStorage "connect-client/internal/adapter/storage/postgres"
	redisStorage "connect-client/internal/adapter/storage/redis"
	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/internal/service"
	"connect-client/pkg/apperror"
	"connect-client/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	version      = "1.0.0"
	flushTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load(os.Getenv("WCC_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("connect-check", cfg.Log.Level, cfg.Log.Pretty)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Str("kind", string(apperror.KindOf(err))).Msg("Connection test failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Connect.Timeout+10*time.Second)
	defer cancel()

	deps := service.ClientDeps{
		Config: service.ClientConfig{
			ServerURL:  cfg.Connect.ServerURL,
			APIVersion: cfg.Connect.APIVersion,
			Locale:     cfg.Connect.Locale,
			Accept:     cfg.Connect.Accept,
		},
		Host:      hostenv.NewStatic(cfg.Store, version),
		Transport: service.NewHTTPTransport(service.NewHTTPClient(cfg.Connect.Timeout)),
		Logger:    log,
	}

	var checkers []ports.HealthChecker
	switch cfg.Options.Backend {
	case config.OptionsBackendRedis:
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		deps.Options = redisStorage.NewOptionStore(rdb)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	case config.OptionsBackendPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()
		deps.Options = pgStorage.NewOptionStore(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))

		requestLog := service.NewRequestLogService(pgStorage.NewRequestLogRepo(pool), log)
		deps.RequestLog = requestLog
		// Runs before pool.Close.
		defer flushRequestLog(requestLog, log)
	default:
		deps.Options = memoryStorage.NewOptionStore(nil)
	}

	var cipher ports.EncryptionService
	if cfg.Credentials.AESKey != "" {
		c, err := credentials.NewSecretCipher(cfg.Credentials.AESKey)
		if err != nil {
			return fmt.Errorf("loading credentials cipher: %w", err)
		}
		cipher = c
	}
	creds, err := credentials.NewStaticProvider(cfg.Credentials, deps.Options, cipher)
	if err != nil {
		return err
	}
	deps.Credentials = creds

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewService(prometheus.DefaultRegisterer)
	}

	if err := checkDependencies(ctx, checkers, log); err != nil {
		return err
	}

	client, err := service.NewClient(deps)
	if err != nil {
		return err
	}

	log.Info().Str("server", client.URL("")).Msg("Testing connection")
	outcome, err := client.AuthTest(ctx)
	if err != nil {
		return err
	}

	if err := deps.Options.Set(ctx, domain.OptionLastHeartbeat, strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
		log.Warn().Err(err).Msg("Failed to record heartbeat")
	}
	log.Info().Interface("response", outcome.Value).Msg("Connection OK")
	return nil
}

// checkDependencies pings the option backend so an outage is reported as such
// rather than as a failed connection test.
func checkDependencies(ctx context.Context, checkers []ports.HealthChecker, log zerolog.Logger) error {
	for _, checker := range checkers {
		if err := checker.Ping(ctx); err != nil {
			return fmt.Errorf("%s unhealthy: %w", checker.Name(), err)
		}
		log.Debug().Str("dependency", checker.Name()).Msg("dependency healthy")
	}
	return nil
}

func flushRequestLog(requestLog *service.RequestLogService, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := requestLog.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("request log not fully persisted")
	}
}
