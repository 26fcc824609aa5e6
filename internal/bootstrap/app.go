package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/config"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/hutko-gateway/internal/infrastructure/redis"
	"github.com/cassiomorais/hutko-gateway/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// App holds the shared infrastructure both binaries need: config, logging,
// metrics, the database pool and the redis client.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Metrics *observability.Metrics
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(serviceName, cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("instance", cfg.InstanceID).Msg("Starting")

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			go func() {
				<-ctx.Done()
				if err := observability.ShutdownTracer(tp); err != nil {
					logger.Warn().Err(err).Msg("Tracer shutdown failed")
				}
			}()
			logger.Info().Msg("Tracing enabled")
		}
	}

	metrics := observability.NewMetrics(metricsNamespace, nil)
	logger.Info().Msg("Metrics initialized")

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Msg("Connected to PostgreSQL")

	redisClient, err := infraRedis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Msg("Connected to Redis")

	return &App{
		Config:  cfg,
		Logger:  logger,
		Pool:    pool,
		Redis:   redisClient,
		Metrics: metrics,
	}, nil
}

func (a *App) Close() {
	a.Redis.Close()
	a.Pool.Close()
}

// ProcessorClientOptions returns the hutko client options that feed API
// request metrics and circuit breaker state into the registry.
func (a *App) ProcessorClientOptions() []hutko.Option {
	return []hutko.Option{
		hutko.WithObserver(func(endpoint string, elapsed time.Duration, err error) {
			result := "success"
			switch {
			case err == nil:
			case hutko.IsDeclined(err):
				result = "declined"
			default:
				result = "error"
			}
			a.Metrics.ProcessorRequestsTotal.WithLabelValues(endpoint, result).Inc()
			a.Metrics.ProcessorRequestSeconds.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		}),
		hutko.WithBreakerStateHook(func(name string, _, to gobreaker.State) {
			a.Metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}),
	}
}
