package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	"github.com/cassiomorais/hutko-gateway/internal/bootstrap"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/config"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/hutko-gateway/internal/infrastructure/redis"
	"github.com/cassiomorais/hutko-gateway/internal/repository/postgres"
	"github.com/cassiomorais/hutko-gateway/pkg/retry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const gatewayID = "hutko"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "hutko-gateway-worker", "hutko_gateway_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	tokenRepo := postgres.NewTokenRepository(app.Pool)

	// --- Processor client ---
	gatewayCfg := app.Config.Gateway
	clientOpts := append([]hutko.Option{
		hutko.WithAPIURL(gatewayCfg.APIURL),
		hutko.WithTimeout(gatewayCfg.RequestTimeout),
		hutko.WithLogger(app.Logger),
	}, app.ProcessorClientOptions()...)
	client := hutko.NewClient(gatewayCfg.Credentials(), clientOpts...)

	hooks := paymentApp.NewHooks()
	paymentApp.RegisterSubscriptionHooks(hooks, tokenRepo, gatewayID, app.Logger)
	locker := infraRedis.NewOrderLocker(app.Redis, gatewayCfg.LockTTL, app.Logger)

	renewUC := paymentApp.NewRenewSubscriptionUseCase(
		orderRepo, tokenRepo, client, locker, hooks, gatewayID, app.Logger,
	)

	app.Logger.Info().
		Dur("poll_interval", app.Config.Worker.RenewalPollInterval).
		Int("batch_size", app.Config.Worker.RenewalBatchSize).
		Msg("Renewal worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runRenewalLoop(gCtx, app.Logger, app.Metrics, app.Config.Worker, orderRepo, renewUC)
	})

	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

// runRenewalLoop periodically charges subscription orders that are due. Each
// order is renewed independently; one failed charge never blocks the batch.
func runRenewalLoop(
	ctx context.Context,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	cfg config.WorkerConfig,
	orders order.Repository,
	renewUC *paymentApp.RenewSubscriptionUseCase,
) error {
	ticker := time.NewTicker(cfg.RenewalPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		start := time.Now()
		cutoff := time.Now().Add(-cfg.RenewalLeadTime)

		due, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() ([]*order.Order, error) {
			return orders.ListDueRenewals(ctx, cutoff, cfg.RenewalBatchSize)
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list due renewals")
			continue
		}

		for _, o := range due {
			if err := renewUC.Execute(ctx, o.ID); err != nil {
				logger.Error().Err(err).Str("reference", o.Reference).Msg("Renewal failed")
				metrics.RenewalsProcessed.WithLabelValues("failure").Inc()
			} else {
				metrics.RenewalsProcessed.WithLabelValues("success").Inc()
			}
		}

		metrics.RenewalBatchDuration.Observe(time.Since(start).Seconds())
		if len(due) > 0 {
			logger.Info().Int("count", len(due)).Msg("Renewal batch processed")
		}
	}
}
