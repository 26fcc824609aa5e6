package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	"github.com/cassiomorais/hutko-gateway/internal/bootstrap"
	"github.com/cassiomorais/hutko-gateway/internal/checkout"
	"github.com/cassiomorais/hutko-gateway/internal/controller"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/config"
	infraRedis "github.com/cassiomorais/hutko-gateway/internal/infrastructure/redis"
	"github.com/cassiomorais/hutko-gateway/internal/repository/postgres"
)

const gatewayID = "hutko"

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "hutko-gateway-api", "hutko_gateway")
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

	mode, err := checkout.ParseMode(gatewayCfg.IntegrationType)
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Invalid integration type")
	}
	selector := checkout.NewSelector(mode, checkout.MultiMethodOptions(), client)

	// --- Order behavior hooks ---
	hooks := paymentApp.NewHooks()
	paymentApp.RegisterPreorderHooks(hooks)
	paymentApp.RegisterSubscriptionHooks(hooks, tokenRepo, gatewayID, app.Logger)

	locker := infraRedis.NewOrderLocker(app.Redis, gatewayCfg.LockTTL, app.Logger)
	validator := hutko.NewValidator(client.Credentials())

	// --- Use cases ---
	sessionsUC := paymentApp.NewCreateSessionUseCase(
		orderRepo, selector, hooks,
		gatewayCfg.ResponseURL, gatewayCfg.CallbackURL,
		app.Logger,
	)
	callbacksUC := paymentApp.NewHandleCallbackUseCase(
		orderRepo, validator, locker, hooks,
		statusMapping(gatewayCfg),
		app.Logger,
	)
	refundsUC := paymentApp.NewRefundUseCase(orderRepo, client, locker, app.Logger)
	capturesUC := paymentApp.NewCapturePreorderUseCase(orderRepo, client, locker, app.Logger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:        app.Pool,
		RedisClient: app.Redis,
		OrderRepo:   orderRepo,
		Sessions:    sessionsUC,
		Callbacks:   callbacksUC,
		Refunds:     refundsUC,
		Captures:    capturesUC,
		Metrics:     app.Metrics,
		CORSConfig:  app.Config.Server.CORS,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Str("mode", string(mode)).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}

// statusMapping resolves the configured terminal statuses for declined and
// expired payments, falling back to the defaults on unknown values.
func statusMapping(cfg config.GatewayConfig) paymentApp.StatusMapping {
	m := paymentApp.DefaultStatusMapping()
	switch order.Status(cfg.DeclinedOrderStatus) {
	case order.StatusDeclined, order.StatusFailed:
		m.Declined = order.Status(cfg.DeclinedOrderStatus)
	}
	switch order.Status(cfg.ExpiredOrderStatus) {
	case order.StatusExpired, order.StatusDeclined, order.StatusFailed:
		m.Expired = order.Status(cfg.ExpiredOrderStatus)
	}
	return m
}
