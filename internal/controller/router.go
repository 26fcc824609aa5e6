package controller

import (
	"time"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/config"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/hutko-gateway/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	OrderRepo   order.Repository
	Sessions    *paymentApp.CreateSessionUseCase
	Callbacks   *paymentApp.HandleCallbackUseCase
	Refunds     *paymentApp.RefundUseCase
	Captures    *paymentApp.CapturePreorderUseCase
	Metrics     *observability.Metrics
	CORSConfig  config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	// Checkout session calls wait on the processor; its timeout plus headroom
	r.Use(chimw.Timeout(80 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.SecurityHeaders())
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	orderH := NewOrderController(deps.OrderRepo, deps.Sessions, deps.Refunds, deps.Captures, deps.Metrics)
	callbackH := NewCallbackController(deps.Callbacks, deps.Metrics)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	// Processor-facing notification endpoint, outside the versioned API
	r.Post("/callbacks/hutko", callbackH.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", orderH.Create)
		r.Get("/orders", orderH.List)
		r.Get("/orders/{id}", orderH.Get)
		r.Get("/orders/{id}/notes", orderH.GetNotes)
		r.Post("/orders/{id}/session", orderH.CreateSession)
		r.Post("/orders/{id}/refund", orderH.Refund)
		r.Post("/orders/{id}/capture", orderH.Capture)
	})

	return r
}
