package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veripass/internal/platform/config"
	"veripass/internal/platform/database"
	"veripass/internal/platform/health"
	"veripass/internal/platform/kafka"
	"veripass/internal/platform/kafka/producer"
	"veripass/internal/platform/logger"
	"veripass/internal/platform/redis"
	"veripass/internal/validation/handler"
	valmetrics "veripass/internal/validation/metrics"
	"veripass/internal/validation/service"
	"veripass/internal/validation/store/ledger"
	"veripass/pkg/platform/audit/publisher"
	kafkasink "veripass/pkg/platform/audit/sink/kafka"
	auditmemory "veripass/pkg/platform/audit/store/memory"
	"veripass/pkg/platform/middleware/admin"
	"veripass/pkg/platform/middleware/metadata"
	"veripass/pkg/platform/middleware/ratelimit"
	"veripass/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing veripass",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", len(cfg.Kafka.Brokers) > 0,
	)

	healthHandler := health.New(cfg.Environment)

	ledgerStore, pool, err := buildLedger(cfg, log, healthHandler)
	if err != nil {
		log.Error("ledger init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // process is exiting
	}

	auditor, closeAudit, err := buildAuditor(cfg, log, healthHandler)
	if err != nil {
		log.Error("audit init failed", "error", err)
		os.Exit(1)
	}
	defer closeAudit()

	svc := service.NewService(ledgerStore,
		service.WithLogger(log),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(valmetrics.New()),
	)

	router := buildRouter(cfg, log, svc, healthHandler)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// buildLedger selects the ledger backing store. Postgres when DATABASE_URL is
// set, in-memory otherwise, with an optional Redis read-through cache.
func buildLedger(cfg config.Server, log *slog.Logger, healthHandler *health.Handler) (ledger.Store, *database.Pool, error) {
	var store ledger.Store = ledger.NewInMemory()
	var pool *database.Pool

	if cfg.Database.URL != "" {
		var err error
		pool, err = database.New(database.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		store = ledger.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	} else {
		log.Warn("DATABASE_URL not set, using in-memory ledger")
	}

	if cfg.Redis.URL != "" {
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store = ledger.NewCached(store, client.Client, cfg.Redis.CacheTTL, log, nil)
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Health(ctx)
		})
	}

	return store, pool, nil
}

// buildAuditor selects the audit backend. Events go to Kafka when brokers are
// configured, otherwise to an in-memory store. Either way they pass through
// the async publisher so emission never blocks a validation run.
func buildAuditor(cfg config.Server, log *slog.Logger, healthHandler *health.Handler) (*publisher.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) > 0 {
		prod, err := producer.New(producer.Config{
			Brokers:         strings.Join(cfg.Kafka.Brokers, ","),
			Acks:            "all",
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		checker := kafka.NewHealthChecker(cfg.Kafka.Brokers)
		healthHandler.RegisterCheck(checker.Name(), func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return checker.Check(ctx)
		})
		sink := kafkasink.NewSink(prod, cfg.Kafka.AuditTopic)
		pub := publisher.NewPublisher(sink,
			publisher.WithAsyncBuffer(256),
			publisher.WithPublisherLogger(log),
		)
		return pub, func() {
			pub.Close()
			_ = prod.Close()
		}, nil
	}

	log.Warn("KAFKA_BROKERS not set, audit events stay in memory")
	pub := publisher.NewPublisher(auditmemory.NewInMemoryStore(),
		publisher.WithAsyncBuffer(256),
		publisher.WithPublisherLogger(log),
	)
	return pub, pub.Close, nil
}

func buildRouter(cfg config.Server, log *slog.Logger, svc *service.Service, healthHandler *health.Handler) chi.Router {
	r := chi.NewRouter()

	meta := metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies})

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(meta.Handler)
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(request.NewMetrics()))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	if cfg.RateLimit > 0 {
		limiter := ratelimit.New(ratelimit.NewInMemoryStore(), cfg.RateLimit, cfg.RateLimitWindow, log)
		r.Use(limiter.PerIP)
	}

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	validationHandler := handler.New(svc, log)
	if cfg.AdminToken != "" {
		// Destructive and listing endpoints sit behind the admin token;
		// validation itself stays open to callers.
		r.Group(func(open chi.Router) {
			open.Post("/validations", validationHandler.HandleValidate)
		})
		r.Group(func(protected chi.Router) {
			protected.Use(admin.RequireAdminToken(cfg.AdminToken, log))
			protected.Get("/validations", validationHandler.HandleList)
			protected.Delete("/validations/{passportNumber}", validationHandler.HandleDelete)
		})
	} else {
		validationHandler.Register(r)
	}

	return r
}
