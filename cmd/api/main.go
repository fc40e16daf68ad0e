package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nuvra_crm_backend/internal/analytics"
	"nuvra_crm_backend/internal/events"
	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/internal/http/router"
	"nuvra_crm_backend/internal/integrations"
	"nuvra_crm_backend/internal/integrations/notifier"
	"nuvra_crm_backend/internal/leads"
	"nuvra_crm_backend/internal/products"
	"nuvra_crm_backend/internal/scheduler"
	"nuvra_crm_backend/internal/webhook"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/db"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	if closeStream := initEventStream(cfg, eventBus, log); closeStream != nil {
		defer closeStream()
	}
	defer eventBus.Wait()

	queue, closeQueue := initNotificationQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	productsModule, err := products.NewModule(pool, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize products module", "error", err)
		panic("failed to initialize products module: " + err.Error())
	}

	leadNotifier := notifier.New(cfg, queue, log)
	if inflight, ok := leadNotifier.(interface{ Wait() }); ok {
		defer inflight.Wait()
	}
	leadsModule := leads.NewModule(pool, productsModule.Authenticator(), leadNotifier, eventBus, val, cfg, log)
	webhookModule := webhook.NewModule(leadsModule.Service(), cfg, log)
	integrationsModule := integrations.NewModule(pool, pool, cfg, val, log)
	analyticsModule := analytics.NewModule(pool, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			productsModule,
			leadsModule,
			webhookModule,
			integrationsModule,
			analyticsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initNotificationQueue returns the asynq client when Redis is configured.
// Without it, notifications are delivered in-process.
func initNotificationQueue(cfg config.SchedulerConfig, log *logger.Logger) (notifier.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Info("REDIS_URL not configured; lead notifications are delivered in-process")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initEventStream(cfg config.EventStreamConfig, bus events.Bus, log *logger.Logger) func() {
	if cfg.GetAMQPURL() == "" {
		log.Info("AMQP_URL not configured; domain events stay in-process")
		return nil
	}

	stream, err := events.DialStream(cfg, log)
	if err != nil {
		log.Error("failed to connect event stream", "error", err)
		return nil
	}
	stream.Attach(bus)
	log.Info("event stream connected", "exchange", cfg.GetAMQPExchange())

	return func() {
		_ = stream.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
