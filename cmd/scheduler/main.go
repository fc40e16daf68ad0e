package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nuvra_crm_backend/internal/integrations/notifier"
	"nuvra_crm_backend/internal/scheduler"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GetN8NWebhookURL() == "" {
		log.Warn("N8N_WEBHOOK_URL not configured; queued lead notifications will be dropped")
	}

	deliverer := notifier.NewHTTPNotifier(cfg, log)

	worker, err := scheduler.NewWorker(cfg, deliverer, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
