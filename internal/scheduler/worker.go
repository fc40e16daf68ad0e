package scheduler

import (
	"context"
	"fmt"
	"time"

	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Deliverer posts a lead notification synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, n ports.LeadNotification) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	deliverer Deliverer
	timeout   time.Duration
	log       *logger.Logger
}

// WorkerConfig combines the config interfaces needed by the worker.
type WorkerConfig interface {
	config.SchedulerConfig
	config.NotifierConfig
}

func NewWorker(cfg WorkerConfig, deliverer Deliverer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		deliverer: deliverer,
		timeout:   cfg.GetNotifierTimeout(),
		log:       log,
	}

	mux.HandleFunc(TaskLeadNotify, w.handleLeadNotify)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleLeadNotify delivers one queued notification. Delivery failures are
// logged and acknowledged; notifications are never retried.
func (w *Worker) handleLeadNotify(ctx context.Context, task *asynq.Task) error {
	n, err := ParseLeadNotifyPayload(task)
	if err != nil {
		return fmt.Errorf("parse lead notify payload: %w: %w", err, asynq.SkipRetry)
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.deliverer.Deliver(ctx, n); err != nil {
		w.log.NotificationFailed("n8n", n.Lead.ID.String(), err)
		return nil
	}

	w.log.Info("queued lead notification delivered", "leadId", n.Lead.ID)
	return nil
}
