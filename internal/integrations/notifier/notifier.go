package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/logger"
)

// EventLeadCreated is the event name sent to the automation endpoint.
const EventLeadCreated = "lead.created"

const target = "n8n"

// LeadPayload is the document posted for every persisted lead.
type LeadPayload struct {
	Event     string      `json:"event"`
	Lead      domain.Lead `json:"lead"`
	Product   string      `json:"product,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewLeadPayload builds the automation document for n.
func NewLeadPayload(n ports.LeadNotification) LeadPayload {
	payload := LeadPayload{Event: EventLeadCreated, Lead: n.Lead, Timestamp: time.Now().UTC()}
	if n.Product != nil {
		payload.Product = n.Product.Name
	}
	return payload
}

// Enqueuer hands notifications to a background queue.
type Enqueuer interface {
	EnqueueLeadNotification(ctx context.Context, n ports.LeadNotification) error
}

// New picks the dispatch mode: disabled without a URL, queued when an enqueuer
// is available, otherwise an in-process goroutine.
func New(cfg config.NotifierConfig, queue Enqueuer, log *logger.Logger) ports.LeadNotifier {
	if cfg.GetN8NWebhookURL() == "" {
		log.Warn("N8N_WEBHOOK_URL not configured, lead notifications disabled")
		return ports.NoopNotifier{}
	}
	if queue != nil {
		return &QueuedNotifier{queue: queue, timeout: cfg.GetNotifierTimeout(), log: log}
	}
	return NewHTTPNotifier(cfg, log)
}

// HTTPNotifier posts lead notifications directly to the automation endpoint.
type HTTPNotifier struct {
	client  *Client
	url     string
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewHTTPNotifier(cfg config.NotifierConfig, log *logger.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		client:  NewClient(cfg.GetNotifierTimeout()),
		url:     cfg.GetN8NWebhookURL(),
		timeout: cfg.GetNotifierTimeout(),
		log:     log,
	}
}

// NotifyLeadCreated dispatches in the background, detached from the request.
// Failures are logged and never reach the caller.
func (n *HTTPNotifier) NotifyLeadCreated(ctx context.Context, notification ports.LeadNotification) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.Deliver(ctx, notification); err != nil {
			n.log.WithContext(ctx).NotificationFailed(target, notification.Lead.ID.String(), err)
			return
		}
		n.log.WithContext(ctx).Debug("lead notification delivered", "target", target, "leadId", notification.Lead.ID)
	}()
}

// Deliver posts one notification synchronously.
func (n *HTTPNotifier) Deliver(ctx context.Context, notification ports.LeadNotification) error {
	resp, err := n.client.PostJSON(ctx, n.url, nil, NewLeadPayload(notification))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("automation endpoint returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (n *HTTPNotifier) Wait() {
	n.wg.Wait()
}

// QueuedNotifier enqueues notifications for the scheduler worker.
type QueuedNotifier struct {
	queue   Enqueuer
	timeout time.Duration
	log     *logger.Logger
}

func (q *QueuedNotifier) NotifyLeadCreated(ctx context.Context, notification ports.LeadNotification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()

	if err := q.queue.EnqueueLeadNotification(ctx, notification); err != nil {
		q.log.WithContext(ctx).NotificationFailed(target, notification.Lead.ID.String(), err)
	}
}
