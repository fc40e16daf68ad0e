package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerConfig struct {
	redisURL string
	queue    string
}

func (c schedulerConfig) GetRedisURL() string               { return c.redisURL }
func (c schedulerConfig) GetRedisTLSInsecure() bool         { return false }
func (c schedulerConfig) GetAsynqQueueName() string         { return c.queue }
func (c schedulerConfig) GetAsynqConcurrency() int          { return 1 }
func (c schedulerConfig) GetN8NWebhookURL() string          { return "http://n8n.local/hook" }
func (c schedulerConfig) GetNotifierTimeout() time.Duration { return time.Second }

type fakeDeliverer struct {
	got []ports.LeadNotification
	err error
}

func (f *fakeDeliverer) Deliver(_ context.Context, n ports.LeadNotification) error {
	f.got = append(f.got, n)
	return f.err
}

func notification() ports.LeadNotification {
	return ports.LeadNotification{
		Lead:    domain.Lead{ID: uuid.New(), Draft: domain.Draft{Name: "Ana", Email: "a@x.com", Origin: domain.OriginAPI}},
		Product: &ports.AuthenticatedProduct{ID: uuid.New(), Name: "Site", Slug: "site"},
	}
}

func TestEnqueueLeadNotification(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := schedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "crm"}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	n := notification()
	require.NoError(t, client.EnqueueLeadNotification(context.Background(), n))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() { _ = inspector.Close() }()

	tasks, err := inspector.ListPendingTasks("crm")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskLeadNotify, tasks[0].Type)
	assert.Equal(t, 0, tasks[0].MaxRetry)

	parsed, err := ParseLeadNotifyPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	require.NoError(t, err)
	assert.Equal(t, n.Lead.ID, parsed.Lead.ID)
	assert.Equal(t, "Site", parsed.Product.Name)
}

func TestNewClientRequiresRedis(t *testing.T) {
	_, err := NewClient(schedulerConfig{})
	assert.Error(t, err)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.EnqueueLeadNotification(context.Background(), notification()))
	assert.NoError(t, c.Close())
}

func TestHandleLeadNotify(t *testing.T) {
	deliverer := &fakeDeliverer{}
	w := &Worker{deliverer: deliverer, timeout: time.Second, log: logger.Nop()}

	n := notification()
	task, err := NewLeadNotifyTask(n)
	require.NoError(t, err)

	require.NoError(t, w.handleLeadNotify(context.Background(), task))
	require.Len(t, deliverer.got, 1)
	assert.Equal(t, n.Lead.ID, deliverer.got[0].Lead.ID)
}

func TestHandleLeadNotifySwallowsDeliveryFailure(t *testing.T) {
	w := &Worker{deliverer: &fakeDeliverer{err: errors.New("502")}, log: logger.Nop()}
	task, err := NewLeadNotifyTask(notification())
	require.NoError(t, err)

	assert.NoError(t, w.handleLeadNotify(context.Background(), task))
}

func TestHandleLeadNotifyRejectsBadPayload(t *testing.T) {
	w := &Worker{deliverer: &fakeDeliverer{}, log: logger.Nop()}

	err := w.handleLeadNotify(context.Background(), asynq.NewTask(TaskLeadNotify, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}
