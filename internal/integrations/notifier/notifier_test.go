package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierConfig struct {
	url     string
	timeout time.Duration
}

func (c notifierConfig) GetN8NWebhookURL() string          { return c.url }
func (c notifierConfig) GetNotifierTimeout() time.Duration { return c.timeout }

type recordingQueue struct {
	mu    sync.Mutex
	items []ports.LeadNotification
	err   error
}

func (q *recordingQueue) EnqueueLeadNotification(_ context.Context, n ports.LeadNotification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	return q.err
}

func sampleNotification() ports.LeadNotification {
	return ports.LeadNotification{
		Lead: domain.Lead{
			ID:    uuid.New(),
			Draft: domain.Draft{Name: "Ana", Email: "a@x.com", Origin: domain.OriginReferral, Qualification: domain.QualificationHot},
		},
		Product: &ports.AuthenticatedProduct{ID: uuid.New(), Name: "Landing Page", Slug: "landing"},
	}
}

func TestHTTPNotifierPostsLeadCreated(t *testing.T) {
	received := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var doc map[string]any
		_ = json.Unmarshal(body, &doc)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received <- doc
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewHTTPNotifier(notifierConfig{url: server.URL, timeout: time.Second}, logger.Nop())
	notification := sampleNotification()
	n.NotifyLeadCreated(context.Background(), notification)
	n.Wait()

	doc := <-received
	assert.Equal(t, EventLeadCreated, doc["event"])
	assert.Equal(t, "Landing Page", doc["product"])
	assert.NotEmpty(t, doc["timestamp"])
	lead, ok := doc["lead"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, notification.Lead.ID.String(), lead["id"])
	assert.Equal(t, "hot", lead["qualification"])
}

func TestHTTPNotifierSurvivesCanceledRequest(t *testing.T) {
	hits := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := NewHTTPNotifier(notifierConfig{url: server.URL, timeout: time.Second}, logger.Nop())
	n.NotifyLeadCreated(ctx, sampleNotification())
	cancel()
	n.Wait()

	select {
	case <-hits:
	default:
		t.Fatal("delivery must not be tied to the request context")
	}
}

func TestDeliverReportsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewHTTPNotifier(notifierConfig{url: server.URL, timeout: time.Second}, logger.Nop())
	err := n.Deliver(context.Background(), sampleNotification())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNotifierTimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	n := NewHTTPNotifier(notifierConfig{url: server.URL, timeout: 50 * time.Millisecond}, logger.Nop())

	start := time.Now()
	n.NotifyLeadCreated(context.Background(), sampleNotification())
	assert.Less(t, time.Since(start), 50*time.Millisecond, "dispatch must not block the caller")

	n.Wait()
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewSelectsMode(t *testing.T) {
	log := logger.Nop()

	_, disabled := New(notifierConfig{timeout: time.Second}, nil, log).(ports.NoopNotifier)
	assert.True(t, disabled)

	_, direct := New(notifierConfig{url: "http://n8n.local/hook", timeout: time.Second}, nil, log).(*HTTPNotifier)
	assert.True(t, direct)

	queue := &recordingQueue{}
	queued := New(notifierConfig{url: "http://n8n.local/hook", timeout: time.Second}, queue, log)
	require.IsType(t, &QueuedNotifier{}, queued)

	queued.NotifyLeadCreated(context.Background(), sampleNotification())
	assert.Len(t, queue.items, 1)
}

func TestQueuedNotifierSwallowsErrors(t *testing.T) {
	queue := &recordingQueue{err: errors.New("redis down")}
	q := &QueuedNotifier{queue: queue, timeout: time.Second, log: logger.Nop()}

	assert.NotPanics(t, func() { q.NotifyLeadCreated(context.Background(), sampleNotification()) })
	assert.Len(t, queue.items, 1)
}
