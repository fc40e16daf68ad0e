// Package service implements integration administration and connectivity tests.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nuvra_crm_backend/internal/integrations/notifier"
	"nuvra_crm_backend/internal/integrations/repository"
	"nuvra_crm_backend/internal/integrations/transport"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	statusActive    = "active"
	statusInactive  = "inactive"
	statusAvailable = "available"

	msgNotFound    = "Integration not found"
	msgNoURL       = "Integration has no URL configured"
	msgTestPassed  = "Test completed successfully"
	msgTestFailed  = "Test failed"
	pingTimeout    = 2 * time.Second
	sampleLeadName = "Teste Nuvra"
)

type Store interface {
	Create(ctx context.Context, p repository.CreateParams) (repository.Integration, error)
	List(ctx context.Context) ([]repository.Integration, error)
	Get(ctx context.Context, id uuid.UUID) (repository.Integration, error)
	MarkTriggered(ctx context.Context, id uuid.UUID) error
	InsertLog(ctx context.Context, l repository.Log) error
	ListLogs(ctx context.Context, integrationID uuid.UUID) ([]repository.Log, error)
}

// Poster sends outbound webhook requests.
type Poster interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, payload any) (notifier.Response, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	store  Store
	poster Poster
	n8nURL string
	db     Pinger
	log    *logger.Logger
}

func New(store Store, poster Poster, n8nURL string, db Pinger, log *logger.Logger) *Service {
	return &Service{store: store, poster: poster, n8nURL: n8nURL, db: db, log: log}
}

// Overview lists configured integrations and the status of the built-in ones.
func (s *Service) Overview(ctx context.Context) (transport.Overview, error) {
	configured, err := s.store.List(ctx)
	if err != nil {
		return transport.Overview{}, apperr.Store(apperr.CodeDatabaseError, err)
	}
	return transport.Overview{Configured: configured, Builtin: s.builtin(ctx)}, nil
}

func (s *Service) builtin(ctx context.Context) []transport.BuiltinStatus {
	n8n := statusInactive
	if s.n8nURL != "" {
		n8n = statusActive
	}

	database := statusInactive
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		if s.db.Ping(pingCtx) == nil {
			database = statusActive
		}
		cancel()
	}

	return []transport.BuiltinStatus{
		{Name: "n8n Automation", Type: repository.TypeWebhook, Status: n8n, Endpoint: s.n8nURL,
			Description: "Sends new leads to n8n for automation workflows"},
		{Name: "Meta Ads", Type: repository.TypeWebhook, Status: statusAvailable, Endpoint: "/api/v1/webhooks/meta",
			Description: "Receives leads from Meta Ads campaigns"},
		{Name: "External Forms", Type: repository.TypeWebhook, Status: statusAvailable, Endpoint: "/api/v1/webhooks/form",
			Description: "Receives leads from external forms (Google Forms, Typeform, etc)"},
		{Name: "PostgreSQL Database", Type: "database", Status: database,
			Description: "Primary data storage for leads and products"},
	}
}

func (s *Service) Create(ctx context.Context, req transport.CreateIntegrationRequest) (repository.Integration, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	it, err := s.store.Create(ctx, repository.CreateParams{
		Name:    strings.TrimSpace(req.Name),
		Type:    req.Type,
		URL:     strings.TrimSpace(req.URL),
		Headers: req.Headers,
		Active:  active,
	})
	if err != nil {
		return repository.Integration{}, apperr.Store(apperr.CodeInsertError, err)
	}
	s.log.WithContext(ctx).Info("integration created", "integrationId", it.ID, "type", it.Type)
	return it, nil
}

// Test posts a sample lead to the integration URL. Every attempt writes one log
// row and stamps last_triggered_at, whatever the outcome.
func (s *Service) Test(ctx context.Context, id uuid.UUID) (transport.TestResult, error) {
	it, err := s.get(ctx, id)
	if err != nil {
		return transport.TestResult{}, err
	}
	if it.URL == "" {
		return transport.TestResult{}, apperr.BadRequest(msgNoURL).WithCode(apperr.CodeNoURL)
	}

	payload := samplePayload(time.Now().UTC())
	entry := repository.Log{IntegrationID: it.ID, EventType: repository.EventTest, Payload: payload}

	resp, postErr := s.poster.PostJSON(ctx, it.URL, it.Headers, payload)
	switch {
	case postErr != nil:
		msg := postErr.Error()
		entry.Status = repository.LogError
		entry.ErrorMessage = &msg
	case resp.OK():
		entry.Status = repository.LogSuccess
		entry.Metadata = map[string]any{"status_code": resp.StatusCode, "response": resp.Body}
	default:
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Body)
		entry.Status = repository.LogError
		entry.ErrorMessage = &msg
		entry.Metadata = map[string]any{"status_code": resp.StatusCode, "response": resp.Body}
	}

	log := s.log.WithContext(ctx)
	if err := s.store.InsertLog(ctx, entry); err != nil {
		log.DatabaseError("insert integration log", err)
	}
	if err := s.store.MarkTriggered(ctx, it.ID); err != nil {
		log.DatabaseError("mark integration triggered", err)
	}

	if postErr != nil {
		log.Warn("integration test failed", "integrationId", it.ID, "error", postErr)
		return transport.TestResult{}, apperr.Wrap(apperr.KindInternal, "Webhook call failed: "+postErr.Error(), postErr).
			WithCode(apperr.CodeWebhookFailed)
	}

	log.Info("integration test finished", "integrationId", it.ID, "status", entry.Status, "statusCode", resp.StatusCode)
	result := transport.TestResult{Status: entry.Status, Message: msgTestPassed, StatusCode: resp.StatusCode}
	if entry.Status != repository.LogSuccess {
		result.Message = msgTestFailed
	}
	return result, nil
}

// Logs returns the latest log rows of an integration.
func (s *Service) Logs(ctx context.Context, id uuid.UUID) ([]repository.Log, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	logs, err := s.store.ListLogs(ctx, id)
	if err != nil {
		return nil, apperr.Store(apperr.CodeDatabaseError, err)
	}
	return logs, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (repository.Integration, error) {
	it, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Integration{}, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return repository.Integration{}, apperr.Store(apperr.CodeDatabaseError, err)
	}
	return it, nil
}

func samplePayload(now time.Time) map[string]any {
	return map[string]any{
		"test":      true,
		"timestamp": now.Format(time.RFC3339),
		"sample_lead": map[string]any{
			"name":   sampleLeadName,
			"email":  "teste@nuvra.com",
			"phone":  "+5511999999999",
			"origin": "integrations_test",
		},
	}
}
