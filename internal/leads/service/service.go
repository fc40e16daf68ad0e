// Package service implements the lead ingestion pipeline and lead administration.
package service

import (
	"context"
	"errors"
	"maps"

	"nuvra_crm_backend/internal/events"
	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/internal/leads/repository"
	"nuvra_crm_backend/internal/leads/scoring"
	"nuvra_crm_backend/internal/leads/transport"
	"nuvra_crm_backend/internal/leads/validation"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound = "Lead not found"
	msgInvalidLead  = "Invalid lead data"
	msgNameRequired = "Name is required"
)

// Service orchestrates lead ingestion: authenticate, validate, score, persist, notify.
type Service struct {
	store     repository.LeadStore
	auth      ports.ProductAuthenticator
	validator *validation.Validator
	notifier  ports.LeadNotifier
	eventBus  events.Bus
	log       *logger.Logger
}

// New creates the lead service. A nil notifier disables downstream notification.
func New(store repository.LeadStore, auth ports.ProductAuthenticator, val *validation.Validator, notifier ports.LeadNotifier, eventBus events.Bus, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = ports.NoopNotifier{}
	}
	return &Service{
		store:     store,
		auth:      auth,
		validator: val,
		notifier:  notifier,
		eventBus:  eventBus,
		log:       log,
	}
}

// IngestDirect runs the authenticated direct-API path. Every terminal failure
// short-circuits before persistence.
func (s *Service) IngestDirect(ctx context.Context, credential string, body []byte) (transport.IngestResult, error) {
	log := s.log.WithContext(ctx)

	product, err := s.auth.Authenticate(ctx, credential)
	if err != nil {
		log.IngestionEvent(domain.StateRejectedAuth, string(domain.ChannelDirectAPI), "", "")
		return transport.IngestResult{}, err
	}

	draft, err := s.validator.Validate(body)
	if err != nil {
		log.IngestionEvent(domain.StateRejectedValidation, string(domain.ChannelDirectAPI), "", "")
		return transport.IngestResult{}, err
	}

	scored := false
	if draft.Qualification == "" {
		result := scoring.Score(draft)
		draft.Qualification = result.Qualification
		draft.Metadata = withScoring(draft.Metadata, result)
		scored = true
	}

	productID := product.ID
	draft.ProductID = &productID

	lead, err := s.store.Insert(ctx, draft)
	if err != nil {
		log.IngestionEvent(domain.StateRejectedStore, string(domain.ChannelDirectAPI), draft.Origin, "")
		log.DatabaseError("insert lead", err)
		return transport.IngestResult{}, apperr.Store(apperr.CodeInsertError, err).WithOp("leads.IngestDirect")
	}

	s.afterPersist(ctx, lead, &product, domain.ChannelDirectAPI, scored)
	log.IngestionEvent(domain.StatePersisted, string(domain.ChannelDirectAPI), lead.Origin, lead.ID.String())

	return transport.IngestResult{Lead: lead, Scored: scored}, nil
}

// CreateFromWebhook persists an adapter-normalized draft. Webhook drafts carry a
// pre-assigned qualification and are neither validated again nor scored.
func (s *Service) CreateFromWebhook(ctx context.Context, channel domain.Channel, draft domain.Draft) (domain.Lead, error) {
	log := s.log.WithContext(ctx)

	draft.ProductID = nil
	lead, err := s.store.Insert(ctx, draft)
	if err != nil {
		log.IngestionEvent(domain.StateRejectedStore, string(channel), draft.Origin, "")
		log.DatabaseError("insert webhook lead", err)
		return domain.Lead{}, apperr.Store(apperr.CodeSaveFailed, err).WithOp("leads.CreateFromWebhook")
	}

	s.afterPersist(ctx, lead, nil, channel, false)
	log.IngestionEvent(domain.StatePersisted, string(channel), lead.Origin, lead.ID.String())

	return lead, nil
}

// afterPersist runs the best-effort steps. Neither may change the outcome.
func (s *Service) afterPersist(ctx context.Context, lead domain.Lead, product *ports.AuthenticatedProduct, channel domain.Channel, scored bool) {
	s.notifier.NotifyLeadCreated(ctx, ports.LeadNotification{Lead: lead, Product: product})

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.LeadIngested{
			BaseEvent:     events.NewBaseEvent(),
			LeadID:        lead.ID,
			ProductID:     lead.ProductID,
			Origin:        lead.Origin,
			Qualification: lead.Qualification,
			Channel:       string(channel),
			Scored:        scored,
		})
	}
}

// List returns one page of leads. Pages past the end yield no items.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = transport.DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = transport.DefaultLimit
	}
	if req.Limit > transport.MaxLimit {
		req.Limit = transport.MaxLimit
	}

	leads, total, err := s.store.List(ctx, repository.ListParams{
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Store(apperr.CodeDatabaseError, err).WithOp("leads.List")
	}

	return transport.LeadListResponse{
		Items: leads,
		Pagination: transport.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: (total + req.Limit - 1) / req.Limit,
		},
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, mapStoreError(err, apperr.CodeDatabaseError)
	}
	return lead, nil
}

// Update applies a dashboard edit. Qualification changes are taken as given.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (domain.Lead, error) {
	name := sanitize.TextPtr(req.Name)
	if name != nil && *name == "" {
		return domain.Lead{}, apperr.Validation(msgInvalidLead).
			WithDetails([]validation.FieldViolation{{Field: "name", Message: msgNameRequired}})
	}

	lead, err := s.store.Update(ctx, id, repository.UpdateLeadParams{
		Name:          name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       sanitize.TextPtr(req.Company),
		Notes:         sanitize.TextPtr(req.Notes),
		Value:         req.Value,
		Status:        req.Status,
		Qualification: req.Qualification,
	})
	if err != nil {
		return domain.Lead{}, mapStoreError(err, apperr.CodeUpdateError)
	}
	return lead, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError(err, apperr.CodeDeleteError)
	}
	return nil
}

func mapStoreError(err error, code string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return apperr.Store(code, err)
}

func withScoring(metadata map[string]any, result scoring.Result) map[string]any {
	out := maps.Clone(metadata)
	if out == nil {
		out = map[string]any{}
	}
	out[domain.MetadataScoringKey] = result.AsMetadata()
	return out
}
