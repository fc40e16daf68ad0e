package webhook

import (
	"context"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadCreator persists webhook drafts. Satisfied by the leads service.
type LeadCreator interface {
	CreateFromWebhook(ctx context.Context, channel domain.Channel, draft domain.Draft) (domain.Lead, error)
}

var missingFieldsMessage = map[domain.Channel]string{
	domain.ChannelMeta: "Missing required fields",
	domain.ChannelForm: "Missing required fields (email or name)",
}

// Service turns raw webhook payloads into persisted leads.
type Service struct {
	creator LeadCreator
	log     *logger.Logger
}

// NewService creates a new webhook service.
func NewService(creator LeadCreator, log *logger.Logger) *Service {
	return &Service{creator: creator, log: log}
}

// Receive guards, normalizes and persists a payload, returning the new lead id.
// Payloads without an email or name are rejected before normalization.
func (s *Service) Receive(ctx context.Context, payload Payload) (uuid.UUID, error) {
	log := s.log.WithContext(ctx)
	channel := payload.Channel()

	if !payload.HasIdentity() {
		log.IngestionEvent(domain.StateRejectedValidation, string(channel), "", "")
		return uuid.Nil, apperr.BadRequest(missingFieldsMessage[channel]).WithCode(apperr.CodeInvalidPayload)
	}

	draft := payload.Normalize()
	log.Debug("webhook payload adapted", "channel", channel, "origin", draft.Origin)

	lead, err := s.creator.CreateFromWebhook(ctx, channel, draft)
	if err != nil {
		return uuid.Nil, err
	}
	return lead.ID, nil
}
