// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"nuvra_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadIngested is published after a lead has been persisted by any ingestion channel.
type LeadIngested struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	ProductID     *uuid.UUID `json:"productId,omitempty"`
	Origin        string     `json:"origin"`
	Qualification string     `json:"qualification"`
	Channel       string     `json:"channel"`
	Scored        bool       `json:"scored"`
}

func (e LeadIngested) EventName() string { return "lead.ingested" }

// =============================================================================
// Products Domain Events
// =============================================================================

// APIKeyRevoked is published when an API key stops authenticating.
type APIKeyRevoked struct {
	BaseEvent
	KeyID     uuid.UUID `json:"keyId"`
	ProductID uuid.UUID `json:"productId"`
}

func (e APIKeyRevoked) EventName() string { return "products.api_key.revoked" }
