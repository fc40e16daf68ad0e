package ports

import (
	"context"

	"nuvra_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// AuthenticatedProduct is what the ingestion pipeline knows about the caller.
type AuthenticatedProduct struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductAuthenticator resolves an API credential to an enabled product.
// Errors are *apperr.Error values carrying missing_api_key, invalid_api_key,
// api_disabled or database_error.
type ProductAuthenticator interface {
	Authenticate(ctx context.Context, credential string) (AuthenticatedProduct, error)
}

// LeadNotification is the payload handed to the automation notifier.
type LeadNotification struct {
	Lead    domain.Lead
	Product *AuthenticatedProduct
}

// LeadNotifier dispatches persisted leads to downstream automation.
// Implementations must not block the caller beyond a bounded timeout and
// must record their own failures.
type LeadNotifier interface {
	NotifyLeadCreated(ctx context.Context, n LeadNotification)
}

// NoopNotifier is used when no automation endpoint is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLeadCreated(context.Context, LeadNotification) {}
