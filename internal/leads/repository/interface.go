package repository

import (
	"context"

	"nuvra_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ListParams selects one page of leads.
type ListParams struct {
	Limit  int
	Offset int
}

// UpdateLeadParams carries a partial lead update. Nil fields are left untouched.
type UpdateLeadParams struct {
	Name          *string
	Email         *string
	Phone         *string
	Company       *string
	Notes         *string
	Value         *float64
	Status        *string
	Qualification *string
}

// LeadWriter persists new leads.
type LeadWriter interface {
	Insert(ctx context.Context, d domain.Draft) (domain.Lead, error)
}

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
}

// LeadEditor changes or removes existing leads.
type LeadEditor interface {
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LeadStore is the full lead persistence contract.
type LeadStore interface {
	LeadWriter
	LeadReader
	LeadEditor
}

var _ LeadStore = (*Repository)(nil)
