package transport

import (
	"nuvra_crm_backend/internal/leads/domain"
)

// ListLeadsRequest is bound from the list query string.
type ListLeadsRequest struct {
	Page  int `json:"page" form:"page" validate:"min=1"`
	Limit int `json:"limit" form:"limit" validate:"min=1,max=100"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type LeadListResponse struct {
	Items      []domain.Lead `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// UpdateLeadRequest is a partial update from the dashboard.
type UpdateLeadRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Phone         *string  `json:"phone"`
	Company       *string  `json:"company"`
	Notes         *string  `json:"notes"`
	Value         *float64 `json:"value" validate:"omitempty,gte=0"`
	Status        *string  `json:"status" validate:"omitempty,leadstatus"`
	Qualification *string  `json:"qualification" validate:"omitempty,qualification"`
}

// IngestResult is the outcome of a successful direct-API ingestion.
type IngestResult struct {
	Lead   domain.Lead
	Scored bool
}
