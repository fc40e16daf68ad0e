package transport

import "nuvra_crm_backend/internal/integrations/repository"

type CreateIntegrationRequest struct {
	Name    string            `json:"name" validate:"required,min=1,max=200"`
	Type    string            `json:"type" validate:"required,oneof=n8n meta_ads form webhook custom"`
	URL     string            `json:"url" validate:"omitempty,url"`
	Headers map[string]string `json:"headers"`
	Active  *bool             `json:"active"`
}

// BuiltinStatus describes an integration that is part of the deployment rather than configured.
type BuiltinStatus struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Endpoint    string `json:"endpoint,omitempty"`
	Description string `json:"description"`
}

type Overview struct {
	Configured []repository.Integration `json:"configured"`
	Builtin    []BuiltinStatus          `json:"builtin"`
}

type TestResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}
