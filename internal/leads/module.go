// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"nuvra_crm_backend/internal/events"
	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/internal/leads/handler"
	"nuvra_crm_backend/internal/leads/ports"
	"nuvra_crm_backend/internal/leads/repository"
	"nuvra_crm_backend/internal/leads/service"
	"nuvra_crm_backend/internal/leads/validation"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/db"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool db.DBTX, auth ports.ProductAuthenticator, notifier ports.LeadNotifier, eventBus events.Bus, val *validator.Validator, cfg config.PhoneConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	leadValidator := validation.New(val, cfg.GetPhoneDefaultRegion())
	svc := service.New(repo, auth, leadValidator, notifier, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the ingestion service for the webhook module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
