// Package webhook provides the public Meta Ads and form webhook bounded context module.
package webhook

import (
	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the webhook module with all its dependencies.
func NewModule(leadCreator LeadCreator, cfg config.WebhookConfig, log *logger.Logger) *Module {
	service := NewService(leadCreator, log)
	return &Module{handler: NewHandler(service, cfg.GetMetaVerifyToken())}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhooks")
	if ctx.WebhookRateLimit != nil {
		group.Use(ctx.WebhookRateLimit)
	}

	group.POST("/meta", m.handler.HandleMetaLead)
	group.GET("/meta", m.handler.HandleMetaVerification)
	group.POST("/form", m.handler.HandleFormLead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
