// Package integrations provides the integrations bounded context module:
// configured outbound webhooks, their test runs and logs.
package integrations

import (
	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/internal/integrations/handler"
	"nuvra_crm_backend/internal/integrations/notifier"
	"nuvra_crm_backend/internal/integrations/repository"
	"nuvra_crm_backend/internal/integrations/service"
	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/db"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/validator"
)

// Module is the integrations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the integrations module. health may be nil.
func NewModule(pool db.DBTX, health service.Pinger, cfg config.NotifierConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(
		repository.New(pool),
		notifier.NewClient(cfg.GetNotifierTimeout()),
		cfg.GetN8NWebhookURL(),
		health,
		log,
	)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "integrations"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/integrations"))
}

var _ apphttp.Module = (*Module)(nil)
