// Package analytics provides read-side lead aggregation.
package analytics

import (
	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/platform/db"
	"nuvra_crm_backend/platform/logger"
)

type Module struct {
	handler *Handler
}

func NewModule(pool db.DBTX, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(NewService(NewRepository(pool), log))}
}

func (m *Module) Name() string {
	return "analytics"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/analytics", m.handler.HandleReport)
	ctx.V1.GET("/sources", m.handler.HandleSources)
}

var _ apphttp.Module = (*Module)(nil)
