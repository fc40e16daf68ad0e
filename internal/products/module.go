// Package products provides the product catalog and API key bounded context.
package products

import (
	"regexp"

	"nuvra_crm_backend/internal/events"
	apphttp "nuvra_crm_backend/internal/http"
	"nuvra_crm_backend/internal/products/handler"
	"nuvra_crm_backend/internal/products/repository"
	"nuvra_crm_backend/internal/products/service"
	"nuvra_crm_backend/platform/db"
	"nuvra_crm_backend/platform/logger"
	"nuvra_crm_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Module is the products bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the products module and registers its validation tags.
func NewModule(pool db.DBTX, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	err := val.RegisterValidation("productslug", func(fl govalidator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, err
	}

	svc := service.New(repository.New(pool), eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

func (m *Module) Name() string {
	return "products"
}

// Authenticator exposes API key authentication to the leads module.
func (m *Module) Authenticator() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProductRoutes(ctx.Admin.Group("/products"))
	m.handler.RegisterKeyRoutes(ctx.Admin.Group("/keys"))
}

var _ apphttp.Module = (*Module)(nil)
