// Package opportunities is the deal pipeline bounded context: lead
// conversion and opportunity CRUD.
package opportunities

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/opportunities/handler"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/service"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

// Module implements http.Module for the opportunities context.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the opportunities repository, service and handler. The
// conversion gate reads leads through the shared leads repository.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leadsrepo.New(pool), bus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// Service exposes the opportunities service to other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the opportunity routes and the lead conversion route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/opportunities"))
	m.handler.RegisterConvertRoute(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
