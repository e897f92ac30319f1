// Package leads is the lead pipeline bounded context: lead CRUD, the call
// logging engine, follow-up queries and bulk operations.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/leads/handler"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/service"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

// Module implements http.Module for the leads context.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the leads repository, service and handler. The reminder
// scheduler is optional; pass nil to disable callback reminders.
func NewModule(pool *pgxpool.Pool, bus events.Bus, reminders service.ReminderScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, reminders, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the leads service to other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the leads and follow-up routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterFollowUpRoutes(ctx.Protected.Group("/follow-ups"))
}

var _ apphttp.Module = (*Module)(nil)
