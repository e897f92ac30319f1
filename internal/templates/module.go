package templates

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"
)

// Module implements http.Module for the email template library.
type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(NewRepository(pool), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "templates"
}

// RegisterRoutes mounts the email template routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/email-templates"))
}

var _ apphttp.Module = (*Module)(nil)
