package reports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
)

// Module implements http.Module for the reporting context.
type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{handler: NewHandler(NewRepository(pool))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes mounts the report routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/reports"))
}

var _ apphttp.Module = (*Module)(nil)
