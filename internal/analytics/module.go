package analytics

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
)

// Module implements http.Module for the analytics context.
type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{handler: NewHandler(NewRepository(pool))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts the analytics routes. The per-agent scoreboard is
// admin-only; the rest is scoped to the caller.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/analytics"))
	ctx.Admin.GET("/analytics/agents", m.handler.Agents)
}

var _ apphttp.Module = (*Module)(nil)
