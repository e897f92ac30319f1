package todos

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"
)

// Module implements http.Module for the todos context.
type Module struct {
	handler *Handler
	repo    *Repository
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "todos"
}

// Repo exposes the todos repository; the reminder worker reads todos through
// it.
func (m *Module) Repo() *Repository {
	return m.repo
}

// RegisterRoutes mounts the todo routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/todos"))
}

var _ apphttp.Module = (*Module)(nil)
