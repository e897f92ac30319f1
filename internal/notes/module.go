package notes

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/validator"
)

// Module implements http.Module for lead notes.
type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, leadsrepo.New(pool), val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notes"
}

// RegisterRoutes mounts the note routes under the leads prefix.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
