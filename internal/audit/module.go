package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/httpkit"
)

// Module subscribes to deletion events and exposes the admin-only audit list.
type Module struct {
	repo *Repository
}

// NewModule wires the audit repository and registers the event subscriptions.
// The deleting services publish synchronously, so a failed insert propagates
// back to them.
func NewModule(pool *pgxpool.Pool, bus events.Bus) *Module {
	m := &Module{repo: NewRepository(pool)}

	bus.Subscribe(events.LeadDeleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadDeleted)
		if !ok {
			return nil
		}
		return m.repo.Record(ctx, RecordParams{
			EntityType: "lead",
			EntityID:   e.LeadID,
			EntityName: e.CompanyName,
			DeletedBy:  e.DeletedByID,
			Details:    e.Details,
		})
	}))

	bus.Subscribe(events.OpportunityDeleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.OpportunityDeleted)
		if !ok {
			return nil
		}
		return m.repo.Record(ctx, RecordParams{
			EntityType: "opportunity",
			EntityID:   e.OpportunityID,
			EntityName: e.Name,
			DeletedBy:  e.DeletedByID,
			Details:    e.Details,
		})
	}))

	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// RegisterRoutes mounts the admin-only audit log listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit-logs", m.list)
}

func (m *Module) list(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request", "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := m.repo.List(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, entries)
}

var _ apphttp.Module = (*Module)(nil)
