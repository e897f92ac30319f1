package analytics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/platform/httpkit"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metrics", h.Metrics)
	rg.GET("/stage-distribution", h.StageDistribution)
	rg.GET("/opportunity-stage-distribution", h.OpportunityStageDistribution)
}

// effectiveScope narrows an admin scope to a single agent when the
// filterByAgentId query parameter is present. Non-admins cannot widen
// their scope; the parameter is ignored for them.
func effectiveScope(c *gin.Context) (authz.Scope, error) {
	scope := authz.ScopeFor(httpkit.MustGetIdentity(c))
	if !scope.Admin {
		return scope, nil
	}
	raw := c.Query("filterByAgentId")
	if raw == "" {
		return scope, nil
	}
	agentID, err := uuid.Parse(raw)
	if err != nil {
		return authz.Scope{}, err
	}
	return authz.Scope{UserID: agentID, Admin: false}, nil
}

func dateRange(c *gin.Context) (from, to *time.Time, err error) {
	if raw := c.Query("startDate"); raw != "" {
		t, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			return nil, nil, perr
		}
		// Inclusive end of day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	return from, to, nil
}

func (h *Handler) Metrics(c *gin.Context) {
	scope, err := effectiveScope(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	from, to, err := dateRange(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	ds, err := h.repo.Load(c.Request.Context(), scope, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ComputeMetrics(ds.Leads, ds.Calls, ds.Opps))
}

func (h *Handler) StageDistribution(c *gin.Context) {
	scope, err := effectiveScope(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	ds, err := h.repo.Load(c.Request.Context(), scope, nil, nil)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, DistributionFromLeads(ds.Leads))
}

func (h *Handler) OpportunityStageDistribution(c *gin.Context) {
	scope, err := effectiveScope(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	ds, err := h.repo.Load(c.Request.Context(), scope, nil, nil)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, DistributionFromOpps(ds.Opps))
}

// Agents serves the admin-only per-agent scoreboard.
func (h *Handler) Agents(c *gin.Context) {
	agents, err := h.repo.Agents(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	all := authz.Scope{Admin: true}
	ds, err := h.repo.Load(c.Request.Context(), all, nil, nil)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ComputeAgentMetrics(agents, ds.Leads, ds.Calls))
}
