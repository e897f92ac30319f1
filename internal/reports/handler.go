package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/platform/httpkit"
)

const msgInvalidRequest = "invalid request"

// defaultRangeDays bounds the activity report when the caller gives no range.
const defaultRangeDays = 30

type Handler struct {
	repo *Repository
	now  func() time.Time
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/daily", h.Daily)
	rg.GET("/weekly", h.Weekly)
	rg.GET("/loss-reasons", h.LossReasons)
}

func (h *Handler) activityRange(c *gin.Context) (from, to time.Time, err error) {
	to = h.now()
	from = to.AddDate(0, 0, -defaultRangeDays)
	if raw := c.Query("startDate"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		var end time.Time
		end, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return
		}
		to = end.Add(24*time.Hour - time.Nanosecond)
	}
	return
}

func (h *Handler) Daily(c *gin.Context) {
	scope := authz.ScopeFor(httpkit.MustGetIdentity(c))
	from, to, err := h.activityRange(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	calls, opps, err := h.repo.Activity(c.Request.Context(), scope, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, BuildDailyReport(calls, opps))
}

func (h *Handler) Weekly(c *gin.Context) {
	scope := authz.ScopeFor(httpkit.MustGetIdentity(c))
	from, to, err := h.activityRange(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	calls, opps, err := h.repo.Activity(c.Request.Context(), scope, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, BuildWeeklyReport(BuildDailyReport(calls, opps)))
}

func (h *Handler) LossReasons(c *gin.Context) {
	scope := authz.ScopeFor(httpkit.MustGetIdentity(c))

	var from, to *time.Time
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		from = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}

	reasons, err := h.repo.LossReasons(c.Request.Context(), scope, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, reasons)
}
