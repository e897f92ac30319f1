package notes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// LeadReader checks that the lead exists inside the caller's scope before a
// note is attached to it.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (leadsrepo.Lead, error)
}

type createRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

type Handler struct {
	repo  *Repository
	leads LeadReader
	val   *validator.Validator
}

func NewHandler(repo *Repository, leads LeadReader, val *validator.Validator) *Handler {
	return &Handler{repo: repo, leads: leads, val: val}
}

// RegisterRoutes mounts the lead note routes under the leads prefix.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/notes", h.ListByLead)
	rg.POST("/:id/notes", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	scope := authz.ScopeFor(identity)
	if _, err := h.leads.GetByID(c.Request.Context(), leadID, scope); httpkit.HandleError(c, err) {
		return
	}

	note, err := h.repo.Create(c.Request.Context(), CreateParams{
		LeadID:    &leadID,
		Content:   req.Content,
		CreatedBy: identity.UserID(),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, note)
}

func (h *Handler) ListByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	scope := authz.ScopeFor(httpkit.MustGetIdentity(c))
	if _, err := h.leads.GetByID(c.Request.Context(), leadID, scope); httpkit.HandleError(c, err) {
		return
	}

	notes, err := h.repo.ListByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, notes)
}
