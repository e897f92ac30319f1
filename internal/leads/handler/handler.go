// Package handler exposes the leads HTTP endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/service"
	"salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/stage/:stage", h.ListByStage)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/calls", h.LogCall)
	rg.GET("/:id/calls", h.ListCalls)
	rg.POST("/bulk-import", h.BulkImport)
	rg.POST("/bulk-assign", h.BulkAssign)
	rg.POST("/bulk-delete", h.BulkDelete)
}

// RegisterFollowUpRoutes mounts the follow-up query endpoints.
func (h *Handler) RegisterFollowUpRoutes(rg *gin.RouterGroup) {
	rg.GET("/due-today", h.FollowUpsDueToday)
	rg.GET("/overdue", h.OverdueFollowUps)
}

func (h *Handler) scope(c *gin.Context) authz.Scope {
	return authz.ScopeFor(httpkit.MustGetIdentity(c))
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) List(c *gin.Context) {
	hideConverted := true
	if raw := c.Query("hideConverted"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "hideConverted must be a boolean")
			return
		}
		hideConverted = parsed
	}

	leads, err := h.svc.List(c.Request.Context(), h.scope(c), hideConverted)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) ListByStage(c *gin.Context) {
	stage := domain.Stage(c.Param("stage"))
	if !domain.IsKnownStage(stage) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "unknown stage")
		return
	}

	leads, err := h.svc.ListByStage(c.Request.Context(), stage, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, h.scope(c)); httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusNoContent, nil)
}

func (h *Handler) LogCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.LogCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.LogCall(c.Request.Context(), id, req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListCalls(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	calls, err := h.svc.ListCalls(c.Request.Context(), id, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, calls)
}

func (h *Handler) BulkImport(c *gin.Context) {
	var req transport.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result := h.svc.BulkImport(c.Request.Context(), req, h.scope(c))
	httpkit.OK(c, result)
}

func (h *Handler) BulkAssign(c *gin.Context) {
	var req transport.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.BulkAssign(c.Request.Context(), req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) BulkDelete(c *gin.Context) {
	var req transport.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.svc.BulkDelete(c.Request.Context(), req, h.scope(c))
	httpkit.OK(c, result)
}

func (h *Handler) FollowUpsDueToday(c *gin.Context) {
	resp, err := h.svc.FollowUpsDueToday(c.Request.Context(), h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) OverdueFollowUps(c *gin.Context) {
	resp, err := h.svc.OverdueFollowUps(c.Request.Context(), h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
