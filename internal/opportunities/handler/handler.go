// Package handler exposes the opportunities HTTP endpoints, including the
// lead conversion route.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	leadstransport "salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/service"
	"salesdesk_backend/internal/opportunities/transport"
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
	rg.GET("/stage/:stage", h.ListByStage)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/calls", h.ListCalls)
	rg.POST("/:id/calls", h.LogCall)
	rg.GET("/:id/notes", h.ListNotes)
}

// RegisterConvertRoute mounts the conversion endpoint under the leads prefix.
func (h *Handler) RegisterConvertRoute(rg *gin.RouterGroup) {
	rg.POST("/:id/convert", h.Convert)
}

func (h *Handler) scope(c *gin.Context) authz.Scope {
	return authz.ScopeFor(httpkit.MustGetIdentity(c))
}

func (h *Handler) Convert(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Convert(c.Request.Context(), leadID, req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) List(c *gin.Context) {
	opps, err := h.svc.List(c.Request.Context(), h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, opps)
}

func (h *Handler) ListByStage(c *gin.Context) {
	stage := transport.OpportunityStage(c.Param("stage"))
	switch stage {
	case transport.StageQualified, transport.StageProposal, transport.StageNegotiation,
		transport.StageClosedWon, transport.StageClosedLost:
	default:
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "unknown stage")
		return
	}

	opps, err := h.svc.ListByStage(c.Request.Context(), stage, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, opps)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	opp, err := h.svc.GetByID(c.Request.Context(), id, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, opp)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	opp, err := h.svc.Update(c.Request.Context(), id, req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, opp)
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

	out := make([]leadstransport.CallLogResponse, 0, len(calls))
	for _, call := range calls {
		out = append(out, leadstransport.CallLogResponse{
			ID:                call.ID,
			LeadID:            call.LeadID,
			OpportunityID:     call.OpportunityID,
			CallDate:          call.CallDate,
			Outcome:           call.Outcome,
			CallDuration:      call.CallDuration,
			Notes:             call.Notes,
			AgentID:           call.AgentID,
			CallbackScheduled: leadstransport.YesNo(call.CallbackScheduled),
			CallbackDate:      call.CallbackDate,
			CreatedAt:         call.CreatedAt,
		})
	}
	httpkit.OK(c, out)
}

func (h *Handler) LogCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.LogOpportunityCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	call, err := h.svc.LogCall(c.Request.Context(), id, req, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, leadstransport.CallLogResponse{
		ID:                call.ID,
		LeadID:            call.LeadID,
		OpportunityID:     call.OpportunityID,
		CallDate:          call.CallDate,
		Outcome:           call.Outcome,
		CallDuration:      call.CallDuration,
		Notes:             call.Notes,
		AgentID:           call.AgentID,
		CallbackScheduled: leadstransport.YesNo(call.CallbackScheduled),
		CallbackDate:      call.CallbackDate,
		CreatedAt:         call.CreatedAt,
	})
}

// noteResponse is the JSON shape for opportunity notes.
type noteResponse struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	Content       string     `json:"content"`
	CreatedBy     uuid.UUID  `json:"createdBy"`
	CreatedByName string     `json:"createdByName"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (h *Handler) ListNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	notes, err := h.svc.ListNotes(c.Request.Context(), id, h.scope(c))
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	httpkit.OK(c, out)
}

func toNoteResponse(n repository.Note) noteResponse {
	return noteResponse{
		ID:            n.ID,
		LeadID:        n.LeadID,
		OpportunityID: n.OpportunityID,
		Content:       n.Content,
		CreatedBy:     n.CreatedBy,
		CreatedByName: n.CreatedByName,
		CreatedAt:     n.CreatedAt,
	}
}
