package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/events"
)

// LogCall records a call against a lead and applies the stage transition
// engine: dial counter increment, outcome-driven stage move, closed-lost side
// effects, the auto-park rule, and the optional callback todo. Everything up
// to the todo insert happens in one transaction.
func (s *Service) LogCall(ctx context.Context, leadID uuid.UUID, req transport.LogCallRequest, scope authz.Scope) (transport.LogCallResponse, error) {
	if !domain.IsKnownOutcome(req.Outcome) {
		return transport.LogCallResponse{}, apperr.Validation("unknown call outcome")
	}
	if req.CallbackScheduled && req.CallbackDate == nil {
		return transport.LogCallResponse{}, apperr.Validation("callbackDate is required when a callback is scheduled")
	}

	// Resolve the lead up front: NotFound/Forbidden must fail before any
	// write, and the callback todo title needs the company name.
	lead, err := s.repo.GetByID(ctx, leadID, scope)
	if err != nil {
		return transport.LogCallResponse{}, err
	}

	now := s.now().UTC()
	callDate := now
	if req.CallDate != nil {
		callDate = req.CallDate.UTC()
	}

	params := repository.LogCallParams{
		LeadID:       leadID,
		AgentID:      scope.UserID,
		Outcome:      req.Outcome,
		CallDate:     callDate,
		CallDuration: req.CallDuration,
		CallbackDate: req.CallbackDate,
	}
	if req.Notes != "" {
		params.Notes = &req.Notes
	}
	if req.CallbackScheduled {
		params.Callback = &repository.CallbackTodoParams{
			OwnerID:     scope.UserID,
			Title:       fmt.Sprintf("Callback: %s", lead.CompanyName),
			Description: fmt.Sprintf("Scheduled callback for lead ID %s", leadID),
			DueDate:     req.CallbackDate.UTC(),
		}
	}

	result, err := s.repo.LogCall(ctx, params, scope, func(current domain.Stage, dialAttempts int) domain.CallEffect {
		return domain.ApplyOutcome(current, dialAttempts, req.Outcome, now)
	})
	if err != nil {
		return transport.LogCallResponse{}, err
	}

	if result.TodoID != nil {
		event := events.CallbackScheduled{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       leadID,
			TodoID:       *result.TodoID,
			AgentID:      scope.UserID,
			CallbackDate: req.CallbackDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		s.bus.Publish(ctx, event)

		if s.reminders != nil {
			if err := s.reminders.ScheduleCallbackReminder(ctx, *result.TodoID, scope.UserID, req.CallbackDate.UTC()); err != nil {
				s.log.Warn("callback reminder scheduling failed", "error", err, "todoId", *result.TodoID)
			}
		}
	}

	return transport.LogCallResponse{
		Call:   toCallResponse(result.Call),
		Lead:   toLeadResponse(result.Lead),
		Parked: result.Effect.Parked,
		TodoID: result.TodoID,
	}, nil
}

// ListCalls returns the append-only call history for a lead.
func (s *Service) ListCalls(ctx context.Context, leadID uuid.UUID, scope authz.Scope) ([]transport.CallLogResponse, error) {
	calls, err := s.repo.ListCallsByLead(ctx, leadID, scope)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CallLogResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, toCallResponse(c))
	}
	return out, nil
}
