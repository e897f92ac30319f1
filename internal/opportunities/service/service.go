// Package service holds the opportunities business logic: the lead conversion
// gate and deal CRUD.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/transport"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
)

// LeadReader is the slice of the leads store the conversion gate needs.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (leadsrepo.Lead, error)
}

type Service struct {
	repo  repository.Store
	leads LeadReader
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func New(repo repository.Store, leads LeadReader, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		leads: leads,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// Convert turns a lead into a qualified opportunity. The lead keeps all its
// call logs and notes; a second conversion attempt fails with Conflict.
func (s *Service) Convert(ctx context.Context, leadID uuid.UUID, req transport.ConvertLeadRequest, scope authz.Scope) (transport.ConvertLeadResponse, error) {
	lead, err := s.leads.GetByID(ctx, leadID, scope)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s - Deal", lead.CompanyName)
	}

	params := repository.ConvertParams{
		LeadID:            leadID,
		Name:              name,
		CompanyName:       lead.CompanyName,
		ContactName:       lead.ContactName,
		Phone:             lead.Phone,
		Email:             lead.Email,
		ExpectedCloseDate: req.ExpectedCloseDate,
		OwnerID:           scope.UserID,
		ConvertedAt:       s.now().UTC(),
	}
	if req.DealValue != "" {
		params.DealValue = &req.DealValue
	}
	if req.Notes != "" {
		params.Notes = &req.Notes
	}

	opp, err := s.repo.Convert(ctx, params, scope)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        leadID,
		OpportunityID: opp.ID,
		ConvertedByID: scope.UserID,
	})

	return transport.ConvertLeadResponse{Opportunity: toResponse(opp)}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (transport.OpportunityResponse, error) {
	opp, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	return toResponse(opp), nil
}

func (s *Service) List(ctx context.Context, scope authz.Scope) ([]transport.OpportunityResponse, error) {
	opps, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	return toResponses(opps), nil
}

func (s *Service) ListByStage(ctx context.Context, stage transport.OpportunityStage, scope authz.Scope) ([]transport.OpportunityResponse, error) {
	opps, err := s.repo.ListByStage(ctx, string(stage), scope)
	if err != nil {
		return nil, err
	}
	return toResponses(opps), nil
}

// Update applies a partial edit. Moving to proposal/negotiation stamps
// stage_entered_at and records an activity note; closing auto-fills the
// actual close date when the caller omitted it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateOpportunityRequest, scope authz.Scope) (transport.OpportunityResponse, error) {
	params := repository.UpdateParams{
		Name:              req.Name,
		DealValue:         req.DealValue,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		ActualCloseDate:   req.ActualCloseDate,
		Notes:             req.Notes,
		LossReason:        req.LossReason,
	}

	if req.Stage != nil {
		stage := string(*req.Stage)
		params.Stage = &stage

		switch *req.Stage {
		case transport.StageProposal, transport.StageNegotiation:
			enteredAt := s.now().UTC()
			params.StageEnteredAt = &enteredAt
			label := "Proposal"
			if *req.Stage == transport.StageNegotiation {
				label = "Negotiation"
			}
			params.StageNote = fmt.Sprintf("Stage changed to %s", label)
			params.StageNoteAuthor = scope.UserID
		case transport.StageClosedWon, transport.StageClosedLost:
			if req.ActualCloseDate == nil {
				closedAt := s.now().UTC()
				params.ActualCloseDate = &closedAt
			}
		}
	}

	opp, err := s.repo.Update(ctx, id, params, scope)
	if err != nil {
		return transport.OpportunityResponse{}, err
	}
	return toResponse(opp), nil
}

// Delete removes an opportunity and synchronously records the deletion in the
// audit trail.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, scope authz.Scope) error {
	opp, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, scope); err != nil {
		return err
	}

	details := map[string]any{
		"companyName": opp.CompanyName,
		"stage":       opp.Stage,
	}
	if opp.DealValue != nil {
		details["dealValue"] = *opp.DealValue
	}
	event := events.OpportunityDeleted{
		BaseEvent:     events.NewBaseEvent(),
		OpportunityID: opp.ID,
		Name:          opp.Name,
		DeletedByID:   scope.UserID,
		Details:       details,
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.log.Error("opportunity deletion audit failed", "error", err, "opportunityId", id)
	}
	return nil
}

// ListCalls returns the opportunity's call history, including calls logged
// against its source lead before conversion.
func (s *Service) ListCalls(ctx context.Context, id uuid.UUID, scope authz.Scope) ([]leadsrepo.CallLog, error) {
	opp, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCalls(ctx, opp)
}

// LogCall records a call against an opportunity. No stage transition applies;
// the call still clears the opportunity from the stalled follow-up query.
func (s *Service) LogCall(ctx context.Context, id uuid.UUID, req transport.LogOpportunityCallRequest, scope authz.Scope) (leadsrepo.CallLog, error) {
	if _, err := s.repo.GetByID(ctx, id, scope); err != nil {
		return leadsrepo.CallLog{}, err
	}

	callDate := s.now().UTC()
	if req.CallDate != nil {
		callDate = req.CallDate.UTC()
	}
	params := repository.CreateCallParams{
		OpportunityID: id,
		AgentID:       scope.UserID,
		Outcome:       string(req.Outcome),
		CallDate:      callDate,
		CallDuration:  req.CallDuration,
		CallbackDate:  req.CallbackDate,
	}
	if req.Notes != "" {
		params.Notes = &req.Notes
	}
	return s.repo.CreateCall(ctx, params)
}

// ListNotes returns the opportunity's notes, including notes left on its
// source lead.
func (s *Service) ListNotes(ctx context.Context, id uuid.UUID, scope authz.Scope) ([]repository.Note, error) {
	opp, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, opp)
}

func toResponse(o repository.Opportunity) transport.OpportunityResponse {
	return transport.OpportunityResponse{
		ID:                o.ID,
		LeadID:            o.LeadID,
		Name:              o.Name,
		CompanyName:       o.CompanyName,
		ContactName:       o.ContactName,
		Phone:             o.Phone,
		Email:             o.Email,
		Stage:             transport.OpportunityStage(o.Stage),
		DealValue:         o.DealValue,
		Probability:       o.Probability,
		ExpectedCloseDate: o.ExpectedCloseDate,
		ActualCloseDate:   o.ActualCloseDate,
		StageEnteredAt:    o.StageEnteredAt,
		OwnerID:           o.OwnerID,
		Notes:             o.Notes,
		LossReason:        o.LossReason,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func toResponses(opps []repository.Opportunity) []transport.OpportunityResponse {
	out := make([]transport.OpportunityResponse, 0, len(opps))
	for _, o := range opps {
		out = append(out, toResponse(o))
	}
	return out
}
