// Package service holds the leads business logic: lead management, the call
// logging engine, follow-up queries and bulk operations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/phone"
)

// ReminderScheduler schedules a best-effort callback reminder after the
// logCall transaction commits. A nil scheduler disables reminders.
type ReminderScheduler interface {
	ScheduleCallbackReminder(ctx context.Context, todoID uuid.UUID, agentID uuid.UUID, runAt time.Time) error
}

// Service implements lead management on top of the Store.
type Service struct {
	repo      repository.Store
	bus       events.Bus
	reminders ReminderScheduler
	log       *logger.Logger
	now       func() time.Time
}

func New(repo repository.Store, bus events.Bus, reminders ReminderScheduler, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		bus:       bus,
		reminders: reminders,
		log:       log,
		now:       time.Now,
	}
}

// Create registers a new lead. Non-admins may only create leads they own.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, scope authz.Scope) (transport.LeadResponse, error) {
	ownerID := scope.UserID
	if req.OwnerID != nil {
		if !scope.Allows(*req.OwnerID) {
			return transport.LeadResponse{}, apperr.Forbidden("cannot create leads for another owner")
		}
		ownerID = *req.OwnerID
	}

	params := repository.CreateLeadParams{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		OwnerID:     ownerID,
		PhoneValid:  "No",
		EmailValid:  "No",
	}
	if req.Phone != "" {
		normalized := phone.NormalizeE164(req.Phone)
		params.Phone = &normalized
		if phone.IsValid(normalized) {
			params.PhoneValid = "Yes"
		}
	}
	if req.Email != "" {
		params.Email = &req.Email
		params.EmailValid = "Yes"
	}
	if req.Provider != "" {
		params.Provider = &req.Provider
	}
	if req.ProcessingVolume != "" {
		params.ProcessingVolume = &req.ProcessingVolume
	}
	if req.EffectiveRate != "" {
		params.EffectiveRate = &req.EffectiveRate
	}
	if req.DataSource != "" {
		params.DataSource = &req.DataSource
	}
	if req.DataCohort != "" {
		params.DataCohort = &req.DataCohort
	}
	if req.NextFollowUpDate != nil {
		params.NextFollowUpDate = req.NextFollowUpDate
	}
	if req.FollowUpTime != "" {
		params.FollowUpTime = &req.FollowUpTime
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	event := events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		CompanyName: lead.CompanyName,
		OwnerID:     lead.OwnerID,
	}
	if lead.DataSource != nil {
		event.Source = *lead.DataSource
	}
	s.bus.Publish(ctx, event)

	return toLeadResponse(lead), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, scope authz.Scope, hideConverted bool) ([]transport.LeadResponse, error) {
	leads, err := s.repo.List(ctx, scope, hideConverted)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

func (s *Service) ListByStage(ctx context.Context, stage domain.Stage, scope authz.Scope) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListByStage(ctx, stage, scope)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

// Update applies a partial edit. Direct edits may set any stage value; only
// the call engine enforces transition rules.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest, scope authz.Scope) (transport.LeadResponse, error) {
	if req.OwnerID != nil && !scope.Admin {
		return transport.LeadResponse{}, apperr.Forbidden("only admins can reassign leads")
	}

	params := repository.UpdateLeadParams{
		CompanyName:           req.CompanyName,
		ContactName:           req.ContactName,
		Provider:              req.Provider,
		ProcessingVolume:      req.ProcessingVolume,
		EffectiveRate:         req.EffectiveRate,
		DataSource:            req.DataSource,
		DataCohort:            req.DataCohort,
		OwnerID:               req.OwnerID,
		Stage:                 req.Stage,
		LastContactDate:       req.LastContactDate,
		NextFollowUpDate:      req.NextFollowUpDate,
		FollowUpTime:          req.FollowUpTime,
		QuoteDate:             req.QuoteDate,
		QuotedRate:            req.QuotedRate,
		ExpectedResidual:      req.ExpectedResidual,
		SignedDate:            req.SignedDate,
		ActualResidual:        req.ActualResidual,
		OnboardingStatus:      req.OnboardingStatus,
		LossReason:            req.LossReason,
		EmailSentDate:         req.EmailSentDate,
		QuoteEmailTemplateRef: req.QuoteEmailTemplateRef,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}
	if req.Email != nil {
		params.Email = req.Email
	}
	if req.DataVerified != nil {
		v := string(*req.DataVerified)
		params.DataVerified = &v
	}
	if req.PhoneValid != nil {
		v := string(*req.PhoneValid)
		params.PhoneValid = &v
	}
	if req.EmailValid != nil {
		v := string(*req.EmailValid)
		params.EmailValid = &v
	}
	if req.CorrectDecisionMaker != nil {
		v := string(*req.CorrectDecisionMaker)
		params.CorrectDecisionMaker = &v
	}
	if req.EmailSent != nil {
		v := string(*req.EmailSent)
		params.EmailSent = &v
	}

	lead, err := s.repo.Update(ctx, id, params, scope)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// Delete removes a lead and synchronously records the deletion in the audit
// trail. Call logs, notes and a linked opportunity keep their rows with the
// lead reference set to null.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, scope authz.Scope) error {
	lead, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, scope); err != nil {
		return err
	}

	event := events.LeadDeleted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		CompanyName: lead.CompanyName,
		DeletedByID: scope.UserID,
		Details: map[string]any{
			"stage":        string(lead.Stage),
			"dialAttempts": lead.DialAttempts,
		},
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.log.Error("lead deletion audit failed", "error", err, "leadId", id)
	}
	return nil
}

// BulkImport creates leads row by row, continuing past failures and reporting
// an aggregate result.
func (s *Service) BulkImport(ctx context.Context, req transport.BulkImportRequest, scope authz.Scope) transport.BulkResult {
	result := transport.BulkResult{Errors: []string{}, Total: len(req.Leads)}
	for i, row := range req.Leads {
		if row.CompanyName == "" || row.ContactName == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: company name and contact name are required", i+1))
			continue
		}
		if _, err := s.Create(ctx, row, scope); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.Success++
	}
	return result
}

// BulkAssign reassigns leads to a new owner. Admin only.
func (s *Service) BulkAssign(ctx context.Context, req transport.BulkAssignRequest, scope authz.Scope) (transport.BulkResult, error) {
	if !scope.Admin {
		return transport.BulkResult{}, apperr.Forbidden("only admins can bulk-assign leads")
	}
	result := transport.BulkResult{Errors: []string{}, Total: len(req.LeadIDs)}
	for _, id := range req.LeadIDs {
		if err := s.repo.UpdateOwner(ctx, id, req.OwnerID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("lead %s: %v", id, err))
			continue
		}
		result.Success++
	}
	return result, nil
}

// BulkDelete deletes leads within the caller's scope, one audit row each.
func (s *Service) BulkDelete(ctx context.Context, req transport.BulkDeleteRequest, scope authz.Scope) transport.BulkResult {
	result := transport.BulkResult{Errors: []string{}, Total: len(req.LeadIDs)}
	for _, id := range req.LeadIDs {
		if err := s.Delete(ctx, id, scope); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("lead %s: %v", id, err))
			continue
		}
		result.Success++
	}
	return result
}
