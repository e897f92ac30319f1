package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
)

// fakeStore is an in-memory Store that mimics the repository's transactional
// semantics closely enough for service tests.
type fakeStore struct {
	leads map[uuid.UUID]repository.Lead
	calls []repository.CallLog
	todos []repository.CallbackTodoParams

	dueBetweenFrom, dueBetweenTo   time.Time
	lateStageFrom, lateStageTo     time.Time
	overdueBefore, stalledCutoff   time.Time
	dueLeads, overdueLeads         []repository.Lead
	lateStageOpps, stalledOpps     []repository.FollowUpOpportunity
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeStore) visible(l repository.Lead, scope authz.Scope) bool {
	return scope.Allows(l.OwnerID)
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID, scope authz.Scope) (repository.Lead, error) {
	l, ok := f.leads[id]
	if !ok || !f.visible(l, scope) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (f *fakeStore) List(_ context.Context, scope authz.Scope, hideConverted bool) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if !f.visible(l, scope) {
			continue
		}
		if hideConverted && l.OpportunityID != nil {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeStore) ListByStage(_ context.Context, stage domain.Stage, scope authz.Scope) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if l.Stage == stage && f.visible(l, scope) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	l := repository.Lead{
		ID:                   uuid.New(),
		CompanyName:          params.CompanyName,
		ContactName:          params.ContactName,
		Phone:                params.Phone,
		Email:                params.Email,
		OwnerID:              params.OwnerID,
		DataVerified:         "No",
		PhoneValid:           params.PhoneValid,
		EmailValid:           params.EmailValid,
		CorrectDecisionMaker: "No",
		Stage:                domain.StageNew,
		EmailSent:            "No",
		ConvertedToOpp:       "No",
		NextFollowUpDate:     params.NextFollowUpDate,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	f.leads[l.ID] = l
	return l, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams, scope authz.Scope) (repository.Lead, error) {
	l, ok := f.leads[id]
	if !ok || !f.visible(l, scope) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if params.Stage != nil {
		l.Stage = *params.Stage
	}
	if params.CompanyName != nil {
		l.CompanyName = *params.CompanyName
	}
	f.leads[id] = l
	return l, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID, scope authz.Scope) error {
	l, ok := f.leads[id]
	if !ok || !f.visible(l, scope) {
		return apperr.NotFound("lead not found")
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeStore) UpdateOwner(_ context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	l, ok := f.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	l.OwnerID = ownerID
	f.leads[id] = l
	return nil
}

func (f *fakeStore) LogCall(_ context.Context, params repository.LogCallParams, scope authz.Scope, apply repository.ApplyFunc) (repository.LogCallResult, error) {
	l, ok := f.leads[params.LeadID]
	if !ok || !f.visible(l, scope) {
		return repository.LogCallResult{}, apperr.NotFound("lead not found")
	}

	effect := apply(l.Stage, l.DialAttempts)

	callbackScheduled := "No"
	if params.Callback != nil {
		callbackScheduled = "Yes"
	}
	call := repository.CallLog{
		ID:                uuid.New(),
		LeadID:            &params.LeadID,
		CallDate:          params.CallDate,
		Outcome:           params.Outcome,
		CallDuration:      params.CallDuration,
		Notes:             params.Notes,
		AgentID:           params.AgentID,
		CallbackScheduled: callbackScheduled,
		CallbackDate:      params.CallbackDate,
		CreatedAt:         time.Now(),
	}
	f.calls = append(f.calls, call)

	l.Stage = effect.Stage
	l.DialAttempts = effect.DialAttempts
	l.LastContactDate = &params.CallDate
	if effect.ClosedAt != nil {
		l.ClosedDate = effect.ClosedAt
	}
	if effect.LossReason != "" {
		reason := effect.LossReason
		l.LossReason = &reason
	}
	f.leads[params.LeadID] = l

	result := repository.LogCallResult{Call: call, Lead: l, Effect: effect}
	if params.Callback != nil {
		f.todos = append(f.todos, *params.Callback)
		todoID := uuid.New()
		result.TodoID = &todoID
	}
	return result, nil
}

func (f *fakeStore) ListCallsByLead(_ context.Context, leadID uuid.UUID, scope authz.Scope) ([]repository.CallLog, error) {
	if _, err := f.GetByID(context.Background(), leadID, scope); err != nil {
		return nil, err
	}
	out := make([]repository.CallLog, 0)
	for _, c := range f.calls {
		if c.LeadID != nil && *c.LeadID == leadID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) LeadsDueBetween(_ context.Context, _ authz.Scope, from, to time.Time) ([]repository.Lead, error) {
	f.dueBetweenFrom, f.dueBetweenTo = from, to
	return f.dueLeads, nil
}

func (f *fakeStore) LeadsOverdue(_ context.Context, _ authz.Scope, before time.Time) ([]repository.Lead, error) {
	f.overdueBefore = before
	return f.overdueLeads, nil
}

func (f *fakeStore) OpportunitiesEnteredLateStageBetween(_ context.Context, _ authz.Scope, from, to time.Time) ([]repository.FollowUpOpportunity, error) {
	f.lateStageFrom, f.lateStageTo = from, to
	return f.lateStageOpps, nil
}

func (f *fakeStore) OpportunitiesStalledSince(_ context.Context, _ authz.Scope, cutoff time.Time) ([]repository.FollowUpOpportunity, error) {
	f.stalledCutoff = cutoff
	return f.stalledOpps, nil
}

func newTestService(store repository.Store) *Service {
	return New(store, events.NewInMemoryBus(logger.New("test")), nil, logger.New("test"))
}
