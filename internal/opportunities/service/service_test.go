package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/transport"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
)

type fakeStore struct {
	opps       map[uuid.UUID]repository.Opportunity
	converted  map[uuid.UUID]bool
	lastUpdate repository.UpdateParams
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		opps:      make(map[uuid.UUID]repository.Opportunity),
		converted: make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) Convert(_ context.Context, params repository.ConvertParams, _ authz.Scope) (repository.Opportunity, error) {
	if f.converted[params.LeadID] {
		return repository.Opportunity{}, apperr.Conflict("lead already converted")
	}
	f.converted[params.LeadID] = true
	leadID := params.LeadID
	opp := repository.Opportunity{
		ID:          uuid.New(),
		LeadID:      &leadID,
		Name:        params.Name,
		CompanyName: params.CompanyName,
		ContactName: params.ContactName,
		Phone:       params.Phone,
		Email:       params.Email,
		Stage:       "qualified",
		DealValue:   params.DealValue,
		Probability: 50,
		OwnerID:     params.OwnerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.opps[opp.ID] = opp
	return opp, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID, scope authz.Scope) (repository.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok || !scope.Allows(o.OwnerID) {
		return repository.Opportunity{}, apperr.NotFound("opportunity not found")
	}
	return o, nil
}

func (f *fakeStore) List(_ context.Context, scope authz.Scope) ([]repository.Opportunity, error) {
	out := make([]repository.Opportunity, 0)
	for _, o := range f.opps {
		if scope.Allows(o.OwnerID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByStage(_ context.Context, stage string, scope authz.Scope) ([]repository.Opportunity, error) {
	out := make([]repository.Opportunity, 0)
	for _, o := range f.opps {
		if o.Stage == stage && scope.Allows(o.OwnerID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams, scope authz.Scope) (repository.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok || !scope.Allows(o.OwnerID) {
		return repository.Opportunity{}, apperr.NotFound("opportunity not found")
	}
	f.lastUpdate = params
	if params.Stage != nil {
		o.Stage = *params.Stage
	}
	if params.StageEnteredAt != nil {
		o.StageEnteredAt = params.StageEnteredAt
	}
	if params.ActualCloseDate != nil {
		o.ActualCloseDate = params.ActualCloseDate
	}
	f.opps[id] = o
	return o, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID, scope authz.Scope) error {
	o, ok := f.opps[id]
	if !ok || !scope.Allows(o.OwnerID) {
		return apperr.NotFound("opportunity not found")
	}
	delete(f.opps, id)
	return nil
}

func (f *fakeStore) ListCalls(_ context.Context, _ repository.Opportunity) ([]leadsrepo.CallLog, error) {
	return nil, nil
}

func (f *fakeStore) CreateCall(_ context.Context, params repository.CreateCallParams) (leadsrepo.CallLog, error) {
	oppID := params.OpportunityID
	return leadsrepo.CallLog{ID: uuid.New(), OpportunityID: &oppID, CallDate: params.CallDate, AgentID: params.AgentID}, nil
}

func (f *fakeStore) ListNotes(_ context.Context, _ repository.Opportunity) ([]repository.Note, error) {
	return nil, nil
}

type fakeLeads struct {
	leads map[uuid.UUID]leadsrepo.Lead
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID, scope authz.Scope) (leadsrepo.Lead, error) {
	l, ok := f.leads[id]
	if !ok || !scope.Allows(l.OwnerID) {
		return leadsrepo.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func newTestService(store *fakeStore, leads *fakeLeads) *Service {
	log := logger.New("test")
	return New(store, leads, events.NewInMemoryBus(log), log)
}

func TestConvertCreatesQualifiedOpportunityOnce(t *testing.T) {
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := uuid.New()
	phone := "+15125550100"
	leads := &fakeLeads{leads: map[uuid.UUID]leadsrepo.Lead{
		leadID: {ID: leadID, CompanyName: "Acme Payments", ContactName: "Jordan Lee", Phone: &phone, OwnerID: agent, ConvertedToOpp: "No"},
	}}
	store := newFakeStore()
	svc := newTestService(store, leads)

	resp, err := svc.Convert(context.Background(), leadID, transport.ConvertLeadRequest{}, scope)
	if err != nil {
		t.Fatal(err)
	}
	opp := resp.Opportunity
	if opp.Stage != transport.StageQualified {
		t.Fatalf("stage = %s, want qualified", opp.Stage)
	}
	if opp.Probability != 50 {
		t.Fatalf("probability = %d, want 50", opp.Probability)
	}
	if opp.Name != "Acme Payments - Deal" {
		t.Fatalf("name = %q", opp.Name)
	}
	if opp.CompanyName != "Acme Payments" || opp.ContactName != "Jordan Lee" {
		t.Fatalf("identity fields not copied from lead: %+v", opp)
	}
	if opp.LeadID == nil || *opp.LeadID != leadID {
		t.Fatalf("leadId = %v, want %s", opp.LeadID, leadID)
	}

	// Second conversion is rejected.
	_, err = svc.Convert(context.Background(), leadID, transport.ConvertLeadRequest{}, scope)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("second convert err = %v, want conflict", err)
	}
}

func TestConvertOutsideScopeIsNotFound(t *testing.T) {
	owner := uuid.New()
	leadID := uuid.New()
	leads := &fakeLeads{leads: map[uuid.UUID]leadsrepo.Lead{
		leadID: {ID: leadID, CompanyName: "Acme", ContactName: "JL", OwnerID: owner},
	}}
	svc := newTestService(newFakeStore(), leads)

	_, err := svc.Convert(context.Background(), leadID, transport.ConvertLeadRequest{}, authz.Scope{UserID: uuid.New()})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateStageToProposalStampsEntryAndNote(t *testing.T) {
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	store := newFakeStore()
	oppID := uuid.New()
	store.opps[oppID] = repository.Opportunity{ID: oppID, Name: "Deal", Stage: "qualified", OwnerID: agent}
	svc := newTestService(store, &fakeLeads{})
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stage := transport.StageProposal
	resp, err := svc.Update(context.Background(), oppID, transport.UpdateOpportunityRequest{Stage: &stage}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Stage != transport.StageProposal {
		t.Fatalf("stage = %s, want proposal", resp.Stage)
	}
	if store.lastUpdate.StageEnteredAt == nil || !store.lastUpdate.StageEnteredAt.Equal(fixed) {
		t.Fatalf("stageEnteredAt = %v, want %v", store.lastUpdate.StageEnteredAt, fixed)
	}
	if store.lastUpdate.StageNote != "Stage changed to Proposal" {
		t.Fatalf("stage note = %q", store.lastUpdate.StageNote)
	}

	stage = transport.StageNegotiation
	if _, err := svc.Update(context.Background(), oppID, transport.UpdateOpportunityRequest{Stage: &stage}, scope); err != nil {
		t.Fatal(err)
	}
	if store.lastUpdate.StageNote != "Stage changed to Negotiation" {
		t.Fatalf("stage note = %q", store.lastUpdate.StageNote)
	}
}

func TestUpdateCloseAutofillsActualCloseDate(t *testing.T) {
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	store := newFakeStore()
	oppID := uuid.New()
	store.opps[oppID] = repository.Opportunity{ID: oppID, Name: "Deal", Stage: "negotiation", OwnerID: agent}
	svc := newTestService(store, &fakeLeads{})
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stage := transport.StageClosedWon
	resp, err := svc.Update(context.Background(), oppID, transport.UpdateOpportunityRequest{Stage: &stage}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if resp.ActualCloseDate == nil || !resp.ActualCloseDate.Equal(fixed) {
		t.Fatalf("actualCloseDate = %v, want %v", resp.ActualCloseDate, fixed)
	}
	if store.lastUpdate.StageNote != "" {
		t.Fatalf("closing should not write a stage note, got %q", store.lastUpdate.StageNote)
	}

	// An explicit close date wins.
	explicit := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	stage = transport.StageClosedLost
	resp, err = svc.Update(context.Background(), oppID, transport.UpdateOpportunityRequest{Stage: &stage, ActualCloseDate: &explicit}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if resp.ActualCloseDate == nil || !resp.ActualCloseDate.Equal(explicit) {
		t.Fatalf("actualCloseDate = %v, want explicit %v", resp.ActualCloseDate, explicit)
	}
}
