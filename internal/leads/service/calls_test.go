package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/platform/apperr"
)

func seedLead(store *fakeStore, ownerID uuid.UUID) uuid.UUID {
	lead, _ := store.Create(context.Background(), repository.CreateLeadParams{
		CompanyName: "Acme Payments",
		ContactName: "Jordan Lee",
		OwnerID:     ownerID,
		PhoneValid:  "No",
		EmailValid:  "No",
	})
	return lead.ID
}

func TestLogCallDialCountMatchesCallCount(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := seedLead(store, agent)

	outcomes := []domain.Outcome{
		domain.OutcomeNoAnswer,
		domain.OutcomeGatekeeper,
		domain.OutcomeDMReached,
		domain.OutcomeNoAnswer,
	}
	for _, outcome := range outcomes {
		if _, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: outcome}, scope); err != nil {
			t.Fatalf("LogCall(%s): %v", outcome, err)
		}
	}

	lead, err := store.GetByID(context.Background(), leadID, scope)
	if err != nil {
		t.Fatal(err)
	}
	if lead.DialAttempts != len(outcomes) {
		t.Fatalf("dial attempts = %d, want %d", lead.DialAttempts, len(outcomes))
	}
	if len(store.calls) != len(outcomes) {
		t.Fatalf("call logs = %d, want %d", len(store.calls), len(outcomes))
	}
}

func TestLogCallFiveNoContactCallsParkLead(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := seedLead(store, agent)

	outcomes := []domain.Outcome{
		domain.OutcomeNoAnswer,
		domain.OutcomeGatekeeper,
		domain.OutcomeNoAnswer,
		domain.OutcomeGatekeeper,
	}
	for _, outcome := range outcomes {
		if _, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: outcome}, scope); err != nil {
			t.Fatal(err)
		}
	}
	lead, _ := store.GetByID(context.Background(), leadID, scope)
	if lead.Stage != domain.StageAttempting {
		t.Fatalf("after 4 calls stage = %s, want attempting", lead.Stage)
	}

	resp, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: domain.OutcomeNoAnswer}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Lead.Stage != domain.StageParked || !resp.Parked {
		t.Fatalf("after 5 calls stage = %s parked = %v, want parked", resp.Lead.Stage, resp.Parked)
	}
	if resp.Lead.DialAttempts != 5 {
		t.Fatalf("dial attempts = %d, want 5", resp.Lead.DialAttempts)
	}
}

func TestLogCallDMReachedDisarmsAutoPark(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := seedLead(store, agent)

	outcomes := []domain.Outcome{
		domain.OutcomeNoAnswer,
		domain.OutcomeNoAnswer,
		domain.OutcomeDMReached,
		domain.OutcomeNoAnswer,
		domain.OutcomeNoAnswer,
		domain.OutcomeNoAnswer,
		domain.OutcomeNoAnswer,
	}
	var last transport.LogCallResponse
	for _, outcome := range outcomes {
		resp, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: outcome}, scope)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Parked {
			t.Fatalf("auto-park fired after DM was reached (outcome %s)", outcome)
		}
		last = resp
	}
	if last.Lead.Stage == domain.StageParked {
		t.Fatalf("lead ended parked despite DM contact")
	}
}

func TestLogCallClosedLostSetsReasonAndDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := seedLead(store, agent)

	resp, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: domain.OutcomeNotInterested}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Lead.Stage != domain.StageClosedLost {
		t.Fatalf("stage = %s, want closed_lost", resp.Lead.Stage)
	}
	if resp.Lead.ClosedDate == nil {
		t.Fatal("closed date not set")
	}
	if resp.Lead.LossReason == nil || *resp.Lead.LossReason != "Not Interested" {
		t.Fatalf("loss reason = %v, want Not Interested", resp.Lead.LossReason)
	}
}

func TestLogCallCallbackCreatesExactlyOneTodo(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := seedLead(store, agent)

	callback := time.Now().Add(48 * time.Hour)
	resp, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{
		Outcome:           domain.OutcomeCallbackRequested,
		CallbackScheduled: true,
		CallbackDate:      &callback,
	}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if resp.TodoID == nil {
		t.Fatal("expected a todo id")
	}
	if len(store.todos) != 1 {
		t.Fatalf("todos created = %d, want 1", len(store.todos))
	}
	todo := store.todos[0]
	if todo.Title != "Callback: Acme Payments" {
		t.Fatalf("todo title = %q", todo.Title)
	}
	if todo.OwnerID != agent {
		t.Fatalf("todo owner = %s, want %s", todo.OwnerID, agent)
	}

	// No callback flag, no todo.
	if _, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: domain.OutcomeDMReached}, scope); err != nil {
		t.Fatal(err)
	}
	if len(store.todos) != 1 {
		t.Fatalf("todos created = %d, want still 1", len(store.todos))
	}
}

func TestLogCallCallbackRequiresDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	agent := uuid.New()
	scope := authz.Scope{UserID: agent}
	leadID := seedLead(store, agent)

	_, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{
		Outcome:           domain.OutcomeCallbackRequested,
		CallbackScheduled: true,
	}, scope)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(store.calls) != 0 {
		t.Fatal("no call should be logged when validation fails")
	}
}

func TestLogCallOutsideScopeIsNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	owner := uuid.New()
	leadID := seedLead(store, owner)

	intruder := authz.Scope{UserID: uuid.New()}
	_, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: domain.OutcomeNoAnswer}, intruder)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}

	// Admin scope sees everything.
	admin := authz.Scope{UserID: uuid.New(), Admin: true}
	if _, err := svc.LogCall(context.Background(), leadID, transport.LogCallRequest{Outcome: domain.OutcomeNoAnswer}, admin); err != nil {
		t.Fatalf("admin LogCall: %v", err)
	}
}
