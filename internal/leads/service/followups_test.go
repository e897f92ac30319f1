package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/repository"
)

func TestFollowUpsDueTodayWindows(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	}

	store.dueLeads = []repository.Lead{{ID: uuid.New(), CompanyName: "Acme", Stage: "new"}}
	store.lateStageOpps = []repository.FollowUpOpportunity{{ID: uuid.New(), Name: "Acme - Payment Processing"}}

	resp, err := svc.FollowUpsDueToday(context.Background(), authz.Scope{UserID: uuid.New(), Admin: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Leads) != 1 || len(resp.Opportunities) != 1 {
		t.Fatalf("leads = %d opportunities = %d, want 1 each", len(resp.Leads), len(resp.Opportunities))
	}

	dayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !store.dueBetweenFrom.Equal(dayStart) {
		t.Fatalf("lead window start = %v, want %v", store.dueBetweenFrom, dayStart)
	}
	if !store.dueBetweenTo.After(dayStart.Add(23 * time.Hour)) || !store.dueBetweenTo.Before(dayStart.Add(24*time.Hour)) {
		t.Fatalf("lead window end = %v, want end of day", store.dueBetweenTo)
	}

	// Opportunity nudge looks at yesterday.
	yesterdayStart := dayStart.Add(-24 * time.Hour)
	if !store.lateStageFrom.Equal(yesterdayStart) {
		t.Fatalf("opportunity window start = %v, want %v", store.lateStageFrom, yesterdayStart)
	}
	if !store.lateStageTo.Before(dayStart) {
		t.Fatalf("opportunity window end = %v, want before today", store.lateStageTo)
	}
}

func TestOverdueFollowUpsWindows(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.overdueLeads = []repository.Lead{{ID: uuid.New(), CompanyName: "Late Co", Stage: "attempting"}}

	resp, err := svc.OverdueFollowUps(context.Background(), authz.Scope{UserID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Leads) != 1 {
		t.Fatalf("leads = %d, want 1", len(resp.Leads))
	}
	if len(resp.Opportunities) != 0 {
		t.Fatalf("opportunities = %d, want 0", len(resp.Opportunities))
	}

	dayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !store.overdueBefore.Equal(dayStart) {
		t.Fatalf("overdue cutoff = %v, want start of today %v", store.overdueBefore, dayStart)
	}
	if !store.stalledCutoff.Equal(now.Add(-48 * time.Hour)) {
		t.Fatalf("stalled cutoff = %v, want two days before now", store.stalledCutoff)
	}
}
