package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
)

// Store is the persistence boundary the leads services depend on. Tests
// substitute in-memory fakes; production wires the pgx-backed Repository.
type Store interface {
	LeadReader
	LeadWriter
	CallLogStore
	FollowUpReader
}

// LeadReader covers scoped read access to leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (Lead, error)
	List(ctx context.Context, scope authz.Scope, hideConverted bool) ([]Lead, error)
	ListByStage(ctx context.Context, stage domain.Stage, scope authz.Scope) ([]Lead, error)
}

// LeadWriter covers scoped mutations of leads.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams, scope authz.Scope) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID, scope authz.Scope) error
	UpdateOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
}

// CallLogStore covers call history reads and the transactional call-logging
// write sequence.
type CallLogStore interface {
	// LogCall runs the whole stage-transition write in one transaction: insert
	// the call log, lock the lead row, apply the transition computed by apply,
	// persist the new lead state, and insert the callback todo when requested.
	LogCall(ctx context.Context, params LogCallParams, scope authz.Scope, apply ApplyFunc) (LogCallResult, error)
	ListCallsByLead(ctx context.Context, leadID uuid.UUID, scope authz.Scope) ([]CallLog, error)
}

// ApplyFunc computes the stage transition for the locked lead state. It must
// be pure; the repository calls it exactly once inside the transaction.
type ApplyFunc func(current domain.Stage, dialAttempts int) domain.CallEffect

// FollowUpReader covers the follow-up query engine's reads.
type FollowUpReader interface {
	LeadsDueBetween(ctx context.Context, scope authz.Scope, from, to time.Time) ([]Lead, error)
	LeadsOverdue(ctx context.Context, scope authz.Scope, before time.Time) ([]Lead, error)
	OpportunitiesEnteredLateStageBetween(ctx context.Context, scope authz.Scope, from, to time.Time) ([]FollowUpOpportunity, error)
	OpportunitiesStalledSince(ctx context.Context, scope authz.Scope, cutoff time.Time) ([]FollowUpOpportunity, error)
}
