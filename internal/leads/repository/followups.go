package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesdesk_backend/internal/authz"
)

// FollowUpOpportunity is the slim projection the follow-up queries return for
// late-stage opportunities.
type FollowUpOpportunity struct {
	ID             uuid.UUID
	Name           string
	CompanyName    string
	ContactName    string
	Stage          string
	OwnerID        uuid.UUID
	StageEnteredAt *time.Time
}

const followUpOppColumns = `id, name, company_name, contact_name, stage, owner_id, stage_entered_at`

// LeadsDueBetween returns open leads whose next follow-up date falls inside
// [from, to], ordered by that date.
func (r *Repository) LeadsDueBetween(ctx context.Context, scope authz.Scope, from, to time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE next_follow_up_date >= $1 AND next_follow_up_date <= $2
		  AND stage NOT IN ('closed_won', 'closed_lost')
		  AND `+authz.OwnerPredicate("owner_id", 3, 4)+`
		ORDER BY next_follow_up_date ASC`,
		from, to, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("leads due between: %w", err)
	}
	return collectLeads(rows)
}

// LeadsOverdue returns open leads whose next follow-up date is strictly before
// the given instant.
func (r *Repository) LeadsOverdue(ctx context.Context, scope authz.Scope, before time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE next_follow_up_date < $1
		  AND stage NOT IN ('closed_won', 'closed_lost')
		  AND `+authz.OwnerPredicate("owner_id", 2, 3)+`
		ORDER BY next_follow_up_date ASC`,
		before, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("leads overdue: %w", err)
	}
	return collectLeads(rows)
}

// OpportunitiesEnteredLateStageBetween returns proposal/negotiation
// opportunities whose stage_entered_at falls inside [from, to].
func (r *Repository) OpportunitiesEnteredLateStageBetween(ctx context.Context, scope authz.Scope, from, to time.Time) ([]FollowUpOpportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpOppColumns+`
		FROM opportunities
		WHERE stage IN ('proposal', 'negotiation')
		  AND stage_entered_at >= $1 AND stage_entered_at <= $2
		  AND `+authz.OwnerPredicate("owner_id", 3, 4)+`
		ORDER BY stage_entered_at ASC`,
		from, to, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("opportunities entered late stage: %w", err)
	}
	return collectFollowUpOpps(rows)
}

// OpportunitiesStalledSince returns proposal/negotiation opportunities that
// entered their stage before cutoff and have received no call since then.
func (r *Repository) OpportunitiesStalledSince(ctx context.Context, scope authz.Scope, cutoff time.Time) ([]FollowUpOpportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpOppColumns+`
		FROM opportunities o
		WHERE o.stage IN ('proposal', 'negotiation')
		  AND o.stage_entered_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM call_logs c
			WHERE c.opportunity_id = o.id AND c.created_at > o.stage_entered_at
		  )
		  AND `+authz.OwnerPredicate("o.owner_id", 2, 3)+`
		ORDER BY o.stage_entered_at ASC`,
		cutoff, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("opportunities stalled: %w", err)
	}
	return collectFollowUpOpps(rows)
}

func collectFollowUpOpps(rows pgx.Rows) ([]FollowUpOpportunity, error) {
	defer rows.Close()
	items := make([]FollowUpOpportunity, 0)
	for rows.Next() {
		var o FollowUpOpportunity
		if err := rows.Scan(&o.ID, &o.Name, &o.CompanyName, &o.ContactName, &o.Stage, &o.OwnerID, &o.StageEnteredAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
