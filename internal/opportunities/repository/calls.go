package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	leadsrepo "salesdesk_backend/internal/leads/repository"
)

// CreateCallParams records a call directly against an opportunity. Unlike
// lead calls, no stage transition applies.
type CreateCallParams struct {
	OpportunityID uuid.UUID
	AgentID       uuid.UUID
	Outcome       string
	CallDate      time.Time
	CallDuration  *int
	Notes         *string
	CallbackDate  *time.Time
}

func (r *Repository) CreateCall(ctx context.Context, params CreateCallParams) (leadsrepo.CallLog, error) {
	callbackScheduled := "No"
	if params.CallbackDate != nil {
		callbackScheduled = "Yes"
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO call_logs (
			opportunity_id, call_date, call_outcome, call_duration, notes, agent_id,
			callback_scheduled, callback_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, lead_id, opportunity_id, call_date, call_outcome, call_duration,
			notes, agent_id, callback_scheduled, callback_date, created_at`,
		params.OpportunityID, params.CallDate, params.Outcome, params.CallDuration, params.Notes, params.AgentID,
		callbackScheduled, params.CallbackDate,
	)

	var c leadsrepo.CallLog
	err := row.Scan(
		&c.ID, &c.LeadID, &c.OpportunityID, &c.CallDate, &c.Outcome, &c.CallDuration,
		&c.Notes, &c.AgentID, &c.CallbackScheduled, &c.CallbackDate, &c.CreatedAt,
	)
	if err != nil {
		return leadsrepo.CallLog{}, fmt.Errorf("create opportunity call: %w", err)
	}
	return c, nil
}
