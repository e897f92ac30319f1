package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/platform/apperr"
)

// CallLog mirrors the call_logs table. Rows are append-only.
type CallLog struct {
	ID                uuid.UUID
	LeadID            *uuid.UUID
	OpportunityID     *uuid.UUID
	CallDate          time.Time
	Outcome           domain.Outcome
	CallDuration      *int
	Notes             *string
	AgentID           uuid.UUID
	CallbackScheduled string
	CallbackDate      *time.Time
	CreatedAt         time.Time
}

const callColumns = `id, lead_id, opportunity_id, call_date, call_outcome, call_duration,
	notes, agent_id, callback_scheduled, callback_date, created_at`

func scanCall(row rowScanner) (CallLog, error) {
	var c CallLog
	err := row.Scan(
		&c.ID, &c.LeadID, &c.OpportunityID, &c.CallDate, &c.Outcome, &c.CallDuration,
		&c.Notes, &c.AgentID, &c.CallbackScheduled, &c.CallbackDate, &c.CreatedAt,
	)
	return c, err
}

// CallbackTodoParams describes the todo created inside the logCall transaction
// when the agent schedules a callback.
type CallbackTodoParams struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	DueDate     time.Time
}

type LogCallParams struct {
	LeadID       uuid.UUID
	AgentID      uuid.UUID
	Outcome      domain.Outcome
	CallDate     time.Time
	CallDuration *int
	Notes        *string
	CallbackDate *time.Time
	// Callback, when non-nil, requests a todo insert in the same transaction.
	Callback *CallbackTodoParams
}

// LogCallResult reports everything the transaction changed.
type LogCallResult struct {
	Call   CallLog
	Lead   Lead
	Effect domain.CallEffect
	TodoID *uuid.UUID
}

// LogCall performs the stage-transition write sequence atomically. The lead
// row is locked with FOR UPDATE so concurrent calls against the same lead
// serialize and the dial counter always equals the number of logged calls.
func (r *Repository) LogCall(ctx context.Context, params LogCallParams, scope authz.Scope, apply ApplyFunc) (LogCallResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return LogCallResult{}, fmt.Errorf("log call: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3)+`
		FOR UPDATE`,
		params.LeadID, scope.Admin, scope.UserID)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LogCallResult{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return LogCallResult{}, fmt.Errorf("log call: lock lead: %w", err)
	}

	effect := apply(lead.Stage, lead.DialAttempts)

	callbackScheduled := "No"
	if params.Callback != nil {
		callbackScheduled = "Yes"
	}
	callRow := tx.QueryRow(ctx, `
		INSERT INTO call_logs (
			lead_id, call_date, call_outcome, call_duration, notes, agent_id,
			callback_scheduled, callback_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+callColumns,
		params.LeadID, params.CallDate, params.Outcome, params.CallDuration, params.Notes, params.AgentID,
		callbackScheduled, params.CallbackDate,
	)
	call, err := scanCall(callRow)
	if err != nil {
		return LogCallResult{}, fmt.Errorf("log call: insert: %w", err)
	}

	leadRow := tx.QueryRow(ctx, `
		UPDATE leads
		SET stage = $2,
			dial_attempts = $3,
			last_contact_date = $4,
			loss_reason = COALESCE(NULLIF($5::text, ''), loss_reason),
			closed_date = COALESCE($6, closed_date),
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		params.LeadID, effect.Stage, effect.DialAttempts, params.CallDate,
		effect.LossReason, effect.ClosedAt,
	)
	updated, err := scanLead(leadRow)
	if err != nil {
		return LogCallResult{}, fmt.Errorf("log call: update lead: %w", err)
	}

	result := LogCallResult{Call: call, Lead: updated, Effect: effect}

	if params.Callback != nil {
		var todoID uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO todos (owner_id, title, description, priority, status, due_date, linked_lead_id)
			VALUES ($1, $2, $3, 'high', 'pending', $4, $5)
			RETURNING id`,
			params.Callback.OwnerID, params.Callback.Title, params.Callback.Description,
			params.Callback.DueDate, params.LeadID,
		).Scan(&todoID)
		if err != nil {
			return LogCallResult{}, fmt.Errorf("log call: create callback todo: %w", err)
		}
		result.TodoID = &todoID
	}

	if err := tx.Commit(ctx); err != nil {
		return LogCallResult{}, fmt.Errorf("log call: commit: %w", err)
	}
	return result, nil
}

func (r *Repository) ListCallsByLead(ctx context.Context, leadID uuid.UUID, scope authz.Scope) ([]CallLog, error) {
	// Existence and visibility check first so out-of-scope leads 404 instead
	// of returning an empty history.
	if _, err := r.GetByID(ctx, leadID, scope); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+callColumns+`
		FROM call_logs
		WHERE lead_id = $1
		ORDER BY call_date DESC, created_at DESC`,
		leadID)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	items := make([]CallLog, 0)
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, call)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
