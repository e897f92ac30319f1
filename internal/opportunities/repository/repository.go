// Package repository provides pgx-backed persistence for opportunities,
// including the transactional lead conversion.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/internal/authz"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/apperr"
)

// Store is the persistence boundary the opportunities service depends on.
type Store interface {
	Convert(ctx context.Context, params ConvertParams, scope authz.Scope) (Opportunity, error)
	GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (Opportunity, error)
	List(ctx context.Context, scope authz.Scope) ([]Opportunity, error)
	ListByStage(ctx context.Context, stage string, scope authz.Scope) ([]Opportunity, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams, scope authz.Scope) (Opportunity, error)
	Delete(ctx context.Context, id uuid.UUID, scope authz.Scope) error
	ListCalls(ctx context.Context, opp Opportunity) ([]leadsrepo.CallLog, error)
	ListNotes(ctx context.Context, opp Opportunity) ([]Note, error)
	CreateCall(ctx context.Context, params CreateCallParams) (leadsrepo.CallLog, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// Opportunity mirrors the opportunities table.
type Opportunity struct {
	ID                uuid.UUID
	LeadID            *uuid.UUID
	Name              string
	CompanyName       string
	ContactName       string
	Phone             *string
	Email             *string
	Stage             string
	DealValue         *string
	Probability       int
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	StageEnteredAt    *time.Time
	OwnerID           uuid.UUID
	Notes             *string
	LossReason        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const oppColumns = `id, lead_id, name, company_name, contact_name, phone, email, stage,
	deal_value, probability, expected_close_date, actual_close_date, stage_entered_at,
	owner_id, notes, loss_reason, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row rowScanner) (Opportunity, error) {
	var o Opportunity
	err := row.Scan(
		&o.ID, &o.LeadID, &o.Name, &o.CompanyName, &o.ContactName, &o.Phone, &o.Email, &o.Stage,
		&o.DealValue, &o.Probability, &o.ExpectedCloseDate, &o.ActualCloseDate, &o.StageEnteredAt,
		&o.OwnerID, &o.Notes, &o.LossReason, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// ConvertParams describes the conversion write. Identity fields are already
// resolved from the lead by the service.
type ConvertParams struct {
	LeadID            uuid.UUID
	Name              string
	CompanyName       string
	ContactName       string
	Phone             *string
	Email             *string
	DealValue         *string
	ExpectedCloseDate *time.Time
	Notes             *string
	OwnerID           uuid.UUID
	ConvertedAt       time.Time
}

// Convert creates the opportunity and flags the lead in one transaction. A
// lead that is already converted fails with Conflict; nothing else about the
// lead, its call logs or its notes changes.
func (r *Repository) Convert(ctx context.Context, params ConvertParams, scope authz.Scope) (Opportunity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Opportunity{}, fmt.Errorf("convert lead: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the lead so two concurrent conversions serialize on the guard.
	var converted string
	err = tx.QueryRow(ctx, `
		SELECT converted_to_opportunity
		FROM leads
		WHERE id = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3)+`
		FOR UPDATE`,
		params.LeadID, scope.Admin, scope.UserID).Scan(&converted)
	if errors.Is(err, pgx.ErrNoRows) {
		return Opportunity{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Opportunity{}, fmt.Errorf("convert lead: lock lead: %w", err)
	}
	if converted == "Yes" {
		return Opportunity{}, apperr.Conflict("lead already converted")
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO opportunities (
			lead_id, name, company_name, contact_name, phone, email,
			stage, deal_value, expected_close_date, owner_id, notes
		) VALUES ($1, $2, $3, $4, $5, $6, 'qualified', $7, $8, $9, $10)
		RETURNING `+oppColumns,
		params.LeadID, params.Name, params.CompanyName, params.ContactName, params.Phone, params.Email,
		params.DealValue, params.ExpectedCloseDate, params.OwnerID, params.Notes,
	)
	opp, err := scanOpportunity(row)
	if err != nil {
		return Opportunity{}, fmt.Errorf("convert lead: insert opportunity: %w", err)
	}

	if err := leadsrepo.MarkConverted(ctx, tx, params.LeadID, opp.ID, params.ConvertedAt); err != nil {
		return Opportunity{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Opportunity{}, fmt.Errorf("convert lead: commit: %w", err)
	}
	return opp, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (Opportunity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+oppColumns+`
		FROM opportunities
		WHERE id = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3),
		id, scope.Admin, scope.UserID)
	opp, err := scanOpportunity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Opportunity{}, apperr.NotFound("opportunity not found")
	}
	if err != nil {
		return Opportunity{}, fmt.Errorf("get opportunity: %w", err)
	}
	return opp, nil
}

func (r *Repository) List(ctx context.Context, scope authz.Scope) ([]Opportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+oppColumns+`
		FROM opportunities
		WHERE `+authz.OwnerPredicate("owner_id", 1, 2)+`
		ORDER BY created_at DESC`,
		scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return collectOpportunities(rows)
}

func (r *Repository) ListByStage(ctx context.Context, stage string, scope authz.Scope) ([]Opportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+oppColumns+`
		FROM opportunities
		WHERE stage = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3)+`
		ORDER BY created_at DESC`,
		stage, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("list opportunities by stage: %w", err)
	}
	return collectOpportunities(rows)
}

func collectOpportunities(rows pgx.Rows) ([]Opportunity, error) {
	defer rows.Close()
	items := make([]Opportunity, 0)
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, opp)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// UpdateParams carries partial updates; nil fields are left untouched.
// StageEnteredAt and the stage-change note are set by the service when the
// stage moves to proposal/negotiation.
type UpdateParams struct {
	Name              *string
	Stage             *string
	DealValue         *string
	Probability       *int
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	StageEnteredAt    *time.Time
	Notes             *string
	LossReason        *string
	// StageNote, when non-empty, records an activity-trail note in the same
	// transaction as the update.
	StageNote       string
	StageNoteAuthor uuid.UUID
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams, scope authz.Scope) (Opportunity, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, scope.Admin, scope.UserID}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		set("name", *params.Name)
	}
	if params.Stage != nil {
		set("stage", *params.Stage)
	}
	if params.DealValue != nil {
		set("deal_value", *params.DealValue)
	}
	if params.Probability != nil {
		set("probability", *params.Probability)
	}
	if params.ExpectedCloseDate != nil {
		set("expected_close_date", *params.ExpectedCloseDate)
	}
	if params.ActualCloseDate != nil {
		set("actual_close_date", *params.ActualCloseDate)
	}
	if params.StageEnteredAt != nil {
		set("stage_entered_at", *params.StageEnteredAt)
	}
	if params.Notes != nil {
		set("notes", *params.Notes)
	}
	if params.LossReason != nil {
		set("loss_reason", *params.LossReason)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Opportunity{}, fmt.Errorf("update opportunity: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE opportunities SET %s
		WHERE id = $1 AND %s
		RETURNING %s`,
		strings.Join(sets, ", "), authz.OwnerPredicate("owner_id", 2, 3), oppColumns)

	row := tx.QueryRow(ctx, query, args...)
	opp, err := scanOpportunity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Opportunity{}, apperr.NotFound("opportunity not found")
	}
	if err != nil {
		return Opportunity{}, fmt.Errorf("update opportunity: %w", err)
	}

	if params.StageNote != "" {
		_, err = tx.Exec(ctx, `
			INSERT INTO notes (opportunity_id, content, created_by, created_by_name)
			VALUES ($1, $2, $3, (SELECT COALESCE(NULLIF(name, ''), email, 'Unknown User') FROM users WHERE id = $3))`,
			id, params.StageNote, params.StageNoteAuthor)
		if err != nil {
			return Opportunity{}, fmt.Errorf("update opportunity: stage note: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Opportunity{}, fmt.Errorf("update opportunity: commit: %w", err)
	}
	return opp, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, scope authz.Scope) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM opportunities
		WHERE id = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3),
		id, scope.Admin, scope.UserID)
	if err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("opportunity not found")
	}
	return nil
}

// ListCalls returns the call history addressed to the opportunity directly
// plus calls logged against its source lead.
func (r *Repository) ListCalls(ctx context.Context, opp Opportunity) ([]leadsrepo.CallLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, opportunity_id, call_date, call_outcome, call_duration,
			notes, agent_id, callback_scheduled, callback_date, created_at
		FROM call_logs
		WHERE opportunity_id = $1 OR ($2::uuid IS NOT NULL AND lead_id = $2)
		ORDER BY call_date DESC, created_at DESC`,
		opp.ID, opp.LeadID)
	if err != nil {
		return nil, fmt.Errorf("list opportunity calls: %w", err)
	}
	defer rows.Close()

	items := make([]leadsrepo.CallLog, 0)
	for rows.Next() {
		var c leadsrepo.CallLog
		if err := rows.Scan(
			&c.ID, &c.LeadID, &c.OpportunityID, &c.CallDate, &c.Outcome, &c.CallDuration,
			&c.Notes, &c.AgentID, &c.CallbackScheduled, &c.CallbackDate, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
