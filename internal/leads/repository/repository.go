// Package repository provides pgx-backed persistence for leads, call logs
// and the follow-up queries.
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
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/platform/apperr"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// Lead mirrors the leads table.
type Lead struct {
	ID                    uuid.UUID
	CompanyName           string
	ContactName           string
	Phone                 *string
	Email                 *string
	Provider              *string
	ProcessingVolume      *string
	EffectiveRate         *string
	DataSource            *string
	DataCohort            *string
	OwnerID               uuid.UUID
	DataVerified          string
	PhoneValid            string
	EmailValid            string
	CorrectDecisionMaker  string
	Stage                 domain.Stage
	LastContactDate       *time.Time
	NextFollowUpDate      *time.Time
	FollowUpTime          *string
	QuoteDate             *time.Time
	QuotedRate            *string
	ExpectedResidual      *string
	SignedDate            *time.Time
	ActualResidual        *string
	OnboardingStatus      *string
	LossReason            *string
	ClosedDate            *time.Time
	EmailSent             string
	EmailSentDate         *time.Time
	QuoteEmailTemplateRef *string
	DialAttempts          int
	ConvertedToOpp        string
	OpportunityID         *uuid.UUID
	ConversionDate        *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const leadColumns = `id, company_name, contact_name, phone, email, provider, processing_volume,
	effective_rate, data_source, data_cohort, owner_id,
	data_verified, phone_valid, email_valid, correct_decision_maker, stage,
	last_contact_date, next_follow_up_date, follow_up_time,
	quote_date, quoted_rate, expected_residual,
	signed_date, actual_residual, onboarding_status,
	loss_reason, closed_date,
	email_sent, email_sent_date, quote_email_template,
	dial_attempts, converted_to_opportunity, opportunity_id, conversion_date,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.ContactName, &l.Phone, &l.Email, &l.Provider, &l.ProcessingVolume,
		&l.EffectiveRate, &l.DataSource, &l.DataCohort, &l.OwnerID,
		&l.DataVerified, &l.PhoneValid, &l.EmailValid, &l.CorrectDecisionMaker, &l.Stage,
		&l.LastContactDate, &l.NextFollowUpDate, &l.FollowUpTime,
		&l.QuoteDate, &l.QuotedRate, &l.ExpectedResidual,
		&l.SignedDate, &l.ActualResidual, &l.OnboardingStatus,
		&l.LossReason, &l.ClosedDate,
		&l.EmailSent, &l.EmailSentDate, &l.QuoteEmailTemplateRef,
		&l.DialAttempts, &l.ConvertedToOpp, &l.OpportunityID, &l.ConversionDate,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()
	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

type CreateLeadParams struct {
	CompanyName      string
	ContactName      string
	Phone            *string
	Email            *string
	Provider         *string
	ProcessingVolume *string
	EffectiveRate    *string
	DataSource       *string
	DataCohort       *string
	OwnerID          uuid.UUID
	PhoneValid       string
	EmailValid       string
	NextFollowUpDate *time.Time
	FollowUpTime     *string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			company_name, contact_name, phone, email, provider, processing_volume,
			effective_rate, data_source, data_cohort, owner_id,
			phone_valid, email_valid, next_follow_up_date, follow_up_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+leadColumns,
		params.CompanyName, params.ContactName, params.Phone, params.Email, params.Provider, params.ProcessingVolume,
		params.EffectiveRate, params.DataSource, params.DataCohort, params.OwnerID,
		params.PhoneValid, params.EmailValid, params.NextFollowUpDate, params.FollowUpTime,
	)
	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, scope authz.Scope) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3),
		id, scope.Admin, scope.UserID)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context, scope authz.Scope, hideConverted bool) ([]Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE ` + authz.OwnerPredicate("owner_id", 1, 2)
	if hideConverted {
		query += ` AND opportunity_id IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return collectLeads(rows)
}

func (r *Repository) ListByStage(ctx context.Context, stage domain.Stage, scope authz.Scope) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE stage = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3)+`
		ORDER BY created_at DESC`,
		stage, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("list leads by stage: %w", err)
	}
	return collectLeads(rows)
}

// UpdateLeadParams carries partial updates; nil fields are left untouched.
type UpdateLeadParams struct {
	CompanyName           *string
	ContactName           *string
	Phone                 *string
	Email                 *string
	Provider              *string
	ProcessingVolume      *string
	EffectiveRate         *string
	DataSource            *string
	DataCohort            *string
	OwnerID               *uuid.UUID
	Stage                 *domain.Stage
	DataVerified          *string
	PhoneValid            *string
	EmailValid            *string
	CorrectDecisionMaker  *string
	LastContactDate       *time.Time
	NextFollowUpDate      *time.Time
	FollowUpTime          *string
	QuoteDate             *time.Time
	QuotedRate            *string
	ExpectedResidual      *string
	SignedDate            *time.Time
	ActualResidual        *string
	OnboardingStatus      *string
	LossReason            *string
	EmailSent             *string
	EmailSentDate         *time.Time
	QuoteEmailTemplateRef *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams, scope authz.Scope) (Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, scope.Admin, scope.UserID}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.CompanyName != nil {
		set("company_name", *params.CompanyName)
	}
	if params.ContactName != nil {
		set("contact_name", *params.ContactName)
	}
	if params.Phone != nil {
		set("phone", *params.Phone)
	}
	if params.Email != nil {
		set("email", *params.Email)
	}
	if params.Provider != nil {
		set("provider", *params.Provider)
	}
	if params.ProcessingVolume != nil {
		set("processing_volume", *params.ProcessingVolume)
	}
	if params.EffectiveRate != nil {
		set("effective_rate", *params.EffectiveRate)
	}
	if params.DataSource != nil {
		set("data_source", *params.DataSource)
	}
	if params.DataCohort != nil {
		set("data_cohort", *params.DataCohort)
	}
	if params.OwnerID != nil {
		set("owner_id", *params.OwnerID)
	}
	if params.Stage != nil {
		set("stage", *params.Stage)
	}
	if params.DataVerified != nil {
		set("data_verified", *params.DataVerified)
	}
	if params.PhoneValid != nil {
		set("phone_valid", *params.PhoneValid)
	}
	if params.EmailValid != nil {
		set("email_valid", *params.EmailValid)
	}
	if params.CorrectDecisionMaker != nil {
		set("correct_decision_maker", *params.CorrectDecisionMaker)
	}
	if params.LastContactDate != nil {
		set("last_contact_date", *params.LastContactDate)
	}
	if params.NextFollowUpDate != nil {
		set("next_follow_up_date", *params.NextFollowUpDate)
	}
	if params.FollowUpTime != nil {
		set("follow_up_time", *params.FollowUpTime)
	}
	if params.QuoteDate != nil {
		set("quote_date", *params.QuoteDate)
	}
	if params.QuotedRate != nil {
		set("quoted_rate", *params.QuotedRate)
	}
	if params.ExpectedResidual != nil {
		set("expected_residual", *params.ExpectedResidual)
	}
	if params.SignedDate != nil {
		set("signed_date", *params.SignedDate)
	}
	if params.ActualResidual != nil {
		set("actual_residual", *params.ActualResidual)
	}
	if params.OnboardingStatus != nil {
		set("onboarding_status", *params.OnboardingStatus)
	}
	if params.LossReason != nil {
		set("loss_reason", *params.LossReason)
	}
	if params.EmailSent != nil {
		set("email_sent", *params.EmailSent)
	}
	if params.EmailSentDate != nil {
		set("email_sent_date", *params.EmailSentDate)
	}
	if params.QuoteEmailTemplateRef != nil {
		set("quote_email_template", *params.QuoteEmailTemplateRef)
	}

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $1 AND %s
		RETURNING %s`,
		strings.Join(sets, ", "), authz.OwnerPredicate("owner_id", 2, 3), leadColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, scope authz.Scope) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM leads
		WHERE id = $1 AND `+authz.OwnerPredicate("owner_id", 2, 3),
		id, scope.Admin, scope.UserID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// UpdateOwner reassigns a lead unconditionally; callers enforce admin-only.
func (r *Repository) UpdateOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET owner_id = $2, updated_at = now() WHERE id = $1`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("assign lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// MarkConverted flags the lead as converted inside the caller's transaction.
// It refuses to run twice for the same lead.
func MarkConverted(ctx context.Context, tx pgx.Tx, leadID, opportunityID uuid.UUID, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE leads
		SET converted_to_opportunity = 'Yes', opportunity_id = $2, conversion_date = $3, updated_at = now()
		WHERE id = $1 AND converted_to_opportunity = 'No'`,
		leadID, opportunityID, at)
	if err != nil {
		return fmt.Errorf("mark lead converted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("lead already converted")
	}
	return nil
}
