package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"salesdesk_backend/internal/authz"
)

// Repository reads the lightweight projections the metric computations
// consume. Reads fan out concurrently; each sees its own snapshot.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Dataset is one fetch of everything the scoreboard needs.
type Dataset struct {
	Leads []LeadRow
	Calls []CallRow
	Opps  []OppRow
}

// Agent is a user eligible to own leads.
type Agent struct {
	ID   uuid.UUID
	Name string
}

// Load fetches the in-scope leads (optionally limited by creation date),
// their calls and the in-scope opportunities.
func (r *Repository) Load(ctx context.Context, scope authz.Scope, from, to *time.Time) (*Dataset, error) {
	ds := &Dataset{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leads, err := r.leads(gctx, scope, from, to)
		if err != nil {
			return err
		}
		ds.Leads = leads
		return nil
	})
	g.Go(func() error {
		calls, err := r.calls(gctx, scope, from, to)
		if err != nil {
			return err
		}
		ds.Calls = calls
		return nil
	})
	g.Go(func() error {
		opps, err := r.opportunities(gctx, scope)
		if err != nil {
			return err
		}
		ds.Opps = opps
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func dateRangeClause(col string, from, to *time.Time, args []any) (string, []any) {
	clause := ""
	if from != nil {
		args = append(args, *from)
		clause += fmt.Sprintf(" AND %s >= $%d", col, len(args))
	}
	if to != nil {
		args = append(args, *to)
		clause += fmt.Sprintf(" AND %s <= $%d", col, len(args))
	}
	return clause, args
}

func (r *Repository) leads(ctx context.Context, scope authz.Scope, from, to *time.Time) ([]LeadRow, error) {
	args := []any{scope.Admin, scope.UserID}
	query := `SELECT id, owner_id, company_name, stage, phone_valid, email_valid, converted_to_opportunity, actual_residual, created_at
		FROM leads
		WHERE ` + authz.OwnerPredicate("owner_id", 1, 2)
	clause, args := dateRangeClause("created_at", from, to, args)
	query += clause

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []LeadRow
	for rows.Next() {
		var l LeadRow
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.CompanyName, &l.Stage, &l.PhoneValid, &l.EmailValid, &l.ConvertedToOpp, &l.ActualResidual, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// calls returns the call logs belonging to leads in scope. The date range
// applies to the lead's creation date so the calls line up with the lead set.
func (r *Repository) calls(ctx context.Context, scope authz.Scope, from, to *time.Time) ([]CallRow, error) {
	args := []any{scope.Admin, scope.UserID}
	query := `SELECT c.lead_id, c.call_outcome, c.callback_scheduled, c.created_at
		FROM call_logs c
		JOIN leads l ON l.id = c.lead_id
		WHERE ` + authz.OwnerPredicate("l.owner_id", 1, 2)
	clause, args := dateRangeClause("l.created_at", from, to, args)
	query += clause

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var out []CallRow
	for rows.Next() {
		var c CallRow
		if err := rows.Scan(&c.LeadID, &c.Outcome, &c.CallbackScheduled, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) opportunities(ctx context.Context, scope authz.Scope) ([]OppRow, error) {
	query := `SELECT id, lead_id, stage, deal_value, probability, loss_reason, created_at, actual_close_date
		FROM opportunities
		WHERE ` + authz.OwnerPredicate("owner_id", 1, 2)

	rows, err := r.pool.Query(ctx, query, scope.Admin, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var out []OppRow
	for rows.Next() {
		var o OppRow
		if err := rows.Scan(&o.ID, &o.LeadID, &o.Stage, &o.DealValue, &o.Probability, &o.LossReason, &o.CreatedAt, &o.ActualCloseDate); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Agents lists every user, for the admin scoreboard.
func (r *Repository) Agents(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, COALESCE(NULLIF(name, ''), email) FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
