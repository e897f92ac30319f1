package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"salesdesk_backend/internal/authz"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Activity loads the calls and opportunities that feed the activity rollups.
// The range bounds calls by their creation time and opportunities by either
// creation or close time, so a closed deal lands in the report of the day it
// closed.
func (r *Repository) Activity(ctx context.Context, scope authz.Scope, from, to time.Time) ([]CallActivity, []OppActivity, error) {
	var (
		calls []CallActivity
		opps  []OppActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		calls, err = r.calls(gctx, scope, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		opps, err = r.opportunities(gctx, scope, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return calls, opps, nil
}

func (r *Repository) calls(ctx context.Context, scope authz.Scope, from, to time.Time) ([]CallActivity, error) {
	query := `SELECT c.lead_id, COALESCE(l.company_name, ''), c.call_outcome, c.callback_scheduled, c.created_at
		FROM call_logs c
		LEFT JOIN leads l ON l.id = c.lead_id
		WHERE ` + authz.OwnerPredicate("c.agent_id", 1, 2) + `
		AND c.created_at >= $3 AND c.created_at <= $4`

	rows, err := r.pool.Query(ctx, query, scope.Admin, scope.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query call activity: %w", err)
	}
	defer rows.Close()

	var out []CallActivity
	for rows.Next() {
		var c CallActivity
		if err := rows.Scan(&c.LeadID, &c.CompanyName, &c.Outcome, &c.CallbackScheduled, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call activity: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) opportunities(ctx context.Context, scope authz.Scope, from, to time.Time) ([]OppActivity, error) {
	query := `SELECT id, stage, deal_value, loss_reason, created_at, actual_close_date
		FROM opportunities
		WHERE ` + authz.OwnerPredicate("owner_id", 1, 2) + `
		AND ((created_at >= $3 AND created_at <= $4)
			OR (actual_close_date IS NOT NULL AND actual_close_date >= $3 AND actual_close_date <= $4))`

	rows, err := r.pool.Query(ctx, query, scope.Admin, scope.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query opportunity activity: %w", err)
	}
	defer rows.Close()

	var out []OppActivity
	for rows.Next() {
		var o OppActivity
		if err := rows.Scan(&o.ID, &o.Stage, &o.DealValue, &o.LossReason, &o.CreatedAt, &o.ActualCloseDate); err != nil {
			return nil, fmt.Errorf("scan opportunity activity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// LossReasons groups closed-lost leads by loss reason, optionally limited by
// creation date. Leads lost without a recorded reason bucket under "Unknown".
func (r *Repository) LossReasons(ctx context.Context, scope authz.Scope, from, to *time.Time) ([]LossReasonCount, error) {
	args := []any{scope.Admin, scope.UserID}
	query := `SELECT COALESCE(NULLIF(loss_reason, ''), 'Unknown') AS reason, COUNT(*)
		FROM leads
		WHERE ` + authz.OwnerPredicate("owner_id", 1, 2) + `
		AND stage = 'closed_lost'`
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += ` GROUP BY reason ORDER BY COUNT(*) DESC, reason`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loss reasons: %w", err)
	}
	defer rows.Close()

	var out []LossReasonCount
	for rows.Next() {
		var lr LossReasonCount
		if err := rows.Scan(&lr.Reason, &lr.Count); err != nil {
			return nil, fmt.Errorf("scan loss reason: %w", err)
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}
