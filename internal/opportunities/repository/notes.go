package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is the activity-trail note projection used by the opportunity detail
// view.
type Note struct {
	ID            uuid.UUID
	LeadID        *uuid.UUID
	OpportunityID *uuid.UUID
	Content       string
	CreatedBy     uuid.UUID
	CreatedByName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListNotes returns notes addressed to the opportunity directly plus notes
// left on its source lead.
func (r *Repository) ListNotes(ctx context.Context, opp Opportunity) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, opportunity_id, content, created_by, created_by_name, created_at, updated_at
		FROM notes
		WHERE opportunity_id = $1 OR ($2::uuid IS NOT NULL AND lead_id = $2)
		ORDER BY created_at DESC`,
		opp.ID, opp.LeadID)
	if err != nil {
		return nil, fmt.Errorf("list opportunity notes: %w", err)
	}
	defer rows.Close()

	items := make([]Note, 0)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.LeadID, &n.OpportunityID, &n.Content, &n.CreatedBy, &n.CreatedByName, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
