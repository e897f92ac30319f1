// Package notes stores free-form activity notes on leads and opportunities.
package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Note mirrors the notes table. The author's display name is snapshotted at
// creation so the trail survives user changes.
type Note struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunityId,omitempty"`
	Content       string     `json:"content"`
	CreatedBy     uuid.UUID  `json:"createdBy"`
	CreatedByName string     `json:"createdByName"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

const noteColumns = `id, lead_id, opportunity_id, content, created_by, created_by_name, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateParams struct {
	LeadID        *uuid.UUID
	OpportunityID *uuid.UUID
	Content       string
	CreatedBy     uuid.UUID
}

// Create inserts a note, snapshotting the author's name from the users table.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Note, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notes (lead_id, opportunity_id, content, created_by, created_by_name)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(NULLIF(name, ''), email, 'Unknown User') FROM users WHERE id = $4))
		RETURNING `+noteColumns,
		params.LeadID, params.OpportunityID, params.Content, params.CreatedBy)

	var n Note
	err := row.Scan(&n.ID, &n.LeadID, &n.OpportunityID, &n.Content, &n.CreatedBy, &n.CreatedByName, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE lead_id = $1
		ORDER BY created_at DESC`,
		leadID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
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
