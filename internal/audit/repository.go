// Package audit keeps the append-only deletion trail. Rows are written
// synchronously when a lead or opportunity is deleted and are never updated.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry mirrors the audit_logs table.
type Entry struct {
	ID             uuid.UUID       `json:"id"`
	EntityType     string          `json:"entityType"`
	EntityID       uuid.UUID       `json:"entityId"`
	EntityName     string          `json:"entityName"`
	DeletedBy      uuid.UUID       `json:"deletedBy"`
	DeletedByName  string          `json:"deletedByName"`
	DeletedAt      time.Time       `json:"deletedAt"`
	AdditionalInfo json.RawMessage `json:"additionalInfo,omitempty"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type RecordParams struct {
	EntityType string
	EntityID   uuid.UUID
	EntityName string
	DeletedBy  uuid.UUID
	Details    map[string]any
}

// Record appends one audit row, snapshotting the deleter's display name.
func (r *Repository) Record(ctx context.Context, params RecordParams) error {
	var info []byte
	if len(params.Details) > 0 {
		encoded, err := json.Marshal(params.Details)
		if err != nil {
			return fmt.Errorf("audit record: encode details: %w", err)
		}
		info = encoded
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (entity_type, entity_id, entity_name, deleted_by, deleted_by_name, additional_info)
		VALUES ($1, $2, $3, $4,
			COALESCE((SELECT COALESCE(NULLIF(name, ''), email) FROM users WHERE id = $4), 'Unknown User'),
			$5)`,
		params.EntityType, params.EntityID, params.EntityName, params.DeletedBy, info)
	if err != nil {
		return fmt.Errorf("audit record: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, entity_name, deleted_by, deleted_by_name, deleted_at, additional_info
		FROM audit_logs
		ORDER BY deleted_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	items := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.EntityName, &e.DeletedBy, &e.DeletedByName, &e.DeletedAt, &e.AdditionalInfo); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
