// Package templates manages the shared library of reusable email templates.
// Templates are global, not per-owner; deletes are soft so a template can be
// retired without breaking references to it.
package templates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

// Template is one reusable email template.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const templateColumns = `id, name, subject, body, category, is_active, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.Category, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("template not found")
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}
	return &t, nil
}

// ListActive returns the templates that have not been retired.
func (r *Repository) ListActive(ctx context.Context) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.Category, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

type TemplateParams struct {
	Name     string
	Subject  string
	Body     string
	Category string
}

func (r *Repository) Create(ctx context.Context, params TemplateParams) (*Template, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO email_templates (name, subject, body, category)
		VALUES ($1, $2, $3, $4)
		RETURNING `+templateColumns,
		params.Name, params.Subject, params.Body, params.Category,
	)
	return scanTemplate(row)
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params TemplateParams) (*Template, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE email_templates
		SET name = $2, subject = $3, body = $4, category = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+templateColumns,
		id, params.Name, params.Subject, params.Body, params.Category,
	)
	return scanTemplate(row)
}

// Delete retires a template. The row stays so existing references keep
// resolving.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE email_templates SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("template not found")
	}
	return nil
}
