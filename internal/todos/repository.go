// Package todos is the per-agent task list, including the callback todos the
// call engine generates.
package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

// Todo mirrors the todos table.
type Todo struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"ownerId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Completed    bool       `json:"completed"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	LinkedLeadID *uuid.UUID `json:"linkedLeadId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

const todoColumns = `id, owner_id, title, description, completed, due_date, priority, status,
	linked_lead_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (Todo, error) {
	var t Todo
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.DueDate, &t.Priority, &t.Status,
		&t.LinkedLeadID, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// ListByOwner returns the owner's todos, pending first, then by due date.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Todo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE owner_id = $1
		ORDER BY completed ASC, due_date ASC NULLS LAST, created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	items := make([]Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, todo)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

type CreateParams struct {
	OwnerID      uuid.UUID
	Title        string
	Description  *string
	DueDate      *time.Time
	Priority     string
	LinkedLeadID *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Todo, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO todos (owner_id, title, description, due_date, priority, linked_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+todoColumns,
		params.OwnerID, params.Title, params.Description, params.DueDate, params.Priority, params.LinkedLeadID)
	todo, err := scanTodo(row)
	if err != nil {
		return Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// GetByID returns a todo regardless of owner; used by the reminder worker.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Todo, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	todo, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Todo{}, apperr.NotFound("todo not found")
	}
	if err != nil {
		return Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

type UpdateParams struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	Priority    *string
}

func (r *Repository) Update(ctx context.Context, id, ownerID uuid.UUID, params UpdateParams) (Todo, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, ownerID}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		set("title", *params.Title)
	}
	if params.Description != nil {
		set("description", *params.Description)
	}
	if params.Completed != nil {
		set("completed", *params.Completed)
		// Keep the status column in sync with the completed flag.
		status := "pending"
		if *params.Completed {
			status = "completed"
		}
		set("status", status)
	}
	if params.DueDate != nil {
		set("due_date", *params.DueDate)
	}
	if params.Priority != nil {
		set("priority", *params.Priority)
	}

	query := fmt.Sprintf(`
		UPDATE todos SET %s
		WHERE id = $1 AND owner_id = $2
		RETURNING %s`, strings.Join(sets, ", "), todoColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	todo, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Todo{}, apperr.NotFound("todo not found")
	}
	if err != nil {
		return Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

func (r *Repository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("todo not found")
	}
	return nil
}
