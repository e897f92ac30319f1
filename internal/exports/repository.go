package exports

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/platform/apperr"
)

const apiKeyPrefix = "sd_"

// APIKey is an export API key. Keys are bound to the user that created them;
// an export authenticated with a key sees exactly what that user sees.
type APIKey struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	KeyHash    string
	KeyPrefix  string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
}

// LeadExportRow is the flat lead projection written to CSV.
type LeadExportRow struct {
	ID             uuid.UUID
	CompanyName    string
	ContactName    string
	Phone          *string
	Email          *string
	Stage          string
	DialAttempts   int
	Provider       *string
	DataSource     *string
	OwnerName      string
	NextFollowUp   *time.Time
	LastContacted  *time.Time
	ConvertedToOpp string
	CreatedAt      time.Time
}

// Repository provides data access for export operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key
// and its hash. Only the hash is stored.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = apiKeyPrefix + hex.EncodeToString(bytes)
	h := sha256.Sum256([]byte(plaintext))
	hash = hex.EncodeToString(h[:])
	prefix = plaintext[:12]
	return plaintext, hash, prefix, nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

const apiKeyColumns = `id, owner_id, name, key_hash, key_prefix, is_active, created_at, updated_at, last_used_at`

func (r *Repository) CreateAPIKey(ctx context.Context, ownerID uuid.UUID, name, keyHash, keyPrefix string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		INSERT INTO export_api_keys (owner_id, name, key_hash, key_prefix)
		VALUES ($1, $2, $3, $4)
		RETURNING `+apiKeyColumns,
		ownerID, name, keyHash, keyPrefix,
	).Scan(
		&key.ID, &key.OwnerID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt, &key.UpdatedAt, &key.LastUsedAt,
	)
	if err != nil {
		return APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return key, nil
}

// GetAPIKeyByHash retrieves an active API key by its hash.
func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM export_api_keys
		WHERE key_hash = $1 AND is_active
	`, keyHash).Scan(
		&key.ID, &key.OwnerID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt, &key.UpdatedAt, &key.LastUsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, apperr.NotFound("export API key not found")
	}
	if err != nil {
		return APIKey{}, fmt.Errorf("get api key: %w", err)
	}
	return key, nil
}

// ListAPIKeys returns every export API key.
func (r *Repository) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM export_api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(
			&key.ID, &key.OwnerID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt, &key.UpdatedAt, &key.LastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeAPIKey deactivates an export API key.
func (r *Repository) RevokeAPIKey(ctx context.Context, keyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_api_keys SET is_active = false, updated_at = now()
		WHERE id = $1
	`, keyID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("export API key not found")
	}
	return nil
}

// TouchAPIKey updates the last_used_at timestamp for the key.
func (r *Repository) TouchAPIKey(ctx context.Context, keyID uuid.UUID) {
	_, _ = r.pool.Exec(ctx, `
		UPDATE export_api_keys SET last_used_at = now(), updated_at = now()
		WHERE id = $1
	`, keyID)
}

// ScopeForKey derives the visibility scope of an API key from its owner's
// current role. A revoked or deleted owner invalidates the key.
func (r *Repository) ScopeForKey(ctx context.Context, key APIKey) (authz.Scope, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, key.OwnerID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return authz.Scope{}, apperr.Unauthorized("export API key owner no longer exists")
	}
	if err != nil {
		return authz.Scope{}, fmt.Errorf("resolve key owner: %w", err)
	}
	return authz.Scope{UserID: key.OwnerID, Admin: role == authz.RoleAdmin}, nil
}

// ListLeads streams the in-scope leads for CSV export, oldest first.
func (r *Repository) ListLeads(ctx context.Context, scope authz.Scope, limit int) ([]LeadExportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.company_name, l.contact_name, l.phone, l.email, l.stage, l.dial_attempts,
			l.provider, l.data_source,
			COALESCE((SELECT COALESCE(NULLIF(u.name, ''), u.email) FROM users u WHERE u.id = l.owner_id), ''),
			l.next_follow_up_date, l.last_contact_date, l.converted_to_opportunity, l.created_at
		FROM leads l
		WHERE `+authz.OwnerPredicate("l.owner_id", 1, 2)+`
		ORDER BY l.created_at ASC
		LIMIT $3
	`, scope.Admin, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list export leads: %w", err)
	}
	defer rows.Close()

	items := make([]LeadExportRow, 0)
	for rows.Next() {
		var row LeadExportRow
		if err := rows.Scan(
			&row.ID, &row.CompanyName, &row.ContactName, &row.Phone, &row.Email, &row.Stage, &row.DialAttempts,
			&row.Provider, &row.DataSource, &row.OwnerName,
			&row.NextFollowUp, &row.LastContacted, &row.ConvertedToOpp, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan export lead: %w", err)
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
