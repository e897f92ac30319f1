package exports

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 5000
	maxLimit     = 50000
)

// Handler handles lead CSV exports and API key management.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// ---- Admin API key management (JWT authenticated) ----

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"ownerId"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

type CreateAPIKeyResponse struct {
	APIKeyResponse
	// Key is the plaintext, returned exactly once at creation.
	Key string `json:"key"`
}

func toAPIKeyResponse(key APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         key.ID,
		OwnerID:    key.OwnerID,
		Name:       key.Name,
		KeyPrefix:  key.KeyPrefix,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt,
		LastUsedAt: key.LastUsedAt,
	}
}

func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate API key", nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	key, err := h.repo.CreateAPIKey(c.Request.Context(), identity.UserID(), req.Name, hash, prefix)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            plaintext,
	})
}

func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	keys, err := h.repo.ListAPIKeys(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = toAPIKeyResponse(k)
	}
	httpkit.OK(c, result)
}

func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid key id", nil)
		return
	}
	if err := h.repo.RevokeAPIKey(c.Request.Context(), keyID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "api key revoked"})
}

// ---- Lead CSV export (API key authenticated) ----

func csvHeaders() []string {
	return []string{
		"Lead ID",
		"Company Name",
		"Contact Name",
		"Phone",
		"Email",
		"Stage",
		"Dial Attempts",
		"Provider",
		"Data Source",
		"Owner",
		"Next Follow Up",
		"Last Contact",
		"Converted",
		"Created At",
	}
}

func (row LeadExportRow) csv() []string {
	return []string{
		row.ID.String(),
		row.CompanyName,
		row.ContactName,
		strOrEmpty(row.Phone),
		strOrEmpty(row.Email),
		row.Stage,
		strconv.Itoa(row.DialAttempts),
		strOrEmpty(row.Provider),
		strOrEmpty(row.DataSource),
		row.OwnerName,
		dateOrEmpty(row.NextFollowUp),
		dateOrEmpty(row.LastContacted),
		row.ConvertedToOpp,
		row.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// ExportLeadsCSV streams the visible leads as CSV.
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	scope, ok := exportScope(c)
	if !ok {
		return
	}
	if keyID, exists := c.Get(ctxKeyExportKeyID); exists {
		if id, castOK := keyID.(uuid.UUID); castOK {
			h.repo.TouchAPIKey(c.Request.Context(), id)
		}
	}

	leads, err := h.repo.ListLeads(c.Request.Context(), scope, parseLimit(c))
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(csvHeaders()); err != nil {
		return
	}
	for _, row := range leads {
		if err := writer.Write(row.csv()); err != nil {
			return
		}
	}
	writer.Flush()
}
