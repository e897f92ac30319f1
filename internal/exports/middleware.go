package exports

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/platform/httpkit"
)

const (
	ctxKeyExportScope = "exportScope"
	ctxKeyExportKeyID = "exportKeyID"
)

// APIKeyAuthMiddleware validates export API keys for the public export
// endpoints and stores the resolved visibility scope on the context.
func APIKeyAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader("X-Export-API-Key")
		if plaintext == "" {
			httpkit.Error(c, http.StatusUnauthorized, "missing export API key", nil)
			return
		}

		key, err := repo.GetAPIKeyByHash(c.Request.Context(), HashKey(plaintext))
		if err != nil {
			httpkit.Error(c, http.StatusUnauthorized, "invalid export API key", nil)
			return
		}
		scope, err := repo.ScopeForKey(c.Request.Context(), key)
		if err != nil {
			httpkit.Error(c, http.StatusUnauthorized, "invalid export API key", nil)
			return
		}

		c.Set(ctxKeyExportScope, scope)
		c.Set(ctxKeyExportKeyID, key.ID)
		c.Next()
	}
}

func exportScope(c *gin.Context) (authz.Scope, bool) {
	val, ok := c.Get(ctxKeyExportScope)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing export context", nil)
		return authz.Scope{}, false
	}
	scope, ok := val.(authz.Scope)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing export context", nil)
		return authz.Scope{}, false
	}
	return scope, true
}
