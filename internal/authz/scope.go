// Package authz centralizes ownership-based visibility. Every repository read
// and write is scoped by a Scope derived from the caller's identity: admins
// see everything, agents see only rows they own.
package authz

import (
	"fmt"

	"salesdesk_backend/platform/httpkit"

	"github.com/google/uuid"
)

// RoleAdmin is the role that bypasses ownership filters.
const RoleAdmin = "admin"

// Scope is the visibility predicate derived from the acting user.
type Scope struct {
	UserID uuid.UUID
	Admin  bool
}

// ScopeFor derives the visibility scope from an authenticated identity.
func ScopeFor(identity httpkit.Identity) Scope {
	return Scope{
		UserID: identity.UserID(),
		Admin:  identity.HasRole(RoleAdmin),
	}
}

// Allows reports whether the scope permits access to a row owned by ownerID.
func (s Scope) Allows(ownerID uuid.UUID) bool {
	return s.Admin || s.UserID == ownerID
}

// OwnerPredicate renders the scope as a SQL fragment against the given owner
// column. adminArg and userArg are 1-based positional parameter indexes that
// must be bound to Scope.Admin and Scope.UserID respectively. Repositories use
// this one fragment instead of duplicating role branches per query.
func OwnerPredicate(ownerColumn string, adminArg, userArg int) string {
	return fmt.Sprintf("($%d::boolean OR %s = $%d)", adminArg, ownerColumn, userArg)
}
