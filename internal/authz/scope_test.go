package authz

import (
	"testing"

	"github.com/google/uuid"
)

func TestScopeAllows(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	agent := Scope{UserID: owner}
	if !agent.Allows(owner) {
		t.Fatal("agent should see own rows")
	}
	if agent.Allows(other) {
		t.Fatal("agent should not see other agents' rows")
	}

	admin := Scope{UserID: other, Admin: true}
	if !admin.Allows(owner) {
		t.Fatal("admin should bypass ownership filter")
	}
}

func TestOwnerPredicate(t *testing.T) {
	got := OwnerPredicate("owner_id", 2, 3)
	want := "($2::boolean OR owner_id = $3)"
	if got != want {
		t.Fatalf("OwnerPredicate = %q, want %q", got, want)
	}
}
