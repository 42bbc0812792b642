package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestScopeFor_Admin(t *testing.T) {
	admin := Actor{UserID: "u1", Role: RoleAdmin}

	scope := ScopeFor(admin, "")
	assert.True(t, scope.All)
	assert.True(t, scope.Allows("any-pharmacy"))

	// Admins may narrow to one pharmacy.
	scope = ScopeFor(admin, "ph-1")
	assert.False(t, scope.All)
	assert.True(t, scope.Allows("ph-1"))
	assert.False(t, scope.Allows("ph-2"))
}

func TestScopeFor_ManagerPinnedToOwnPharmacy(t *testing.T) {
	manager := Actor{UserID: "u2", Role: RoleManager, PharmacyID: strPtr("ph-1")}

	// The filter is ignored for non-admins.
	scope := ScopeFor(manager, "ph-2")
	assert.Equal(t, "ph-1", scope.PharmacyID)
	assert.True(t, scope.Allows("ph-1"))
	assert.False(t, scope.Allows("ph-2"))
}

func TestScopeFor_UnassignedUserSeesNothing(t *testing.T) {
	pharmacist := Actor{UserID: "u3", Role: RolePharmacist}

	scope := ScopeFor(pharmacist, "")
	assert.True(t, scope.Empty())
	assert.False(t, scope.Allows("ph-1"))
}
