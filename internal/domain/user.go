package domain

// Roles understood by the authorization layer.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RolePharmacist = "pharmacist"
)

// Actor is the authenticated caller as asserted by the external auth layer
// (X-User-Id / X-User-Role / X-Pharmacy-Id headers).
type Actor struct {
	UserID     string
	Role       string
	PharmacyID *string // nil when the actor is not bound to a pharmacy
}

// IsAdmin reports whether the actor has unrestricted cross-tenant access.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Scope restricts read queries to one pharmacy unless All is set.
// The zero value matches nothing: repositories return empty result sets for it,
// which covers non-admin actors that are not assigned to any pharmacy.
type Scope struct {
	All        bool
	PharmacyID string
}

// ScopeFor computes the tenant scope for a read query. Admins see everything
// but may narrow to one pharmacy via the optional filter; everyone else is
// pinned to their own pharmacy and the filter is ignored.
func ScopeFor(actor Actor, pharmacyFilter string) Scope {
	if actor.IsAdmin() {
		if pharmacyFilter != "" {
			return Scope{PharmacyID: pharmacyFilter}
		}
		return Scope{All: true}
	}
	if actor.PharmacyID == nil || *actor.PharmacyID == "" {
		return Scope{}
	}
	return Scope{PharmacyID: *actor.PharmacyID}
}

// Empty reports whether the scope can match no rows at all.
func (s Scope) Empty() bool { return !s.All && s.PharmacyID == "" }

// Allows reports whether a row owned by pharmacyID is visible in this scope.
func (s Scope) Allows(pharmacyID string) bool {
	return s.All || (s.PharmacyID != "" && s.PharmacyID == pharmacyID)
}
