package domain

// Role represents a caller's access level on the REST surface.
type Role string

const (
	// RoleMember may act on their own account only.
	RoleMember Role = "member"

	// RoleAdmin may act on any account and issue adjustments.
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Principal is the authenticated caller.
type Principal struct {
	AccountID string
	Role      Role
}

// CanActOn reports whether the principal may read or mutate accountID.
func (p *Principal) CanActOn(accountID string) bool {
	return p.Role == RoleAdmin || p.AccountID == accountID
}
