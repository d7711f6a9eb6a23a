package domain

import "time"

// Role identifies the kind of dashboard account.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleLoanOfficer Role = "loan_officer"
	RoleAgent       Role = "agent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLoanOfficer, RoleAgent:
		return true
	}
	return false
}

// Elevated reports whether the role bypasses record scoping.
func (r Role) Elevated() bool {
	return r == RoleAdmin
}

// PrincipalStatus represents lifecycle states for a dashboard account.
type PrincipalStatus string

const (
	PrincipalStatusActive   PrincipalStatus = "active"
	PrincipalStatusDisabled PrincipalStatus = "disabled"
)

// Valid reports whether s is a known status.
func (s PrincipalStatus) Valid() bool {
	return s == PrincipalStatusActive || s == PrincipalStatusDisabled
}

// Principal is an internal user of the dashboard. ScopeField and ScopeValue restrict which
// Salesforce records a non-admin principal may see.
type Principal struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	Status       PrincipalStatus
	PasswordHash string
	ScopeField   *string
	ScopeValue   *string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Active reports whether the principal may log in.
func (p *Principal) Active() bool {
	return p.Status == PrincipalStatusActive
}

// Scope returns the scope descriptor with nil values flattened to empty strings.
func (p *Principal) Scope() (field, value string) {
	if p.ScopeField != nil {
		field = *p.ScopeField
	}
	if p.ScopeValue != nil {
		value = *p.ScopeValue
	}
	return field, value
}

// Session is the claim set recovered from a verified session token. Claims are frozen at
// login time.
type Session struct {
	PrincipalID string
	Role        Role
	Name        string
	ScopeField  string
	ScopeValue  string
	ExpiresAt   time.Time
}

// RequestMeta carries caller details recorded with audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}
