package dto

import (
	"time"

	"github.com/spec-kit/lead-lens/internal/domain"
)

// LoginRequest payload. Admins send a password, loan officers and agents an access code.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	AccessCode string `json:"accessCode"`
}

// Credential returns whichever secret was supplied.
func (r LoginRequest) Credential() string {
	if r.Password != "" {
		return r.Password
	}
	return r.AccessCode
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PrincipalResponse is the public view of a principal. Password hashes never leave the service.
type PrincipalResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	SFField     *string    `json:"sfField"`
	SFValue     *string    `json:"sfValue"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	ActiveLeads *int       `json:"activeLeads,omitempty"`
}

// NewPrincipalResponse maps a principal.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:          p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        string(p.Role),
		Status:      string(p.Status),
		SFField:     p.ScopeField,
		SFValue:     p.ScopeValue,
		CreatedAt:   p.CreatedAt,
		LastLoginAt: p.LastLoginAt,
	}
}

// AuthResponse is returned by login.
type AuthResponse struct {
	User      PrincipalResponse `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}
