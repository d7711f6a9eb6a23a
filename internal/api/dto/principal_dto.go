package dto

import "github.com/spec-kit/lead-lens/internal/domain"

// CreatePrincipalRequest payload. Password and the scope fields only apply to admins.
type CreatePrincipalRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	SFField  *string `json:"sfField"`
	SFValue  *string `json:"sfValue"`
}

// UpdatePrincipalRequest is a partial update; omitted fields are unchanged.
type UpdatePrincipalRequest struct {
	Name    *string                 `json:"name"`
	Email   *string                 `json:"email"`
	Status  *domain.PrincipalStatus `json:"status"`
	SFField *string                 `json:"sfField"`
	SFValue *string                 `json:"sfValue"`
}

// CreatePrincipalResponse carries the new principal and, for loan officers and agents, the
// access code. The code is never retrievable again.
type CreatePrincipalResponse struct {
	User       PrincipalResponse `json:"user"`
	AccessCode string            `json:"accessCode,omitempty"`
}

// PrincipalListResponse is one page of principals.
type PrincipalListResponse struct {
	Items    []PrincipalResponse `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

// AccessCodeResponse is returned after a code regeneration.
type AccessCodeResponse struct {
	AccessCode string `json:"accessCode"`
}
