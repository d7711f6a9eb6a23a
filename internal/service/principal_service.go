package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/auth"
	"github.com/spec-kit/lead-lens/internal/config"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/repository"
	"github.com/spec-kit/lead-lens/internal/scope"
	"github.com/spec-kit/lead-lens/internal/soql"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// PrincipalListItem is a principal plus the number of contacts in its scope. ActiveLeads is
// nil for admins.
type PrincipalListItem struct {
	Principal   domain.Principal
	ActiveLeads *int
}

// PrincipalList is one page of a principal listing.
type PrincipalList struct {
	Items    []PrincipalListItem
	Total    int
	Page     int
	PageSize int
}

// CreatePrincipalInput carries the fields of a new account. Password and the scope fields
// only apply to admins.
type CreatePrincipalInput struct {
	Name       string
	Email      string
	Password   string
	ScopeField *string
	ScopeValue *string
}

// UpdatePrincipalInput is a partial update; nil fields are left unchanged.
type UpdatePrincipalInput struct {
	Name       *string
	Email      *string
	Status     *domain.PrincipalStatus
	ScopeField *string
	ScopeValue *string
}

// PrincipalService manages dashboard accounts for admins.
type PrincipalService struct {
	principals repository.PrincipalRepository
	contacts   *ContactService
	validate   *validator.Validate
	bcryptCost int
	logger     *zap.Logger
}

// PrincipalDependencies encapsulates collaborators for principal management.
type PrincipalDependencies struct {
	PrincipalRepo  repository.PrincipalRepository
	ContactService *ContactService
	Logger         *zap.Logger
}

// NewPrincipalService constructs the service.
func NewPrincipalService(cfg config.Config, deps PrincipalDependencies) *PrincipalService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrincipalService{
		principals: deps.PrincipalRepo,
		contacts:   deps.ContactService,
		validate:   validator.New(),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// List returns a page of principals of role ordered by name. Loan officer and agent items
// carry their active lead counts.
func (s *PrincipalService) List(ctx context.Context, role domain.Role, page domain.Pagination) (*PrincipalList, error) {
	items, total, err := s.principals.List(ctx, repository.PrincipalFilter{
		Role:   role,
		Search: page.Search,
		Limit:  page.PageSize,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	out := &PrincipalList{Items: make([]PrincipalListItem, 0, len(items)), Total: total, Page: page.Page, PageSize: page.PageSize}
	var counts map[string]int
	if !role.Elevated() && s.contacts != nil && len(items) > 0 {
		names := make([]string, 0, len(items))
		for _, p := range items {
			names = append(names, p.Name)
		}
		counts = s.contacts.CountForScopeValues(ctx, names, role, scope.DefaultField(role))
	}
	for _, p := range items {
		item := PrincipalListItem{Principal: p}
		if counts != nil {
			n := counts[p.Name]
			item.ActiveLeads = &n
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// Create adds a principal of role. Loan officers and agents get a generated access code,
// returned once; admins supply a password.
func (s *PrincipalService) Create(ctx context.Context, role domain.Role, in CreatePrincipalInput) (*domain.Principal, string, error) {
	name, email, err := s.validateNameAndEmail(in.Name, in.Email)
	if err != nil {
		return nil, "", err
	}

	p := &domain.Principal{
		Email:  email,
		Name:   name,
		Role:   role,
		Status: domain.PrincipalStatusActive,
	}

	credential := in.Password
	var accessCode string
	if role.Elevated() {
		if len(credential) < auth.MinPasswordLength {
			return nil, "", apperrors.NewValidationError("Name, email, and password (min 6 characters) required", nil)
		}
		if err := validateScopeField(in.ScopeField); err != nil {
			return nil, "", err
		}
		p.ScopeField = trimmedOrNil(in.ScopeField)
		p.ScopeValue = trimmedOrNil(in.ScopeValue)
	} else {
		if accessCode, err = auth.GenerateAccessCode(); err != nil {
			return nil, "", apperrors.NewInternalError(err)
		}
		credential = accessCode
		field := scope.DefaultField(role)
		p.ScopeField = &field
		p.ScopeValue = &name
	}

	if p.PasswordHash, err = auth.HashPassword(credential, s.bcryptCost); err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	if err := s.principals.Create(ctx, p); err != nil {
		return nil, "", mapRepoError(err, RoleLabel(role))
	}
	return p, accessCode, nil
}

// Update applies a partial update. Renaming a loan officer or agent rewrites their scope value.
func (s *PrincipalService) Update(ctx context.Context, actor *domain.Session, role domain.Role, id string, in UpdatePrincipalInput) (*domain.Principal, error) {
	if in.Name == nil && in.Email == nil && in.Status == nil && in.ScopeField == nil && in.ScopeValue == nil {
		return nil, apperrors.NewValidationError("No fields to update", nil)
	}

	p, err := s.principals.GetByIDAndRole(ctx, id, role)
	if err != nil {
		return nil, mapRepoError(err, RoleLabel(role))
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Name cannot be empty", nil)
		}
		p.Name = name
		if !role.Elevated() {
			p.ScopeValue = &name
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := s.validate.Var(email, "required,email"); err != nil {
			return nil, apperrors.NewValidationError("Invalid email format", nil)
		}
		p.Email = email
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": *in.Status})
		}
		if role.Elevated() && actor != nil && actor.PrincipalID == p.ID && *in.Status == domain.PrincipalStatusDisabled {
			return nil, apperrors.NewValidationError("Cannot disable your own account", nil)
		}
		p.Status = *in.Status
	}
	if role.Elevated() {
		if in.ScopeField != nil {
			if err := validateScopeField(in.ScopeField); err != nil {
				return nil, err
			}
			p.ScopeField = trimmedOrNil(in.ScopeField)
		}
		if in.ScopeValue != nil {
			p.ScopeValue = trimmedOrNil(in.ScopeValue)
		}
	}

	if err := s.principals.Update(ctx, p); err != nil {
		return nil, mapRepoError(err, RoleLabel(role))
	}
	return p, nil
}

// RegenerateCode replaces a loan officer's or agent's access code. The previous code stops
// working immediately.
func (s *PrincipalService) RegenerateCode(ctx context.Context, role domain.Role, id string) (string, error) {
	if role.Elevated() {
		return "", apperrors.NewValidationError("Admins use passwords, not access codes", nil)
	}
	p, err := s.principals.GetByIDAndRole(ctx, id, role)
	if err != nil {
		return "", mapRepoError(err, RoleLabel(role))
	}

	code, err := auth.GenerateAccessCode()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if p.PasswordHash, err = auth.HashPassword(code, s.bcryptCost); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if err := s.principals.Update(ctx, p); err != nil {
		return "", mapRepoError(err, RoleLabel(role))
	}
	return code, nil
}

// Delete disables the principal, or removes the row when hard is set. Audit entries of a
// removed principal are kept with a null owner.
func (s *PrincipalService) Delete(ctx context.Context, actor *domain.Session, role domain.Role, id string, hard bool) error {
	p, err := s.principals.GetByIDAndRole(ctx, id, role)
	if err != nil {
		return mapRepoError(err, RoleLabel(role))
	}
	if role.Elevated() && actor != nil && actor.PrincipalID == p.ID {
		return apperrors.NewValidationError("Cannot delete your own account", nil)
	}

	if hard {
		if err := s.principals.Delete(ctx, p.ID); err != nil {
			return mapRepoError(err, RoleLabel(role))
		}
		s.logger.Info("principal deleted", zap.String("principal_id", p.ID), zap.String("role", string(role)))
		return nil
	}

	p.Status = domain.PrincipalStatusDisabled
	return mapRepoError(s.principals.Update(ctx, p), RoleLabel(role))
}

func (s *PrincipalService) validateNameAndEmail(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return "", "", apperrors.NewValidationError("Name and email required", nil)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return "", "", apperrors.NewValidationError("Invalid email format", nil)
		}
		return "", "", apperrors.NewInternalError(err)
	}
	return name, email, nil
}

func validateScopeField(field *string) error {
	if field == nil {
		return nil
	}
	f := strings.TrimSpace(*field)
	if f != "" && !soql.ValidIdentifier(f) {
		return apperrors.NewValidationError("Invalid Salesforce field name", map[string]any{"sfField": f})
	}
	return nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// RoleLabel is the human readable name of role used in messages.
func RoleLabel(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "Admin"
	case domain.RoleLoanOfficer:
		return "Loan officer"
	case domain.RoleAgent:
		return "Agent"
	}
	return "User"
}
