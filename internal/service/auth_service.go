package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/auth"
	"github.com/spec-kit/lead-lens/internal/config"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/repository"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// AuthService coordinates login, session verification and password changes.
type AuthService struct {
	principals repository.PrincipalRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	PrincipalRepo repository.PrincipalRepository
	Logger        *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		principals: deps.PrincipalRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate checks credential against every account registered under email. The first
// active account whose hash matches wins, so one person may hold several roles with separate
// credentials.
func (s *AuthService) Authenticate(ctx context.Context, email, credential string) (*domain.Principal, string, time.Time, error) {
	email = normalizeEmail(email)
	if email == "" || credential == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Email and password/access code required", nil)
	}

	candidates, err := s.principals.ListByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if len(candidates) == 0 {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	var (
		matched *domain.Principal
		active  int
	)
	for i := range candidates {
		p := &candidates[i]
		if !p.Active() {
			continue
		}
		active++
		if auth.ComparePassword(p.PasswordHash, credential) == nil {
			matched = p
			break
		}
	}
	if active == 0 {
		return nil, "", time.Time{}, apperrors.NewAccountDisabled()
	}
	if matched == nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	now := s.now().UTC()
	if err := s.principals.TouchLastLogin(ctx, matched.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.String("principal_id", matched.ID), zap.Error(err))
	} else {
		matched.LastLoginAt = &now
	}

	token, exp, err := s.tokenMgr.GenerateToken(matched)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return matched, token, exp, nil
}

// Verify reloads the principal behind a session. The session claims themselves are not
// refreshed; a scope change takes effect on the next login.
func (s *AuthService) Verify(ctx context.Context, session *domain.Session) (*domain.Principal, error) {
	p, err := s.principals.GetByID(ctx, session.PrincipalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("User not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !p.Active() {
		return nil, apperrors.NewAccountDisabled()
	}
	return p, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, principalID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("Current and new password required", nil)
	}
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("New password must be at least 6 characters", nil)
	}

	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		return mapRepoError(err, "User")
	}
	if err := auth.ComparePassword(p.PasswordHash, currentPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	p.PasswordHash = hash
	return mapRepoError(s.principals.Update(ctx, p), "User")
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ *domain.Session) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
