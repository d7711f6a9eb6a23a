package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-lens/internal/api/dto"
	"github.com/spec-kit/lead-lens/internal/service"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// AuthHandler exposes login and session endpoints for every role.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}

	principal, token, exp, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Credential())
	if err != nil {
		return err
	}
	return ok(c, dto.AuthResponse{User: dto.NewPrincipalResponse(principal), Token: token, ExpiresAt: exp})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client discards its copy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, _ := requireSession(c)
	if err := h.auth.Logout(c.UserContext(), session); err != nil {
		return err
	}
	return message(c, "Logged out")
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	principal, err := h.auth.Verify(c.UserContext(), session)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"user": dto.NewPrincipalResponse(principal)})
}

// ChangePassword handles PATCH /api/auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}

	if err := h.auth.ChangePassword(c.UserContext(), session.PrincipalID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return message(c, "Password updated")
}
