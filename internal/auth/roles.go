package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-lens/internal/domain"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// RequireRole ensures the session carries one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Missing token")
		}
		if _, exists := allowedSet[session.Role]; !exists {
			return apperrors.NewForbidden("Insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to the elevated role.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
