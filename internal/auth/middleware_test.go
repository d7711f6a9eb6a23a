package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-lens/internal/domain"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

func newTestApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return errors.New("no session")
		}
		return c.SendString(string(session.Role) + ":" + session.ScopeValue)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	app := newTestApp(tm)

	agentToken, _, err := tm.GenerateToken(&domain.Principal{ID: "a1", Role: domain.RoleAgent, ScopeValue: strPtr("Test Agent")})
	require.NoError(t, err)
	adminToken, _, err := tm.GenerateToken(&domain.Principal{ID: "ad1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "missing header", path: "/me", status: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/me", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "valid", path: "/me", header: "Bearer " + agentToken, status: http.StatusOK},
		{name: "non admin on admin route", path: "/admin", header: "Bearer " + agentToken, status: http.StatusForbidden},
		{name: "admin on admin route", path: "/admin", header: "Bearer " + adminToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
