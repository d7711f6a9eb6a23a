package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/lead-lens/internal/auth"
	"github.com/spec-kit/lead-lens/internal/domain"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func message(c *fiber.Ctx, msg string) error {
	return ok(c, fiber.Map{"message": msg})
}

func requireSession(c *fiber.Ctx) (*domain.Session, error) {
	session, found := auth.SessionFromContext(c)
	if !found {
		return nil, apperrors.NewUnauthorized("Missing token")
	}
	return session, nil
}

func requestMeta(c *fiber.Ctx) domain.RequestMeta {
	return domain.RequestMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

// parseUUIDParam treats malformed ids like unknown ones.
func parseUUIDParam(c *fiber.Ctx, name, resource string) (string, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewNotFound(resource, nil)
	}
	return id.String(), nil
}
