package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-lens/internal/service"
)

// MetadataHandler serves picklist metadata.
type MetadataHandler struct {
	metadata *service.MetadataService
}

// NewMetadataHandler constructs handler.
func NewMetadataHandler(metadata *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadata: metadata}
}

// Dropdowns handles GET /api/metadata/dropdowns.
func (h *MetadataHandler) Dropdowns(c *fiber.Ctx) error {
	dropdowns, err := h.metadata.Dropdowns(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, dropdowns)
}
