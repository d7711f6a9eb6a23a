package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-lens/internal/api/dto"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/service"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// ContactsHandler exposes scoped Salesforce contact endpoints.
type ContactsHandler struct {
	contacts *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contacts *service.ContactService) *ContactsHandler {
	return &ContactsHandler{contacts: contacts}
}

// List handles GET /api/contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	filter, err := parseContactQuery(c)
	if err != nil {
		return err
	}

	page, err := h.contacts.List(c.UserContext(), session, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    page.Rows,
		"pagination": dto.PaginationResponse{
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalCount: page.TotalCount,
			TotalPages: page.TotalPages,
		},
	})
}

// BulkUpdate handles PATCH /api/contacts.
func (h *ContactsHandler) BulkUpdate(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}

	updates := make([]domain.ContactUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, domain.ContactUpdate{ID: strings.TrimSpace(u.ID), Fields: u.Fields})
	}
	results, err := h.contacts.BulkUpdate(c.UserContext(), session, requestMeta(c), updates)
	if err != nil {
		return err
	}
	return ok(c, results)
}

// Activity handles GET /api/contacts/:id/activity.
func (h *ContactsHandler) Activity(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	items, err := h.contacts.Activity(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, items)
}

// History handles GET /api/contacts/:id/history.
func (h *ContactsHandler) History(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	changes, err := h.contacts.History(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, changes)
}

func parseContactQuery(c *fiber.Ctx) (domain.ContactFilter, error) {
	filter := domain.ContactFilter{
		Search:      strings.TrimSpace(c.Query("search")),
		Status:      strings.TrimSpace(c.Query("status")),
		Temperature: strings.TrimSpace(c.Query("temperature")),
		SortBy:      strings.TrimSpace(c.Query("sortBy")),
		SortDesc:    true,
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	switch strings.ToLower(c.Query("sortDir")) {
	case "", "desc":
	case "asc":
		filter.SortDesc = false
	default:
		return filter, apperrors.NewValidationError("sortDir must be asc or desc", nil)
	}

	var err error
	if filter.DateFrom, err = parseDateQuery(c, "dateFrom"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseDateQuery(c, "dateTo"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperrors.NewValidationError(key+" must be YYYY-MM-DD", map[string]any{key: raw})
	}
	return &t, nil
}
