package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-lens/internal/api/dto"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/service"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// PrincipalsHandler manages accounts of a single role. One instance is mounted per role.
type PrincipalsHandler struct {
	principals *service.PrincipalService
	role       domain.Role
	resource   string
}

// NewPrincipalsHandler constructs a handler bound to role.
func NewPrincipalsHandler(principals *service.PrincipalService, role domain.Role) *PrincipalsHandler {
	return &PrincipalsHandler{principals: principals, role: role, resource: service.RoleLabel(role)}
}

// List handles GET /.
func (h *PrincipalsHandler) List(c *fiber.Ctx) error {
	page := domain.ParsePagination(c.Query("page"), c.Query("pageSize"), c.Query("search"))
	list, err := h.principals.List(c.UserContext(), h.role, page)
	if err != nil {
		return err
	}

	items := make([]dto.PrincipalResponse, 0, len(list.Items))
	for i := range list.Items {
		resp := dto.NewPrincipalResponse(&list.Items[i].Principal)
		resp.ActiveLeads = list.Items[i].ActiveLeads
		items = append(items, resp)
	}
	return ok(c, dto.PrincipalListResponse{Items: items, Total: list.Total, Page: list.Page, PageSize: list.PageSize})
}

// Create handles POST /.
func (h *PrincipalsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePrincipalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}

	p, code, err := h.principals.Create(c.UserContext(), h.role, service.CreatePrincipalInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		ScopeField: req.SFField,
		ScopeValue: req.SFValue,
	})
	if err != nil {
		return err
	}
	return created(c, dto.CreatePrincipalResponse{User: dto.NewPrincipalResponse(p), AccessCode: code})
}

// Update handles PATCH /:id.
func (h *PrincipalsHandler) Update(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id", h.resource)
	if err != nil {
		return err
	}
	var req dto.UpdatePrincipalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload", nil)
	}

	p, err := h.principals.Update(c.UserContext(), session, h.role, id, service.UpdatePrincipalInput{
		Name:       req.Name,
		Email:      req.Email,
		Status:     req.Status,
		ScopeField: req.SFField,
		ScopeValue: req.SFValue,
	})
	if err != nil {
		return err
	}
	return ok(c, dto.NewPrincipalResponse(p))
}

// RegenerateCode handles POST /:id/regenerate-code.
func (h *PrincipalsHandler) RegenerateCode(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", h.resource)
	if err != nil {
		return err
	}
	code, err := h.principals.RegenerateCode(c.UserContext(), h.role, id)
	if err != nil {
		return err
	}
	return ok(c, dto.AccessCodeResponse{AccessCode: code})
}

// Delete handles DELETE /:id. ?hard=true removes the row instead of disabling it.
func (h *PrincipalsHandler) Delete(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id", h.resource)
	if err != nil {
		return err
	}
	hard := c.QueryBool("hard", false)
	if err := h.principals.Delete(c.UserContext(), session, h.role, id, hard); err != nil {
		return err
	}
	if hard {
		return message(c, h.resource+" deleted")
	}
	return message(c, h.resource+" disabled")
}
