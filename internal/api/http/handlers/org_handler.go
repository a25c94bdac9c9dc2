package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fms-support/internal/api/dto"
	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/service"
	"github.com/spec-kit/fms-support/pkg/util"
)

// OrgHandler manages company, division, and account administration.
type OrgHandler struct {
	service *service.OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(orgService *service.OrgService) *OrgHandler {
	return &OrgHandler{service: orgService}
}

// CreateCompany POST /org/companies.
func (h *OrgHandler) CreateCompany(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" {
		return util.NewValidationError("name required", nil)
	}
	company, err := h.service.CreateCompany(c.Context(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// ListCompanies GET /org/companies.
func (h *OrgHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListCompanies(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, companyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDivision POST /org/divisions.
func (h *OrgHandler) CreateDivision(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateDivisionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.CompanyID == "" || req.Name == "" {
		return util.NewValidationError("company_id and name required", nil)
	}
	division, err := h.service.CreateDivision(c.Context(), actor, req.CompanyID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": divisionResponse(division)})
}

// ListDivisions GET /org/companies/:id/divisions.
func (h *OrgHandler) ListDivisions(c *fiber.Ctx) error {
	divisions, err := h.service.ListDivisions(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.DivisionResponse, 0, len(divisions))
	for i := range divisions {
		items = append(items, divisionResponse(&divisions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateAccount POST /org/accounts.
func (h *OrgHandler) CreateAccount(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.FullName == "" || req.Email == "" || len(req.Password) < 8 || req.Role == "" {
		return util.NewValidationError("full_name, email, role, and a password of at least 8 characters required", nil)
	}
	user, err := h.service.CreateAccount(c.Context(), actor, req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(user)})
}

// SetAccountRole PATCH /org/accounts/:id/role.
func (h *OrgHandler) SetAccountRole(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Role == "" {
		return util.NewValidationError("role required", nil)
	}
	user, err := h.service.SetAccountRole(c.Context(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(user)})
}

// SetAccountStatus PATCH /org/accounts/:id/status.
func (h *OrgHandler) SetAccountStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return util.NewValidationError("status required", nil)
	}
	user, err := h.service.SetAccountStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(user)})
}

func companyResponse(company *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:       company.ID,
		Name:     company.Name,
		IsActive: company.IsActive,
	}
}

func divisionResponse(division *domain.Division) dto.DivisionResponse {
	return dto.DivisionResponse{
		ID:        division.ID,
		CompanyID: division.CompanyID,
		Name:      division.Name,
		IsActive:  division.IsActive,
	}
}
