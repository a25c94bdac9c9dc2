package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fms-support/internal/api/dto"
	"github.com/spec-kit/fms-support/internal/auth"
	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/repository"
	"github.com/spec-kit/fms-support/internal/service"
	"github.com/spec-kit/fms-support/internal/workflow"
	"github.com/spec-kit/fms-support/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, util.NewUnauthorized("authentication required")
	}
	return service.Actor{ID: principal.User.ID, Role: principal.Role}, nil
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Type == "" || req.Title == "" {
		return util.NewValidationError("type and title required", nil)
	}

	input := service.TicketCreateInput{
		Type:                req.Type,
		Title:               req.Title,
		Description:         req.Description,
		Priority:            req.Priority,
		CompanyID:           req.CompanyID,
		DivisionID:          req.DivisionID,
		DivisionOther:       req.DivisionOther,
		PageName:            req.PageName,
		UserName:            req.UserName,
		CommunicatedThrough: req.CommunicatedThrough,
		QueryArrivalAt:      req.QueryArrivalAt,
		QueryResponseAt:     req.QueryResponseAt,
		QualityOfResponse:   req.QualityOfResponse,
		CustomerQuestions:   req.CustomerQuestions,
		WhyFeature:          req.WhyFeature,
		Remarks:             req.Remarks,
	}
	ticket, err := h.service.CreateTicket(c.Context(), actor, input)
	if err != nil {
		return err
	}
	view, err := h.service.GetTicket(c.Context(), actor, ticket.ID, workflow.ViewActive)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(view)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	filter, view := parseTicketQuery(c)
	views, err := h.service.ListTickets(c.Context(), actor, filter, view)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(views))
	for i := range views {
		items = append(items, ticketSummary(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetTicket(c.Context(), actor, c.Params("id"), viewContext(c.Query("view")))
	if err != nil {
		return err
	}
	responses, err := h.service.ListResponses(c.Context(), view.Ticket.ID)
	if err != nil {
		return err
	}
	approvals, err := h.service.ApprovalHistory(c.Context(), view.Ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view, responses, approvals)})
}

// UpdateStage PATCH /tickets/:id/stages.
func (h *TicketsHandler) UpdateStage(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.StageUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Stage <= 0 || req.Status == "" {
		return util.NewValidationError("stage and status required", nil)
	}
	view, err := h.service.UpdateStage(c.Context(), actor, c.Params("id"), service.StageUpdateInput{
		Stage:  req.Stage,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// MarkStaging POST /tickets/:id/staging.
func (h *TicketsHandler) MarkStaging(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	view, err := h.service.MarkStaging(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// StagingBack POST /tickets/:id/staging/back.
func (h *TicketsHandler) StagingBack(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	view, err := h.service.StagingBack(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// Approve POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.Approve(c.Context(), actor, c.Params("id"), approvalSource(req.Source))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// Unapprove POST /tickets/:id/unapprove.
func (h *TicketsHandler) Unapprove(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.Unapprove(c.Context(), actor, c.Params("id"), approvalSource(req.Source), req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// ToggleApproval POST /tickets/:id/approval/toggle. Flips the decision
// without remarks, for correcting a mistaken one.
func (h *TicketsHandler) ToggleApproval(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.ToggleApproval(c.Context(), actor, c.Params("id"), approvalSource(req.Source))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// SubmitQualitySolution POST /tickets/:id/quality-solution.
func (h *TicketsHandler) SubmitQualitySolution(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.QualitySolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.SubmitQualitySolution(c.Context(), actor, c.Params("id"), req.Solution)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(view)})
}

// AddResponse POST /tickets/:id/responses.
func (h *TicketsHandler) AddResponse(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	resp, err := h.service.AddResponse(c.Context(), actor, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(resp)})
}

func approvalSource(source string) string {
	if source == "" {
		return "detail"
	}
	return source
}

func viewContext(v string) workflow.ViewContext {
	switch v {
	case string(workflow.ViewCompleted):
		return workflow.ViewCompleted
	case string(workflow.ViewApproval):
		return workflow.ViewApproval
	default:
		return workflow.ViewActive
	}
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, workflow.ViewContext) {
	filter := service.TicketListFilter{
		Limit:  intQuery(c, "page_size", 50),
		Offset: 0,
	}
	if page := intQuery(c, "page", 1); page > 1 {
		filter.Offset = (page - 1) * filter.Limit
	}

	view := workflow.ViewActive
	// Section shortcuts from the list surfaces.
	switch c.Query("section") {
	case "chores":
		filter.Types = []domain.TicketType{domain.TicketTypeChore, domain.TicketTypeBug}
	case "features":
		filter.Types = []domain.TicketType{domain.TicketTypeFeature}
	case "approval":
		filter.Types = []domain.TicketType{domain.TicketTypeFeature}
		pending := repository.ApprovalFilterPending
		filter.Approval = &pending
		view = workflow.ViewApproval
	case "unapproved":
		filter.Types = []domain.TicketType{domain.TicketTypeFeature}
		unapproved := repository.ApprovalFilterUnapproved
		filter.Approval = &unapproved
	case "staging":
		inStaging := true
		filter.InStaging = &inStaging
	case "completed":
		resolved := true
		filter.Resolved = &resolved
		view = workflow.ViewCompleted
	}

	if companyID := c.Query("company_id"); companyID != "" {
		filter.CompanyID = &companyID
	}
	if divisionID := c.Query("division_id"); divisionID != "" {
		filter.DivisionID = &divisionID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	return filter, view
}

func intQuery(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
