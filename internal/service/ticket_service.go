package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/events"
	"github.com/spec-kit/fms-support/internal/repository"
	"github.com/spec-kit/fms-support/internal/workflow"
	"github.com/spec-kit/fms-support/pkg/util"
)

// Actor is the authenticated principal performing a ticket operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	responses  repository.TicketResponseRepository
	approvals  repository.ApprovalLogRepository
	level3     repository.Level3EditRepository
	companies  repository.CompanyRepository
	divisions  repository.DivisionRepository
	dispatcher events.Dispatcher
	clock      workflow.Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.TicketResponseRepository
	ApprovalRepo repository.ApprovalLogRepository
	Level3Repo   repository.Level3EditRepository
	CompanyRepo  repository.CompanyRepository
	DivisionRepo repository.DivisionRepository
	Dispatcher   events.Dispatcher
	Clock        workflow.Clock
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = workflow.SystemClock()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		approvals:  deps.ApprovalRepo,
		level3:     deps.Level3Repo,
		companies:  deps.CompanyRepo,
		divisions:  deps.DivisionRepo,
		dispatcher: deps.Dispatcher,
		clock:      clock,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Type                domain.TicketType
	Title               string
	Description         string
	Priority            domain.TicketPriority
	CompanyID           *string
	DivisionID          *string
	DivisionOther       *string
	PageName            *string
	UserName            *string
	CommunicatedThrough *string
	QueryArrivalAt      *time.Time
	QueryResponseAt     *time.Time
	QualityOfResponse   *string
	CustomerQuestions   *string
	WhyFeature          *string
	Remarks             *string
}

// TicketView is the per-reader projection of one ticket: the workflow it
// currently belongs to, its current-stage summary, reply SLA, and the edit
// eligibility of each stage for the requesting actor.
type TicketView struct {
	Ticket      domain.Ticket
	Workflow    workflow.Kind
	Summary     workflow.StageSummary
	ReplyStatus workflow.ReplySLAStatus
	ReplyText   string
	Pending     bool
	Permissions []workflow.EditPermission
}

// TicketListFilter describes listing parameters for the section views.
type TicketListFilter struct {
	Types      []domain.TicketType
	CompanyID  *string
	DivisionID *string
	Approval   *repository.ApprovalFilter
	InStaging  *bool
	Resolved   *bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// StageUpdateInput is one stage status change request.
type StageUpdateInput struct {
	Stage  int
	Status domain.StageStatus
}

// CreateTicket validates the intake payload and persists a new ticket.
// Feature tickets start in the approval gate; everything else starts at
// stage 1 of the Chores/Bugs workflow.
func (s *TicketService) CreateTicket(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if input.Type != domain.TicketTypeChore && input.Type != domain.TicketTypeBug && input.Type != domain.TicketTypeFeature {
		return nil, util.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, util.NewValidationError("title is required", nil)
	}

	ticket := &domain.Ticket{
		ReferenceNo:         generateReference(input.Type),
		Type:                input.Type,
		Title:               title,
		Description:         strings.TrimSpace(input.Description),
		Priority:            input.Priority,
		DivisionOther:       input.DivisionOther,
		PageName:            input.PageName,
		UserName:            input.UserName,
		CommunicatedThrough: input.CommunicatedThrough,
		SubmittedBy:         &actor.ID,
		QueryArrivalAt:      input.QueryArrivalAt,
		QueryResponseAt:     input.QueryResponseAt,
		QualityOfResponse:   input.QualityOfResponse,
		CustomerQuestions:   input.CustomerQuestions,
		WhyFeature:          input.WhyFeature,
		Remarks:             input.Remarks,
		Status:              "open",
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if input.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *input.CompanyID)
		if err != nil {
			return nil, util.MapError(err)
		}
		if !company.IsActive {
			return nil, util.NewValidationError("company inactive", nil)
		}
		ticket.CompanyID = &company.ID
		ticket.CompanyName = &company.Name
	}
	if input.DivisionID != nil {
		division, err := s.divisions.GetByID(ctx, *input.DivisionID)
		if err != nil {
			return nil, util.MapError(err)
		}
		if input.CompanyID == nil || division.CompanyID != *input.CompanyID {
			return nil, util.NewValidationError("division not part of company", nil)
		}
		ticket.DivisionID = &division.ID
		ticket.DivisionName = &division.Name
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Type:        ticket.Type,
			ReferenceNo: ticket.ReferenceNo,
			Priority:    ticket.Priority,
			Title:       ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket loads one ticket and projects it for the requesting actor.
func (s *TicketService) GetTicket(ctx context.Context, actor Actor, ticketID string, view workflow.ViewContext) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := s.annotateLevel3(ctx, actor, ticket); err != nil {
		return nil, err
	}
	projected := s.project(ticket, actor, view)
	return &projected, nil
}

// ListTickets returns the projected section listing. Pending filtering for
// the Chores/Bugs sections happens here because pendingness is derived, not
// stored.
func (s *TicketService) ListTickets(ctx context.Context, actor Actor, filter TicketListFilter, view workflow.ViewContext) ([]TicketView, error) {
	repoFilter := repository.TicketFilter{
		Types:      filter.Types,
		CompanyID:  filter.CompanyID,
		DivisionID: filter.DivisionID,
		Approval:   filter.Approval,
		InStaging:  filter.InStaging,
		Resolved:   filter.Resolved,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, util.MapError(err)
	}

	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		if err := s.annotateLevel3(ctx, actor, ticket); err != nil {
			return nil, err
		}
		views = append(views, s.project(ticket, actor, view))
	}
	return views, nil
}

// UpdateStage applies one stage status change through the transition
// policy. The edit gate runs first; the computed write-set lands
// atomically; a successful level-3 edit is burned afterwards.
func (s *TicketService) UpdateStage(ctx context.Context, actor Actor, ticketID string, input StageUpdateInput) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := s.annotateLevel3(ctx, actor, ticket); err != nil {
		return nil, err
	}

	kind := workflow.KindForTicket(ticket)
	if !workflow.Editable(ticket, kind, input.Stage, actor.Role, workflow.ViewActive) {
		return nil, util.NewForbidden("stage is not editable")
	}

	now := s.clock.Now()
	writes, err := workflow.ComputeTransitionWrites(ticket, kind, input.Stage, input.Status, now)
	if err != nil {
		return nil, util.NewValidationError(err.Error(), nil)
	}
	s.applyEditLocks(writes, kind, input)

	if err := s.tickets.ApplyWrites(ctx, ticket.ID, writes); err != nil {
		return nil, util.MapError(err)
	}
	if actor.Role == domain.RoleUser && workflow.Level3EditSpent(kind, input.Stage) {
		if err := s.level3.MarkUsed(ctx, ticket.ID, actor.ID); err != nil {
			return nil, util.MapError(err)
		}
	}

	resolved := writes["status"] == "resolved"
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventStageTransitioned,
		TicketID: ticket.ID,
		Payload: events.StageTransitionedPayload{
			Workflow:  string(kind),
			Stage:     input.Stage,
			NewStatus: input.Status,
			Resolved:  resolved,
		},
	})
	if input.Status == domain.StageStatusStaging {
		s.publishEvent(ctx, actor, events.Event{
			Type:     events.EventStagingEntered,
			TicketID: ticket.ID,
			Payload: events.StagingEnteredPayload{
				FromWorkflow: string(kind),
				FromStage:    input.Stage,
			},
		})
	}
	return s.GetTicket(ctx, actor, ticket.ID, workflow.ViewActive)
}

// applyEditLocks burns the one-shot edit allowances alongside the
// transition itself so both land in the same statement.
func (s *TicketService) applyEditLocks(writes workflow.WriteSet, kind workflow.Kind, input StageUpdateInput) {
	if kind == workflow.KindChoresBugs {
		switch input.Stage {
		case 1:
			writes["stage1_locked"] = true
		case 3:
			writes["stage3_locked"] = true
		case 4:
			writes["stage4_locked"] = true
		}
	}
	if kind == workflow.KindFeature && input.Stage == 2 {
		writes["feature_stage2_edit_used"] = true
	}
}

// MarkStaging is the explicit move of a Chores/Bugs ticket into the staging
// sub-workflow. A ticket already in staging is rejected.
func (s *TicketService) MarkStaging(ctx context.Context, actor Actor, ticketID string) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if ticket.InStaging() {
		return nil, util.NewConflict("ticket is already in staging", nil)
	}
	if ticket.Type == domain.TicketTypeFeature && ticket.ApprovalStatus == nil {
		return nil, util.NewConflict("feature awaits approval", nil)
	}

	if err := s.tickets.ApplyWrites(ctx, ticket.ID, workflow.MarkStagingWrites(s.clock.Now())); err != nil {
		return nil, util.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventStagingEntered,
		TicketID: ticket.ID,
		Payload:  events.StagingEnteredPayload{FromWorkflow: string(workflow.KindForTicket(ticket))},
	})
	return s.GetTicket(ctx, actor, ticket.ID, workflow.ViewActive)
}

// StagingBack reverses staging entry. Admin only; the whole staging state
// is cleared in one statement and the ticket reappears at Chores/Bugs
// stage 2 as pending.
func (s *TicketService) StagingBack(ctx context.Context, actor Actor, ticketID string) (*TicketView, error) {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return nil, util.NewForbidden("staging back requires admin")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !ticket.InStaging() {
		return nil, util.NewConflict("ticket is not in staging", nil)
	}

	if err := s.tickets.ApplyWrites(ctx, ticket.ID, workflow.StagingBackWrites()); err != nil {
		return nil, util.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventStagingReverted,
		TicketID: ticket.ID,
	})
	return s.GetTicket(ctx, actor, ticket.ID, workflow.ViewActive)
}

// Approve records an approve decision on a feature ticket.
func (s *TicketService) Approve(ctx context.Context, actor Actor, ticketID, source string) (*TicketView, error) {
	return s.decide(ctx, actor, ticketID, domain.ApprovalApproved, nil, source)
}

// Unapprove records an unapprove decision. Remarks are mandatory.
func (s *TicketService) Unapprove(ctx context.Context, actor Actor, ticketID, source string, remarks string) (*TicketView, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, util.NewValidationError("remarks are required to unapprove", nil)
	}
	return s.decide(ctx, actor, ticketID, domain.ApprovalUnapproved, &remarks, source)
}

// ToggleApproval flips the recorded decision the other way without asking
// for remarks again. It corrects a mistaken decision, so a decision must
// already exist.
func (s *TicketService) ToggleApproval(ctx context.Context, actor Actor, ticketID, source string) (*TicketView, error) {
	if !actor.Role.CanApprove() {
		return nil, util.NewForbidden("approval requires an approver role")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if ticket.Type != domain.TicketTypeFeature {
		return nil, util.NewConflict("only feature tickets pass the approval gate", nil)
	}
	if ticket.ApprovalStatus == nil {
		return nil, util.NewConflict("no approval decision to toggle", nil)
	}

	decision := domain.ApprovalApproved
	if *ticket.ApprovalStatus == domain.ApprovalApproved {
		decision = domain.ApprovalUnapproved
	}
	return s.applyDecision(ctx, actor, ticket, decision, nil, source)
}

func (s *TicketService) decide(ctx context.Context, actor Actor, ticketID string, decision domain.ApprovalStatus, remarks *string, source string) (*TicketView, error) {
	if !actor.Role.CanApprove() {
		return nil, util.NewForbidden("approval requires an approver role")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if ticket.Type != domain.TicketTypeFeature {
		return nil, util.NewConflict("only feature tickets pass the approval gate", nil)
	}
	return s.applyDecision(ctx, actor, ticket, decision, remarks, source)
}

func (s *TicketService) applyDecision(ctx context.Context, actor Actor, ticket *domain.Ticket, decision domain.ApprovalStatus, remarks *string, source string) (*TicketView, error) {
	now := s.clock.Now()
	writes := workflow.ApprovalWrites(decision, remarks, actor.ID, source, now)
	if err := s.tickets.ApplyWrites(ctx, ticket.ID, writes); err != nil {
		return nil, util.MapError(err)
	}

	logDecision := domain.ApprovalLogApproved
	if decision == domain.ApprovalUnapproved {
		logDecision = domain.ApprovalLogRejected
	}
	entry := &domain.ApprovalLog{
		TicketID:   ticket.ID,
		ApprovedBy: actor.ID,
		Decision:   logDecision,
		Source:     source,
		Remarks:    remarks,
	}
	if err := s.approvals.Create(ctx, entry); err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventApprovalChanged,
		TicketID: ticket.ID,
		Payload: events.ApprovalChangedPayload{
			Decision: decision,
			Source:   source,
			Remarks:  remarks,
		},
	})
	return s.GetTicket(ctx, actor, ticket.ID, workflow.ViewActive)
}

// ApprovalHistory lists the audit trail of decisions on a ticket.
func (s *TicketService) ApprovalHistory(ctx context.Context, ticketID string) ([]domain.ApprovalLog, error) {
	entries, err := s.approvals.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return entries, nil
}

// SubmitQualitySolution records the one-time quality-of-solution remark.
// It unlocks once stage 4 completes and rejects a second submission.
func (s *TicketService) SubmitQualitySolution(ctx context.Context, actor Actor, ticketID, solution string) (*TicketView, error) {
	solution = strings.TrimSpace(solution)
	if solution == "" {
		return nil, util.NewValidationError("solution text is required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if ticket.QualitySolution != nil {
		return nil, util.NewConflict("quality solution already submitted", nil)
	}
	if !domain.StatusEquals(ticket.Status4, domain.StageStatusCompleted) &&
		!domain.StatusEquals(ticket.LiveReviewStatus, domain.StageStatusCompleted) {
		return nil, util.NewConflict("ticket work is not completed yet", nil)
	}

	now := s.clock.Now()
	writes := workflow.WriteSet{
		"quality_solution":              solution,
		"quality_solution_submitted_by": actor.ID,
		"quality_solution_submitted_at": now,
	}
	if err := s.tickets.ApplyWrites(ctx, ticket.ID, writes); err != nil {
		return nil, util.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventSolutionSubmitted,
		TicketID: ticket.ID,
		Payload:  events.SolutionSubmittedPayload{SubmittedBy: actor.ID},
	})
	return s.GetTicket(ctx, actor, ticket.ID, workflow.ViewActive)
}

// AddResponse appends a follow-up response to a ticket.
func (s *TicketService) AddResponse(ctx context.Context, actor Actor, ticketID, body string) (*domain.TicketResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, util.NewValidationError("response body is required", nil)
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, util.MapError(err)
	}
	resp := &domain.TicketResponse{
		TicketID: ticketID,
		AuthorID: &actor.ID,
		Body:     body,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, util.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventResponseAdded,
		TicketID: ticketID,
		Payload: events.ResponseAddedPayload{
			ResponseID:  resp.ID,
			BodyPreview: stringPreview(body, 120),
		},
	})
	return resp, nil
}

// ListResponses returns the response thread of a ticket.
func (s *TicketService) ListResponses(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	responses, err := s.responses.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return responses, nil
}

func (s *TicketService) annotateLevel3(ctx context.Context, actor Actor, ticket *domain.Ticket) error {
	if actor.Role != domain.RoleUser {
		return nil
	}
	used, err := s.level3.HasUsed(ctx, ticket.ID, actor.ID)
	if err != nil {
		return util.MapError(err)
	}
	ticket.Level3UsedByCurrentUser = used
	return nil
}

func (s *TicketService) project(ticket *domain.Ticket, actor Actor, view workflow.ViewContext) TicketView {
	now := s.clock.Now()
	kind := workflow.KindForTicket(ticket)
	replyStatus, replyText := workflow.ReplyStatus(ticket.QueryArrivalAt, ticket.QueryResponseAt)

	pending := workflow.FeaturePending(ticket)
	if ticket.Type != domain.TicketTypeFeature {
		pending = workflow.ChoresBugPending(ticket)
	}

	return TicketView{
		Ticket:      *ticket,
		Workflow:    kind,
		Summary:     workflow.Resolve(ticket, kind, now),
		ReplyStatus: replyStatus,
		ReplyText:   replyText,
		Pending:     pending,
		Permissions: workflow.Permissions(ticket, kind, actor.Role, view),
	}
}

func (s *TicketService) publishEvent(ctx context.Context, actor Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateReference(t domain.TicketType) string {
	prefix := "CHR"
	switch t {
	case domain.TicketTypeBug:
		prefix = "BUG"
	case domain.TicketTypeFeature:
		prefix = "FTR"
	}
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	cut := max
	if cut > 3 {
		cut -= 3
	}
	// Never split a multi-byte rune at the cut point.
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	if max <= 3 {
		return body[:cut]
	}
	return body[:cut] + "..."
}
