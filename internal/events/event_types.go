package events

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventStageTransitioned EventType = "stage_transitioned"
	EventApprovalChanged   EventType = "approval_changed"
	EventStagingEntered    EventType = "staging_entered"
	EventStagingReverted   EventType = "staging_reverted"
	EventSolutionSubmitted EventType = "solution_submitted"
	EventResponseAdded     EventType = "response_added"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Type        domain.TicketType     `json:"type"`
	ReferenceNo string                `json:"reference_no"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
}

// StageTransitionedPayload payload.
type StageTransitionedPayload struct {
	Workflow  string             `json:"workflow"`
	Stage     int                `json:"stage"`
	NewStatus domain.StageStatus `json:"new_status"`
	Resolved  bool               `json:"resolved"`
}

// ApprovalChangedPayload payload.
type ApprovalChangedPayload struct {
	Decision domain.ApprovalStatus `json:"decision"`
	Source   string                `json:"source"`
	Remarks  *string               `json:"remarks,omitempty"`
}

// StagingEnteredPayload payload.
type StagingEnteredPayload struct {
	FromWorkflow string `json:"from_workflow"`
	FromStage    int    `json:"from_stage"`
}

// SolutionSubmittedPayload payload.
type SolutionSubmittedPayload struct {
	SubmittedBy string `json:"submitted_by"`
}

// ResponseAddedPayload payload.
type ResponseAddedPayload struct {
	ResponseID  string `json:"response_id"`
	BodyPreview string `json:"body_preview"`
}
