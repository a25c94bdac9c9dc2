package dto

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type                domain.TicketType     `json:"type"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Priority            domain.TicketPriority `json:"priority"`
	CompanyID           *string               `json:"company_id"`
	DivisionID          *string               `json:"division_id"`
	DivisionOther       *string               `json:"division_other"`
	PageName            *string               `json:"page_name"`
	UserName            *string               `json:"user_name"`
	CommunicatedThrough *string               `json:"communicated_through"`
	QueryArrivalAt      *time.Time            `json:"query_arrival_at"`
	QueryResponseAt     *time.Time            `json:"query_response_at"`
	QualityOfResponse   *string               `json:"quality_of_response"`
	CustomerQuestions   *string               `json:"customer_questions"`
	WhyFeature          *string               `json:"why_feature"`
	Remarks             *string               `json:"remarks"`
}

// StageUpdateRequest payload for one stage status change.
type StageUpdateRequest struct {
	Stage  int                `json:"stage"`
	Status domain.StageStatus `json:"status"`
}

// ApprovalRequest payload for approve/unapprove decisions.
type ApprovalRequest struct {
	Source  string `json:"source"`
	Remarks string `json:"remarks"`
}

// QualitySolutionRequest payload.
type QualitySolutionRequest struct {
	Solution string `json:"solution"`
}

// CreateResponseRequest payload for thread responses.
type CreateResponseRequest struct {
	Body string `json:"body"`
}

// StageSummaryResponse is the current-stage projection of one ticket.
type StageSummaryResponse struct {
	Tag          string     `json:"tag"`
	Number       int        `json:"number"`
	Label        string     `json:"label"`
	Planned      *time.Time `json:"planned"`
	Actual       *time.Time `json:"actual"`
	Status       string     `json:"status"`
	DelaySeconds int64      `json:"delay_seconds"`
	Delay        string     `json:"delay"`
}

// StagePermissionResponse reports one stage's edit eligibility.
type StagePermissionResponse struct {
	Stage    int  `json:"stage"`
	Editable bool `json:"editable"`
}

// TicketSummary is the list-row projection.
type TicketSummary struct {
	ID           string                    `json:"id"`
	ReferenceNo  string                    `json:"reference_no"`
	Type         domain.TicketType         `json:"type"`
	Title        string                    `json:"title"`
	Priority     domain.TicketPriority     `json:"priority"`
	CompanyName  *string                   `json:"company_name"`
	DivisionName *string                   `json:"division_name"`
	Workflow     string                    `json:"workflow"`
	Stage        StageSummaryResponse      `json:"stage"`
	ReplyStatus  string                    `json:"reply_status"`
	ReplyText    string                    `json:"reply_text"`
	Pending      bool                      `json:"pending"`
	Status       string                    `json:"status"`
	Permissions  []StagePermissionResponse `json:"permissions"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary

	Description         string     `json:"description"`
	DivisionOther       *string    `json:"division_other"`
	PageName            *string    `json:"page_name"`
	UserName            *string    `json:"user_name"`
	CommunicatedThrough *string    `json:"communicated_through"`
	SubmittedBy         *string    `json:"submitted_by"`
	QueryArrivalAt      *time.Time `json:"query_arrival_at"`
	QueryResponseAt     *time.Time `json:"query_response_at"`
	QualityOfResponse   *string    `json:"quality_of_response"`
	CustomerQuestions   *string    `json:"customer_questions"`
	WhyFeature          *string    `json:"why_feature"`
	Remarks             *string    `json:"remarks"`

	ApprovalStatus   *domain.ApprovalStatus `json:"approval_status"`
	ApprovalActualAt *time.Time             `json:"approval_actual_at"`
	ApprovedBy       *string                `json:"approved_by"`

	QualitySolution            *string    `json:"quality_solution"`
	QualitySolutionSubmittedAt *time.Time `json:"quality_solution_submitted_at"`

	ResolvedAt *time.Time               `json:"resolved_at"`
	Responses  []TicketResponseResponse `json:"responses"`
	Approvals  []ApprovalLogResponse    `json:"approvals"`
}

// TicketResponseResponse represents one thread response.
type TicketResponseResponse struct {
	ID        string    `json:"id"`
	AuthorID  *string   `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ApprovalLogResponse represents one audit trail entry.
type ApprovalLogResponse struct {
	ID         string    `json:"id"`
	ApprovedBy string    `json:"approved_by"`
	ApprovedAt time.Time `json:"approved_at"`
	Decision   string    `json:"decision"`
	Source     string    `json:"source"`
	Remarks    *string   `json:"remarks"`
}
