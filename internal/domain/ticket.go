package domain

import "time"

// TicketType enumerates the kinds of support requests.
type TicketType string

const (
	TicketTypeChore   TicketType = "chore"
	TicketTypeBug     TicketType = "bug"
	TicketTypeFeature TicketType = "feature"
)

// StageStatus is the per-stage status value persisted on a ticket.
// The value domain differs per stage: stage 1 uses yes/no, later stages
// use completed/pending/staging/hold/na/rejected subsets.
type StageStatus string

const (
	StageStatusYes       StageStatus = "yes"
	StageStatusNo        StageStatus = "no"
	StageStatusCompleted StageStatus = "completed"
	StageStatusPending   StageStatus = "pending"
	StageStatusStaging   StageStatus = "staging"
	StageStatusHold      StageStatus = "hold"
	StageStatusNA        StageStatus = "na"
	StageStatusRejected  StageStatus = "rejected"
)

// ApprovalStatus is the feature approval gate value. A nil pointer on the
// ticket means the decision is still pending.
type ApprovalStatus string

const (
	ApprovalApproved   ApprovalStatus = "approved"
	ApprovalUnapproved ApprovalStatus = "unapproved"
)

// TicketPriority enumerates urgency for feature tickets.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Ticket is the aggregate for support requests. Stage timestamps and
// statuses are written only through workflow write-sets; the engine derives
// the current stage from whatever snapshot was last persisted.
type Ticket struct {
	ID          string
	ReferenceNo string
	Type        TicketType
	Title       string
	Description string
	Priority    TicketPriority

	CompanyID     *string
	CompanyName   *string
	DivisionID    *string
	DivisionName  *string
	DivisionOther *string
	PageName      *string
	UserName      *string

	CommunicatedThrough *string
	SubmittedBy         *string
	AssigneeID          *string

	QueryArrivalAt    *time.Time
	QueryResponseAt   *time.Time
	QualityOfResponse *string
	CustomerQuestions *string
	WhyFeature        *string
	Remarks           *string

	// Chores/Bugs SLA stages. Stage 1 planned is implicit (CreatedAt).
	Status1  *StageStatus
	Actual1  *time.Time
	Planned2 *time.Time
	Status2  *StageStatus
	Actual2  *time.Time
	Planned3 *time.Time
	Status3  *StageStatus
	Actual3  *time.Time
	Planned4 *time.Time
	Status4  *StageStatus
	Actual4  *time.Time

	// Feature approval gate.
	ApprovalStatus     *ApprovalStatus
	ApprovalActualAt   *time.Time
	UnapprovalActualAt *time.Time
	ApprovedBy         *string
	ApprovalSource     *string

	// Staging sub-workflow (Staging -> Live -> Live Review).
	StagingPlanned      *time.Time
	StagingReviewStatus *StageStatus
	StagingReviewActual *time.Time
	LivePlanned         *time.Time
	LiveStatus          *StageStatus
	LiveActual          *time.Time
	LiveReviewPlanned   *time.Time
	LiveReviewStatus    *StageStatus
	LiveReviewActual    *time.Time

	// One-time quality-of-solution remark, unlocked by completing stage 4.
	QualitySolution            *string
	QualitySolutionSubmittedBy *string
	QualitySolutionSubmittedAt *time.Time

	// Edit locks, persisted by administrators.
	Stage1Locked          bool
	Stage3Locked          bool
	Stage4Locked          bool
	FeatureStage2EditUsed bool

	// Server-computed per-reader flag: the requesting level-3 user has
	// already spent their one-time edit on this ticket.
	Level3UsedByCurrentUser bool

	Status     string
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InStaging reports whether the ticket has entered the staging sub-workflow.
func (t *Ticket) InStaging() bool {
	return t.StagingPlanned != nil
}

// StatusEquals compares a nullable stage status against a value.
func StatusEquals(s *StageStatus, v StageStatus) bool {
	return s != nil && *s == v
}
