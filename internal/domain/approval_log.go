package domain

import "time"

// ApprovalDecision is the recorded outcome of an approval action.
type ApprovalDecision string

const (
	ApprovalLogApproved ApprovalDecision = "approved"
	ApprovalLogRejected ApprovalDecision = "rejected"
)

// ApprovalLog records a single approve/unapprove decision on a feature
// ticket. Only approval decisions are logged; stage transitions keep their
// latest values on the ticket itself.
type ApprovalLog struct {
	ID         string
	TicketID   string
	ApprovedBy string
	ApprovedAt time.Time
	Decision   ApprovalDecision
	Source     string
	Remarks    *string
}
