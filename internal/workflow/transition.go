package workflow

import (
	"fmt"
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// WriteSet is the full set of field writes a transition produces, keyed by
// column name. A nil value clears the field. The owning store must apply a
// write-set atomically so partial transitions never become visible.
type WriteSet map[string]any

// merge copies other into w, later keys overwriting earlier ones.
func (w WriteSet) merge(other WriteSet) {
	for k, v := range other {
		w[k] = v
	}
}

// statusValues lists the legal status values per (workflow, stage).
var statusValues = map[Kind]map[int][]domain.StageStatus{
	KindChoresBugs: {
		1: {domain.StageStatusYes, domain.StageStatusNo},
		2: {domain.StageStatusCompleted, domain.StageStatusPending, domain.StageStatusStaging, domain.StageStatusHold, domain.StageStatusNA, domain.StageStatusRejected},
		3: {domain.StageStatusCompleted, domain.StageStatusPending, domain.StageStatusHold, domain.StageStatusRejected, domain.StageStatusNA},
		4: {domain.StageStatusCompleted, domain.StageStatusPending, domain.StageStatusNA},
	},
	KindFeature: {
		1: {domain.StageStatusPending, domain.StageStatusCompleted, domain.StageStatusStaging, domain.StageStatusHold, domain.StageStatusNA},
		2: {domain.StageStatusPending, domain.StageStatusCompleted},
	},
	KindStaging: {
		1: {domain.StageStatusPending, domain.StageStatusCompleted},
		2: {domain.StageStatusPending, domain.StageStatusCompleted},
		3: {domain.StageStatusPending, domain.StageStatusCompleted},
	},
}

// ValidStatus reports whether a status value is inside the enum domain for
// the given workflow stage. Callers at the API boundary reject out-of-domain
// values; the resolvers themselves stay total regardless.
func ValidStatus(kind Kind, stage int, status domain.StageStatus) bool {
	for _, v := range statusValues[kind][stage] {
		if v == status {
			return true
		}
	}
	return false
}

// ComputeTransitionWrites returns the atomic write-set for a requested
// status change on one stage, stamped with now. Advancing transitions seed
// the next stage's planned instant from this stage's actual.
func ComputeTransitionWrites(t *domain.Ticket, kind Kind, stage int, status domain.StageStatus, now time.Time) (WriteSet, error) {
	if !ValidStatus(kind, stage, status) {
		return nil, fmt.Errorf("status %q not allowed for %s stage %d", status, kind, stage)
	}
	switch kind {
	case KindChoresBugs:
		return choresBugsWrites(t, stage, status, now), nil
	case KindFeature:
		return featureWrites(t, stage, status, now), nil
	case KindStaging:
		return stagingWrites(stage, status, now), nil
	}
	return nil, fmt.Errorf("unknown workflow %q", kind)
}

func choresBugsWrites(t *domain.Ticket, stage int, status domain.StageStatus, now time.Time) WriteSet {
	ws := WriteSet{}
	switch stage {
	case 1:
		ws["status_1"] = status
		ws["actual_1"] = now
		if status == domain.StageStatusNo {
			ws["planned_2"] = now
		}
		if status == domain.StageStatusYes {
			// Stages 2 and 3 are skipped entirely.
			ws["planned_4"] = now
		}
	case 2:
		ws["status_2"] = status
		if t.Actual1 != nil {
			ws["planned_2"] = *t.Actual1
		}
		switch status {
		case domain.StageStatusCompleted:
			ws["actual_2"] = now
			ws["planned_3"] = now
		case domain.StageStatusHold:
			// Stage re-opens later; no forward seed.
			ws["actual_2"] = now
		case domain.StageStatusStaging:
			ws["actual_2"] = now
			ws.merge(StagingEntryWrites(now))
		}
	case 3:
		ws["status_3"] = status
		if t.Actual2 != nil {
			ws["planned_3"] = *t.Actual2
		}
		switch status {
		case domain.StageStatusCompleted:
			ws["actual_3"] = now
			ws["planned_4"] = now
		case domain.StageStatusHold:
			ws["actual_3"] = now
		}
	case 4:
		ws["status_4"] = status
		if status == domain.StageStatusCompleted {
			ws["actual_4"] = now
		}
	}
	return ws
}

func featureWrites(t *domain.Ticket, stage int, status domain.StageStatus, now time.Time) WriteSet {
	ws := WriteSet{}
	switch stage {
	case 1:
		ws["status_2"] = status
		switch status {
		case domain.StageStatusCompleted:
			ws["actual_1"] = now
			ws["planned_2"] = now
			ws["live_planned"] = now
		case domain.StageStatusStaging:
			ws["actual_1"] = now
			ws.merge(StagingEntryWrites(now))
		case domain.StageStatusHold:
			ws["actual_1"] = now
		}
	case 2:
		ws["live_status"] = status
		if status == domain.StageStatusCompleted {
			ws["live_actual"] = now
			if t.LivePlanned == nil && t.Actual1 != nil {
				ws["live_planned"] = *t.Actual1
			}
		}
		applyStagingCascade(ws, now)
	}
	return ws
}

func stagingWrites(stage int, status domain.StageStatus, now time.Time) WriteSet {
	ws := WriteSet{}
	switch stage {
	case 1:
		ws["staging_review_status"] = status
	case 2:
		ws["live_status"] = status
	case 3:
		ws["live_review_status"] = status
	}
	applyStagingCascade(ws, now)
	return ws
}

// applyStagingCascade stamps the actual of any staging stage the write-set
// completes and seeds the next stage's planned. Completing the final review
// resolves the ticket as a whole.
func applyStagingCascade(ws WriteSet, now time.Time) {
	if ws["staging_review_status"] == domain.StageStatusCompleted {
		ws["staging_review_actual"] = now
		ws["live_planned"] = now
	}
	if ws["live_status"] == domain.StageStatusCompleted {
		ws["live_actual"] = now
		ws["live_review_planned"] = now
	}
	if ws["live_review_status"] == domain.StageStatusCompleted {
		ws["live_review_actual"] = now
		ws["status"] = "resolved"
		ws["resolved_at"] = now
	}
}

// StagingEntryWrites seeds the staging sub-workflow when a ticket enters
// staging from either primary workflow.
func StagingEntryWrites(now time.Time) WriteSet {
	return WriteSet{
		"staging_planned":       now,
		"staging_review_actual": now,
		"staging_review_status": domain.StageStatusPending,
	}
}

// MarkStagingWrites is the explicit mark-as-staging action from the
// Chores/Bugs detail view.
func MarkStagingWrites(now time.Time) WriteSet {
	return WriteSet{
		"staging_planned":       now,
		"staging_review_status": domain.StageStatusPending,
	}
}

// StagingBackWrites reverses staging entry: it clears every staging field
// and returns the ticket to Chores/Bugs stage 2 as pending. This is the
// only backward transition in the system and must be applied atomically.
func StagingBackWrites() WriteSet {
	return WriteSet{
		"staging_planned":       nil,
		"staging_review_actual": nil,
		"staging_review_status": nil,
		"live_planned":          nil,
		"live_actual":           nil,
		"live_status":           nil,
		"live_review_planned":   nil,
		"live_review_actual":    nil,
		"live_review_status":    nil,
		"status_2":              domain.StageStatusPending,
	}
}

// ApprovalWrites stamps an approval decision. Approve and unapprove are
// terminal for the gate; remarks validation for unapprove happens before
// any write is attempted.
func ApprovalWrites(decision domain.ApprovalStatus, remarks *string, actorID string, source string, now time.Time) WriteSet {
	ws := WriteSet{
		"approval_status": decision,
		"approved_by":     actorID,
		"approval_source": source,
	}
	if decision == domain.ApprovalApproved {
		ws["approval_actual_at"] = now
	} else {
		ws["unapproval_actual_at"] = now
	}
	if remarks != nil {
		ws["remarks"] = *remarks
	}
	return ws
}
