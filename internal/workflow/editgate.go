package workflow

import (
	"github.com/spec-kit/fms-support/internal/domain"
)

// ViewContext scopes edit eligibility to the surface a ticket is shown in.
type ViewContext string

const (
	ViewActive    ViewContext = "active"
	ViewCompleted ViewContext = "completed"
	ViewApproval  ViewContext = "approval"
)

// EditPermission is the computed eligibility of one stage for one actor.
// It is derived once per read so list and detail surfaces cannot drift.
type EditPermission struct {
	Stage    int
	Editable bool
}

// Editable decides whether a stage's status is currently writable by the
// given role. Completed views are read-only throughout; locked stages yield
// only to the master admin; level-3 actors spend a single edit per ticket
// with stage 2 carved out.
func Editable(t *domain.Ticket, kind Kind, stage int, role domain.Role, view ViewContext) bool {
	if view == ViewCompleted {
		return false
	}
	if view == ViewApproval {
		// Approval mode only exposes the approve/unapprove actions.
		return false
	}

	switch kind {
	case KindChoresBugs:
		if stageLocked(t, stage) && role != domain.RoleMasterAdmin {
			return false
		}
		if role == domain.RoleUser && t.Level3UsedByCurrentUser && stage != 2 {
			return false
		}
		return true

	case KindFeature:
		if stage == 2 {
			if t.FeatureStage2EditUsed && role != domain.RoleMasterAdmin {
				return false
			}
			if role == domain.RoleUser && t.Level3UsedByCurrentUser {
				return false
			}
		}
		return true

	case KindStaging:
		return true
	}
	return false
}

// Permissions computes the eligibility of every stage of a workflow in one
// pass.
func Permissions(t *domain.Ticket, kind Kind, role domain.Role, view ViewContext) []EditPermission {
	count := 4
	if kind != KindChoresBugs {
		count = 3
		if kind == KindFeature {
			count = 2
		}
	}
	perms := make([]EditPermission, 0, count)
	for stage := 1; stage <= count; stage++ {
		perms = append(perms, EditPermission{
			Stage:    stage,
			Editable: Editable(t, kind, stage, role, view),
		})
	}
	return perms
}

// Level3EditSpent reports whether a successful stage edit by a level-3
// actor consumes their one-time allowance. Chores/Bugs stage 2 is the
// carve-out and stays free; feature stage 2 spends it.
func Level3EditSpent(kind Kind, stage int) bool {
	switch kind {
	case KindChoresBugs:
		return stage != 2
	case KindFeature:
		return stage == 2
	}
	return false
}

func stageLocked(t *domain.Ticket, stage int) bool {
	switch stage {
	case 1:
		return t.Stage1Locked
	case 3:
		return t.Stage3Locked
	case 4:
		return t.Stage4Locked
	}
	return false
}
