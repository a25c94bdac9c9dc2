package workflow

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// ClassifyChoresBugs determines the current stage of a chore or bug ticket.
// The branches form a strict priority chain: the earliest unresolved stage
// wins, and any snapshot classifies to exactly one tag.
func ClassifyChoresBugs(t *domain.Ticket) StageTag {
	switch {
	case t.Status1 == nil:
		return TagStage1
	case *t.Status1 == domain.StageStatusYes:
		return TagStage4
	case *t.Status1 == domain.StageStatusNo && t.Status2 == nil:
		return TagStage2
	case domain.StatusEquals(t.Status2, domain.StageStatusCompleted) && t.Status3 == nil:
		return TagStage3
	case domain.StatusEquals(t.Status2, domain.StageStatusCompleted):
		return TagStage4
	default:
		// Non-completing stage 2 value: pending, hold, na, rejected or
		// staging. The ticket stays presented at stage 2.
		return TagStage2
	}
}

// ResolveChoresBugs computes the current-stage projection for a chore or
// bug ticket at the given instant. Total over arbitrary field combinations:
// missing timestamps degrade to zero delay, never an error.
func ResolveChoresBugs(t *domain.Ticket, now time.Time) StageSummary {
	created := t.CreatedAt

	switch ClassifyChoresBugs(t) {
	case TagStage1:
		// Planned predates any user action: it is the creation instant.
		delay := Delay(&created, false, nil, Threshold(KindChoresBugs, 1), now)
		return StageSummary{
			Tag:          TagStage1,
			Number:       1,
			Label:        "Stage 1",
			Planned:      &created,
			Actual:       t.Actual1,
			Status:       "-",
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	case TagStage2:
		if t.Status1 != nil && *t.Status1 == domain.StageStatusNo && t.Status2 == nil {
			planned := firstTime(t.Actual1, t.Planned2)
			delay := Delay(planned, false, nil, Threshold(KindChoresBugs, 2), now)
			return StageSummary{
				Tag:          TagStage2,
				Number:       2,
				Label:        "Stage 2",
				Planned:      planned,
				Actual:       t.Actual2,
				Status:       "-",
				DelaySeconds: delay,
				Delay:        delayText(delay),
			}
		}
		// Stage 2 carries a non-completing status; show it verbatim and
		// accrue delay only while still pending.
		planned := firstTime(t.Planned2, t.Actual1)
		var delay int64
		if domain.StatusEquals(t.Status2, domain.StageStatusPending) {
			delay = Delay(planned, false, nil, Threshold(KindChoresBugs, 2), now)
		}
		return StageSummary{
			Tag:          TagStage2,
			Number:       2,
			Label:        "Stage 2",
			Planned:      planned,
			Actual:       t.Actual2,
			Status:       statusText(t.Status2),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	case TagStage3:
		planned := firstTime(t.Actual2, t.Planned3)
		delay := Delay(planned, false, nil, Threshold(KindChoresBugs, 3), now)
		return StageSummary{
			Tag:          TagStage3,
			Number:       3,
			Label:        "Stage 3",
			Planned:      planned,
			Actual:       t.Actual3,
			Status:       "-",
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	default: // TagStage4
		var planned *time.Time
		if t.Status1 != nil && *t.Status1 == domain.StageStatusYes {
			planned = firstTime(t.Actual1, t.Planned4)
		} else if domain.StatusEquals(t.Status3, domain.StageStatusCompleted) {
			planned = firstTime(t.Actual3, t.Planned4)
		} else {
			planned = firstTime(t.Actual1, t.Planned4)
		}
		complete := domain.StatusEquals(t.Status4, domain.StageStatusCompleted)
		delay := Delay(planned, complete, t.Actual4, Threshold(KindChoresBugs, 4), now)
		return StageSummary{
			Tag:          TagStage4,
			Number:       4,
			Label:        "Stage 4",
			Planned:      planned,
			Actual:       t.Actual4,
			Status:       statusText(t.Status4),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}
	}
}
