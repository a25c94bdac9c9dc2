package workflow

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// ClassifyFeature determines the current position of a feature ticket:
// the approval gate first, then the two work stages.
func ClassifyFeature(t *domain.Ticket) StageTag {
	switch {
	case t.ApprovalStatus == nil:
		return TagApprovalPending
	case *t.ApprovalStatus == domain.ApprovalUnapproved:
		return TagApprovalUnapproved
	case !domain.StatusEquals(t.Status2, domain.StageStatusCompleted):
		return TagFeatureStage1
	case !domain.StatusEquals(t.LiveStatus, domain.StageStatusCompleted):
		return TagFeatureStage2
	default:
		return TagFeatureCompleted
	}
}

// ResolveFeature computes the current-stage projection for a feature
// ticket. Stage 1 is planned from the query arrival instant (creation when
// absent) with a one-day budget; stage 2 is planned from stage 1's actual
// with a two-hour budget.
func ResolveFeature(t *domain.Ticket, now time.Time) StageSummary {
	switch ClassifyFeature(t) {
	case TagApprovalPending:
		return StageSummary{
			Tag:    TagApprovalPending,
			Number: 0,
			Label:  "Approval Pending",
			Status: "-",
			Delay:  "-",
		}

	case TagApprovalUnapproved:
		return StageSummary{
			Tag:    TagApprovalUnapproved,
			Number: 0,
			Label:  "Approval (unapproved)",
			Actual: t.UnapprovalActualAt,
			Status: string(domain.ApprovalUnapproved),
			Delay:  "-",
		}

	case TagFeatureStage1:
		created := t.CreatedAt
		planned := firstTime(t.QueryArrivalAt, &created)
		delay := Delay(planned, false, nil, Threshold(KindFeature, 1), now)
		return StageSummary{
			Tag:          TagFeatureStage1,
			Number:       1,
			Label:        "Stage 1",
			Planned:      planned,
			Actual:       t.Actual1,
			Status:       statusOrPending(t.Status2),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	case TagFeatureStage2:
		planned := firstTime(t.Actual1, t.LivePlanned)
		complete := domain.StatusEquals(t.LiveStatus, domain.StageStatusCompleted)
		delay := Delay(planned, complete, t.LiveActual, Threshold(KindFeature, 2), now)
		return StageSummary{
			Tag:          TagFeatureStage2,
			Number:       2,
			Label:        "Stage 2",
			Planned:      planned,
			Actual:       t.LiveActual,
			Status:       statusOrPending(t.LiveStatus),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	default:
		return StageSummary{
			Tag:    TagFeatureCompleted,
			Number: 3,
			Label:  "Completed",
			Actual: t.LiveActual,
			Status: string(domain.StageStatusCompleted),
			Delay:  "-",
		}
	}
}
