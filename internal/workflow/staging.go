package workflow

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// ClassifyStaging determines the current stage of the staging sub-workflow
// (Staging -> Live -> Live Review), entered from either the Chores/Bugs or
// the Feature workflow.
func ClassifyStaging(t *domain.Ticket) StageTag {
	switch {
	case !domain.StatusEquals(t.StagingReviewStatus, domain.StageStatusCompleted):
		return TagStagingReview
	case !domain.StatusEquals(t.LiveStatus, domain.StageStatusCompleted):
		return TagLive
	default:
		return TagLiveReview
	}
}

// ResolveStaging computes the current-stage projection for the staging
// sub-workflow. Each stage's planned falls back to the previous stage's
// actual; every stage carries the two-hour budget.
func ResolveStaging(t *domain.Ticket, now time.Time) StageSummary {
	switch ClassifyStaging(t) {
	case TagStagingReview:
		complete := domain.StatusEquals(t.StagingReviewStatus, domain.StageStatusCompleted)
		delay := Delay(t.StagingPlanned, complete, t.StagingReviewActual, Threshold(KindStaging, 1), now)
		return StageSummary{
			Tag:          TagStagingReview,
			Number:       1,
			Label:        "Staging",
			Planned:      t.StagingPlanned,
			Actual:       t.StagingReviewActual,
			Status:       statusOrPending(t.StagingReviewStatus),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	case TagLive:
		planned := firstTime(t.LivePlanned, t.StagingReviewActual)
		complete := domain.StatusEquals(t.LiveStatus, domain.StageStatusCompleted)
		delay := Delay(planned, complete, t.LiveActual, Threshold(KindStaging, 2), now)
		return StageSummary{
			Tag:          TagLive,
			Number:       2,
			Label:        "Live",
			Planned:      planned,
			Actual:       t.LiveActual,
			Status:       statusOrPending(t.LiveStatus),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}

	default:
		planned := firstTime(t.LiveReviewPlanned, t.LiveActual)
		complete := domain.StatusEquals(t.LiveReviewStatus, domain.StageStatusCompleted)
		delay := Delay(planned, complete, t.LiveReviewActual, Threshold(KindStaging, 3), now)
		return StageSummary{
			Tag:          TagLiveReview,
			Number:       3,
			Label:        "Live Review",
			Planned:      planned,
			Actual:       t.LiveReviewActual,
			Status:       statusOrPending(t.LiveReviewStatus),
			DelaySeconds: delay,
			Delay:        delayText(delay),
		}
	}
}

// Resolve dispatches to the workflow a ticket currently belongs to: tickets
// that entered staging resolve through the staging chain, features through
// the approval gate, everything else through the Chores/Bugs chain.
func Resolve(t *domain.Ticket, kind Kind, now time.Time) StageSummary {
	switch kind {
	case KindStaging:
		return ResolveStaging(t, now)
	case KindFeature:
		return ResolveFeature(t, now)
	default:
		return ResolveChoresBugs(t, now)
	}
}

// KindForTicket picks the workflow used for a ticket's primary projection.
func KindForTicket(t *domain.Ticket) Kind {
	if t.InStaging() {
		return KindStaging
	}
	if t.Type == domain.TicketTypeFeature {
		return KindFeature
	}
	return KindChoresBugs
}
