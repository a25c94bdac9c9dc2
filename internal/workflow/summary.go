package workflow

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// StageTag identifies the single current stage a resolver classified a
// ticket into.
type StageTag string

const (
	TagStage1             StageTag = "stage_1"
	TagStage2             StageTag = "stage_2"
	TagStage3             StageTag = "stage_3"
	TagStage4             StageTag = "stage_4"
	TagApprovalPending    StageTag = "approval_pending"
	TagApprovalUnapproved StageTag = "approval_unapproved"
	TagFeatureStage1      StageTag = "feature_stage_1"
	TagFeatureStage2      StageTag = "feature_stage_2"
	TagFeatureCompleted   StageTag = "feature_completed"
	TagStagingReview      StageTag = "staging"
	TagLive               StageTag = "live"
	TagLiveReview         StageTag = "live_review"
)

// StageSummary is the derived projection of a ticket's current stage used
// by list, detail and export consumers. Missing string values are rendered
// as "-" so consumers never deal with nulls.
type StageSummary struct {
	Tag          StageTag
	Number       int
	Label        string
	Planned      *time.Time
	Actual       *time.Time
	Status       string
	DelaySeconds int64
	Delay        string
}

// statusText renders a nullable stage status for display.
func statusText(s *domain.StageStatus) string {
	if s == nil {
		return "-"
	}
	return string(*s)
}

// statusOrPending renders a nullable stage status, defaulting to pending.
func statusOrPending(s *domain.StageStatus) string {
	if s == nil {
		return string(domain.StageStatusPending)
	}
	return string(*s)
}

// delayText renders positive delays, "-" otherwise.
func delayText(seconds int64) string {
	if seconds > 0 {
		return FormatDelay(seconds)
	}
	return "-"
}

// firstTime returns the first non-nil instant.
func firstTime(candidates ...*time.Time) *time.Time {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
