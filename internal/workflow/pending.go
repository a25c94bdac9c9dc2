package workflow

import "github.com/spec-kit/fms-support/internal/domain"

// ChoresBugPending reports whether a chore or bug ticket still needs work:
// neither a quality-solution remark nor a completed live review closes it.
func ChoresBugPending(t *domain.Ticket) bool {
	if t.QualitySolution != nil {
		return false
	}
	if domain.StatusEquals(t.LiveReviewStatus, domain.StageStatusCompleted) {
		return false
	}
	return true
}

// FeaturePending reports whether a feature ticket still needs work.
func FeaturePending(t *domain.Ticket) bool {
	return !domain.StatusEquals(t.LiveReviewStatus, domain.StageStatusCompleted)
}
