package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fms-support/internal/domain"
)

func TestChoresBugsStage1Writes(t *testing.T) {
	ticket := newChore(base)
	now := base.Add(time.Hour)

	ws, err := ComputeTransitionWrites(ticket, KindChoresBugs, 1, domain.StageStatusNo, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StageStatusNo, ws["status_1"])
	assert.Equal(t, now, ws["actual_1"])
	assert.Equal(t, now, ws["planned_2"])
	assert.NotContains(t, ws, "planned_4")

	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 1, domain.StageStatusYes, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["actual_1"])
	assert.Equal(t, now, ws["planned_4"])
	assert.NotContains(t, ws, "planned_2")
}

func TestChoresBugsStage2Writes(t *testing.T) {
	ticket := newChore(base)
	ticket.Status1 = sp(domain.StageStatusNo)
	ticket.Actual1 = tp(base.Add(time.Hour))
	now := base.Add(2 * time.Hour)

	ws, err := ComputeTransitionWrites(ticket, KindChoresBugs, 2, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), ws["planned_2"])
	assert.Equal(t, now, ws["actual_2"])
	assert.Equal(t, now, ws["planned_3"])

	// Hold stamps the actual but seeds nothing forward.
	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 2, domain.StageStatusHold, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["actual_2"])
	assert.NotContains(t, ws, "planned_3")

	// Staging enters the sub-workflow.
	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 2, domain.StageStatusStaging, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["actual_2"])
	assert.Equal(t, now, ws["staging_planned"])
	assert.Equal(t, now, ws["staging_review_actual"])
	assert.Equal(t, domain.StageStatusPending, ws["staging_review_status"])

	// Pending writes only the status (plus the planned reseed).
	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 2, domain.StageStatusPending, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StageStatusPending, ws["status_2"])
	assert.NotContains(t, ws, "actual_2")
}

func TestChoresBugsStage3And4Writes(t *testing.T) {
	ticket := newChore(base)
	ticket.Actual2 = tp(base.Add(2 * time.Hour))
	now := base.Add(3 * time.Hour)

	ws, err := ComputeTransitionWrites(ticket, KindChoresBugs, 3, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, base.Add(2*time.Hour), ws["planned_3"])
	assert.Equal(t, now, ws["actual_3"])
	assert.Equal(t, now, ws["planned_4"])

	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 3, domain.StageStatusHold, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["actual_3"])
	assert.NotContains(t, ws, "planned_4")

	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 4, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["actual_4"])

	ws, err = ComputeTransitionWrites(ticket, KindChoresBugs, 4, domain.StageStatusPending, now)
	require.NoError(t, err)
	assert.NotContains(t, ws, "actual_4")
}

func TestFeatureStageWrites(t *testing.T) {
	ticket := newFeature(base)
	now := base.Add(time.Hour)

	ws, err := ComputeTransitionWrites(ticket, KindFeature, 1, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StageStatusCompleted, ws["status_2"])
	assert.Equal(t, now, ws["actual_1"])
	assert.Equal(t, now, ws["planned_2"])
	assert.Equal(t, now, ws["live_planned"])

	ws, err = ComputeTransitionWrites(ticket, KindFeature, 1, domain.StageStatusStaging, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["actual_1"])
	assert.Equal(t, now, ws["staging_planned"])
	assert.Equal(t, domain.StageStatusPending, ws["staging_review_status"])

	ticket.Actual1 = tp(now)
	later := now.Add(time.Hour)
	ws, err = ComputeTransitionWrites(ticket, KindFeature, 2, domain.StageStatusCompleted, later)
	require.NoError(t, err)
	assert.Equal(t, later, ws["live_actual"])
	// live_planned is re-seeded from stage 1's actual.
	assert.Equal(t, now, ws["live_planned"])
	// The staging cascade seeds the review stage.
	assert.Equal(t, later, ws["live_review_planned"])

	// A previously seeded live_planned is left alone.
	ticket.LivePlanned = tp(now.Add(30 * time.Minute))
	ws, err = ComputeTransitionWrites(ticket, KindFeature, 2, domain.StageStatusCompleted, later)
	require.NoError(t, err)
	_, reseeded := ws["live_planned"]
	assert.False(t, reseeded)
}

func TestStagingCascadeWrites(t *testing.T) {
	now := base.Add(time.Hour)

	ws, err := ComputeTransitionWrites(newChore(base), KindStaging, 1, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["staging_review_actual"])
	assert.Equal(t, now, ws["live_planned"])

	ws, err = ComputeTransitionWrites(newChore(base), KindStaging, 2, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["live_actual"])
	assert.Equal(t, now, ws["live_review_planned"])

	ws, err = ComputeTransitionWrites(newChore(base), KindStaging, 3, domain.StageStatusCompleted, now)
	require.NoError(t, err)
	assert.Equal(t, now, ws["live_review_actual"])
	assert.Equal(t, "resolved", ws["status"])
	assert.Equal(t, now, ws["resolved_at"])

	// Pending writes carry no cascade.
	ws, err = ComputeTransitionWrites(newChore(base), KindStaging, 1, domain.StageStatusPending, now)
	require.NoError(t, err)
	assert.NotContains(t, ws, "staging_review_actual")
}

func TestInvalidStatusRejected(t *testing.T) {
	_, err := ComputeTransitionWrites(newChore(base), KindChoresBugs, 1, domain.StageStatusCompleted, base)
	assert.Error(t, err)

	_, err = ComputeTransitionWrites(newChore(base), KindChoresBugs, 2, domain.StageStatusYes, base)
	assert.Error(t, err)

	_, err = ComputeTransitionWrites(newFeature(base), KindFeature, 2, domain.StageStatusHold, base)
	assert.Error(t, err)

	_, err = ComputeTransitionWrites(newChore(base), KindStaging, 2, domain.StageStatusStaging, base)
	assert.Error(t, err)
}

func TestStagingBackWritesClearEverything(t *testing.T) {
	ws := StagingBackWrites()
	cleared := []string{
		"staging_planned", "staging_review_status", "staging_review_actual",
		"live_planned", "live_status", "live_actual",
		"live_review_planned", "live_review_status", "live_review_actual",
	}
	for _, col := range cleared {
		v, ok := ws[col]
		require.True(t, ok, "missing %s", col)
		assert.Nil(t, v, col)
	}
	assert.Equal(t, domain.StageStatusPending, ws["status_2"])
	assert.Len(t, ws, len(cleared)+1)
}

func TestMonotonicSeeding(t *testing.T) {
	// Every stage-advancing transition seeds the next stage's planned
	// with the closing stage's actual (now).
	now := base.Add(time.Hour)
	ticket := newChore(base)

	ws, _ := ComputeTransitionWrites(ticket, KindChoresBugs, 1, domain.StageStatusNo, now)
	assert.Equal(t, ws["actual_1"], ws["planned_2"])

	ws, _ = ComputeTransitionWrites(ticket, KindChoresBugs, 2, domain.StageStatusCompleted, now)
	assert.Equal(t, ws["actual_2"], ws["planned_3"])

	ws, _ = ComputeTransitionWrites(ticket, KindChoresBugs, 3, domain.StageStatusCompleted, now)
	assert.Equal(t, ws["actual_3"], ws["planned_4"])

	ws, _ = ComputeTransitionWrites(ticket, KindStaging, 1, domain.StageStatusCompleted, now)
	assert.Equal(t, ws["staging_review_actual"], ws["live_planned"])

	ws, _ = ComputeTransitionWrites(ticket, KindStaging, 2, domain.StageStatusCompleted, now)
	assert.Equal(t, ws["live_actual"], ws["live_review_planned"])
}

func TestMarkStagingWrites(t *testing.T) {
	ws := MarkStagingWrites(base)
	assert.Equal(t, base, ws["staging_planned"])
	assert.Equal(t, domain.StageStatusPending, ws["staging_review_status"])
	assert.Len(t, ws, 2)
}
