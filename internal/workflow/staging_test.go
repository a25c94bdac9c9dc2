package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fms-support/internal/domain"
)

func TestResolveStagingChain(t *testing.T) {
	ticket := newChore(base)
	ticket.StagingPlanned = tp(base)
	ticket.StagingReviewStatus = sp(domain.StageStatusPending)
	ticket.StagingReviewActual = tp(base)

	// Fresh staging entry: zero delay at now, growing afterwards.
	sum := ResolveStaging(ticket, base)
	assert.Equal(t, TagStagingReview, sum.Tag)
	assert.Equal(t, "Staging", sum.Label)
	assert.Equal(t, "pending", sum.Status)
	assert.Zero(t, sum.DelaySeconds)

	sum = ResolveStaging(ticket, base.Add(3*time.Hour))
	assert.Equal(t, int64(3600), sum.DelaySeconds)
	assert.Equal(t, "1 hr", sum.Delay)

	// Review completes; Live becomes current, planned seeded from the
	// review actual when live_planned is absent.
	ticket.StagingReviewStatus = sp(domain.StageStatusCompleted)
	ticket.StagingReviewActual = tp(base.Add(time.Hour))
	sum = ResolveStaging(ticket, base.Add(time.Hour))
	assert.Equal(t, TagLive, sum.Tag)
	assert.Equal(t, "Live", sum.Label)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base.Add(time.Hour), *sum.Planned)

	// Live completes; Live Review becomes current.
	ticket.LiveStatus = sp(domain.StageStatusCompleted)
	ticket.LiveActual = tp(base.Add(2 * time.Hour))
	sum = ResolveStaging(ticket, base.Add(2*time.Hour))
	assert.Equal(t, TagLiveReview, sum.Tag)
	assert.Equal(t, "Live Review", sum.Label)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base.Add(2*time.Hour), *sum.Planned)
}

func TestResolveStagingEmptySnapshot(t *testing.T) {
	sum := ResolveStaging(&domain.Ticket{}, base)
	assert.Equal(t, TagStagingReview, sum.Tag)
	assert.Equal(t, "pending", sum.Status)
	assert.Zero(t, sum.DelaySeconds)
}

func TestKindForTicket(t *testing.T) {
	chore := newChore(base)
	assert.Equal(t, KindChoresBugs, KindForTicket(chore))

	chore.StagingPlanned = tp(base)
	assert.Equal(t, KindStaging, KindForTicket(chore))

	feature := newFeature(base)
	assert.Equal(t, KindFeature, KindForTicket(feature))

	feature.StagingPlanned = tp(base)
	assert.Equal(t, KindStaging, KindForTicket(feature))
}

func TestResolveDispatch(t *testing.T) {
	ticket := newChore(base)
	assert.Equal(t, TagStage1, Resolve(ticket, KindChoresBugs, base).Tag)
	assert.Equal(t, TagStagingReview, Resolve(ticket, KindStaging, base).Tag)
	assert.Equal(t, TagApprovalPending, Resolve(newFeature(base), KindFeature, base).Tag)
}

func TestResolveSameSnapshotIsStable(t *testing.T) {
	now := base.Add(5 * time.Hour)

	chore := newChore(base)
	chore.Status1 = sp(domain.StageStatusNo)
	chore.Actual1 = tp(base.Add(time.Hour))
	chore.Planned2 = tp(base.Add(time.Hour))

	feature := newFeature(base)
	approved := domain.ApprovalApproved
	feature.ApprovalStatus = &approved

	staged := newChore(base)
	staged.StagingPlanned = tp(base)
	staged.StagingReviewStatus = sp(domain.StageStatusPending)
	staged.StagingReviewActual = tp(base)

	for _, ticket := range []*domain.Ticket{chore, feature, staged} {
		kind := KindForTicket(ticket)
		first := Resolve(ticket, kind, now)
		second := Resolve(ticket, kind, now)
		assert.Equal(t, first, second)
	}
}
