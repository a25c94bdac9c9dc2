package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fms-support/internal/domain"
)

func sp(s domain.StageStatus) *domain.StageStatus { return &s }

func newChore(created time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:          "t-1",
		ReferenceNo: "FMS-0001",
		Type:        domain.TicketTypeChore,
		CreatedAt:   created,
	}
}

func TestResolveChoresBugsStage1(t *testing.T) {
	ticket := newChore(base)

	// Fresh ticket three hours in: one hour over the two-hour budget.
	sum := ResolveChoresBugs(ticket, base.Add(3*time.Hour))
	assert.Equal(t, TagStage1, sum.Tag)
	assert.Equal(t, 1, sum.Number)
	assert.Equal(t, "Stage 1", sum.Label)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base, *sum.Planned)
	assert.Equal(t, "-", sum.Status)
	assert.Equal(t, int64(3600), sum.DelaySeconds)
	assert.Equal(t, "1 hr", sum.Delay)
}

func TestResolveChoresBugsStage2Live(t *testing.T) {
	ticket := newChore(base)
	ticket.Status1 = sp(domain.StageStatusNo)
	ticket.Actual1 = tp(base.Add(time.Hour))
	ticket.Planned2 = tp(base.Add(time.Hour))

	// Thirty hours after stage 1 closed: six hours over the one-day budget.
	sum := ResolveChoresBugs(ticket, base.Add(31*time.Hour))
	assert.Equal(t, TagStage2, sum.Tag)
	assert.Equal(t, 2, sum.Number)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base.Add(time.Hour), *sum.Planned)
	assert.Equal(t, int64(6*3600), sum.DelaySeconds)
	assert.Equal(t, "6 hr", sum.Delay)
}

func TestResolveChoresBugsYesSkipsToStage4(t *testing.T) {
	ticket := newChore(base)
	ticket.Status1 = sp(domain.StageStatusYes)
	ticket.Actual1 = tp(base)
	ticket.Planned4 = tp(base)

	sum := ResolveChoresBugs(ticket, base.Add(time.Hour))
	assert.Equal(t, TagStage4, sum.Tag)
	assert.Equal(t, 4, sum.Number)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base, *sum.Planned)
	assert.Equal(t, "-", sum.Status)
	assert.Zero(t, sum.DelaySeconds)
	assert.Equal(t, "-", sum.Delay)
}

func TestResolveChoresBugsStage3ThenStage4(t *testing.T) {
	t2 := base.Add(2 * time.Hour)
	ticket := newChore(base)
	ticket.Status1 = sp(domain.StageStatusNo)
	ticket.Actual1 = tp(base.Add(time.Hour))
	ticket.Planned2 = tp(base.Add(time.Hour))
	ticket.Status2 = sp(domain.StageStatusCompleted)
	ticket.Actual2 = tp(t2)
	ticket.Planned3 = tp(t2)

	sum := ResolveChoresBugs(ticket, t2.Add(30*time.Minute))
	assert.Equal(t, TagStage3, sum.Tag)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, t2, *sum.Planned)
	assert.Zero(t, sum.DelaySeconds)

	// Stage 3 closes one hour later, within its two-hour budget.
	ticket.Status3 = sp(domain.StageStatusCompleted)
	ticket.Actual3 = tp(t2.Add(time.Hour))
	ticket.Planned4 = tp(t2.Add(time.Hour))

	sum = ResolveChoresBugs(ticket, t2.Add(90*time.Minute))
	assert.Equal(t, TagStage4, sum.Tag)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, t2.Add(time.Hour), *sum.Planned)
	assert.Zero(t, sum.DelaySeconds)
}

func TestResolveChoresBugsStage2Verbatim(t *testing.T) {
	ticket := newChore(base)
	ticket.Status1 = sp(domain.StageStatusNo)
	ticket.Actual1 = tp(base.Add(time.Hour))
	ticket.Planned2 = tp(base.Add(time.Hour))

	for _, status := range []domain.StageStatus{domain.StageStatusHold, domain.StageStatusNA, domain.StageStatusRejected, domain.StageStatusStaging} {
		ticket.Status2 = sp(status)
		sum := ResolveChoresBugs(ticket, base.Add(72*time.Hour))
		assert.Equal(t, TagStage2, sum.Tag)
		assert.Equal(t, string(status), sum.Status)
		// Delay accrues only while pending.
		assert.Zero(t, sum.DelaySeconds, "status=%s", status)
	}

	ticket.Status2 = sp(domain.StageStatusPending)
	sum := ResolveChoresBugs(ticket, base.Add(1*time.Hour+25*time.Hour))
	assert.Equal(t, "pending", sum.Status)
	assert.Equal(t, int64(3600), sum.DelaySeconds)
}

func TestResolveChoresBugsStage4ClosedDelay(t *testing.T) {
	ticket := newChore(base)
	ticket.Status1 = sp(domain.StageStatusYes)
	ticket.Actual1 = tp(base)
	ticket.Planned4 = tp(base)
	ticket.Status4 = sp(domain.StageStatusCompleted)
	ticket.Actual4 = tp(base.Add(5 * time.Hour))

	// Closed three hours over budget; frozen regardless of now.
	sum := ResolveChoresBugs(ticket, base.Add(500*time.Hour))
	assert.Equal(t, int64(3*3600), sum.DelaySeconds)
	assert.Equal(t, "completed", sum.Status)
}

func TestResolveChoresBugsTotality(t *testing.T) {
	statuses1 := []*domain.StageStatus{nil, sp(domain.StageStatusYes), sp(domain.StageStatusNo)}
	statuses2 := []*domain.StageStatus{nil, sp(domain.StageStatusCompleted), sp(domain.StageStatusPending), sp(domain.StageStatusStaging), sp(domain.StageStatusHold), sp(domain.StageStatusNA), sp(domain.StageStatusRejected)}
	statuses3 := []*domain.StageStatus{nil, sp(domain.StageStatusCompleted), sp(domain.StageStatusPending), sp(domain.StageStatusHold)}
	statuses4 := []*domain.StageStatus{nil, sp(domain.StageStatusCompleted), sp(domain.StageStatusPending), sp(domain.StageStatusNA)}
	instants := []*time.Time{nil, tp(base), tp(base.Add(time.Hour))}

	now := base.Add(48 * time.Hour)
	for _, s1 := range statuses1 {
		for _, s2 := range statuses2 {
			for _, s3 := range statuses3 {
				for _, s4 := range statuses4 {
					for _, a1 := range instants {
						ticket := newChore(base)
						ticket.Status1, ticket.Status2, ticket.Status3, ticket.Status4 = s1, s2, s3, s4
						ticket.Actual1 = a1

						sum := ResolveChoresBugs(ticket, now)
						assert.NotEmpty(t, sum.Label)
						assert.GreaterOrEqual(t, sum.DelaySeconds, int64(0))
						assert.NotEmpty(t, sum.Status)

						// Idempotent: same snapshot, same now, same output.
						again := ResolveChoresBugs(ticket, now)
						assert.Equal(t, sum, again)
					}
				}
			}
		}
	}
}

func TestResolveChoresBugsAllNull(t *testing.T) {
	sum := ResolveChoresBugs(&domain.Ticket{}, base)
	assert.Equal(t, TagStage1, sum.Tag)
	assert.NotNil(t, sum.Planned)
}
