package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fms-support/internal/domain"
)

func ap(s domain.ApprovalStatus) *domain.ApprovalStatus { return &s }

func newFeature(created time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:        "f-1",
		Type:      domain.TicketTypeFeature,
		CreatedAt: created,
	}
}

func TestResolveFeatureApprovalPending(t *testing.T) {
	sum := ResolveFeature(newFeature(base), base.Add(time.Hour))
	assert.Equal(t, TagApprovalPending, sum.Tag)
	assert.Equal(t, "Approval Pending", sum.Label)
	assert.Equal(t, "-", sum.Status)
	assert.Nil(t, sum.Planned)
	assert.Zero(t, sum.DelaySeconds)
}

func TestResolveFeatureUnapproved(t *testing.T) {
	ticket := newFeature(base)
	ticket.ApprovalStatus = ap(domain.ApprovalUnapproved)
	ticket.UnapprovalActualAt = tp(base.Add(time.Hour))

	sum := ResolveFeature(ticket, base.Add(2*time.Hour))
	assert.Equal(t, TagApprovalUnapproved, sum.Tag)
	assert.Equal(t, "Approval (unapproved)", sum.Label)
	assert.Equal(t, "unapproved", sum.Status)
}

func TestResolveFeatureStage1(t *testing.T) {
	ticket := newFeature(base)
	ticket.ApprovalStatus = ap(domain.ApprovalApproved)
	ticket.QueryArrivalAt = tp(base.Add(-30 * time.Minute))

	// Planned comes from query arrival, budget is one day.
	sum := ResolveFeature(ticket, base.Add(time.Hour))
	assert.Equal(t, TagFeatureStage1, sum.Tag)
	assert.Equal(t, "Stage 1", sum.Label)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base.Add(-30*time.Minute), *sum.Planned)
	assert.Equal(t, "pending", sum.Status)
	assert.Zero(t, sum.DelaySeconds)

	// Two hours over the one-day budget.
	sum = ResolveFeature(ticket, base.Add(-30*time.Minute).Add(26*time.Hour))
	assert.Equal(t, int64(2*3600), sum.DelaySeconds)
}

func TestResolveFeatureStage1FallsBackToCreation(t *testing.T) {
	ticket := newFeature(base)
	ticket.ApprovalStatus = ap(domain.ApprovalApproved)

	sum := ResolveFeature(ticket, base)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base, *sum.Planned)
}

func TestResolveFeatureStage2(t *testing.T) {
	ticket := newFeature(base)
	ticket.ApprovalStatus = ap(domain.ApprovalApproved)
	ticket.Status2 = sp(domain.StageStatusCompleted)
	ticket.Actual1 = tp(base.Add(time.Hour))
	ticket.LivePlanned = tp(base.Add(time.Hour))

	sum := ResolveFeature(ticket, base.Add(4*time.Hour))
	assert.Equal(t, TagFeatureStage2, sum.Tag)
	assert.Equal(t, "Stage 2", sum.Label)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base.Add(time.Hour), *sum.Planned)
	assert.Equal(t, "pending", sum.Status)
	// One hour over the two-hour budget.
	assert.Equal(t, int64(3600), sum.DelaySeconds)
}

func TestResolveFeatureCompleted(t *testing.T) {
	ticket := newFeature(base)
	ticket.ApprovalStatus = ap(domain.ApprovalApproved)
	ticket.Status2 = sp(domain.StageStatusCompleted)
	ticket.LiveStatus = sp(domain.StageStatusCompleted)
	ticket.LiveActual = tp(base.Add(3 * time.Hour))

	sum := ResolveFeature(ticket, base.Add(10*time.Hour))
	assert.Equal(t, TagFeatureCompleted, sum.Tag)
	assert.Equal(t, "Completed", sum.Label)
	assert.Equal(t, "completed", sum.Status)
}

func TestApproveThenResolve(t *testing.T) {
	ticket := newFeature(base)
	ticket.QueryArrivalAt = tp(base.Add(-time.Hour))
	now := base.Add(2 * time.Hour)

	ws := ApprovalWrites(domain.ApprovalApproved, nil, "u-9", "ui", now)
	assert.Equal(t, domain.ApprovalApproved, ws["approval_status"])
	assert.Equal(t, now, ws["approval_actual_at"])
	assert.NotContains(t, ws, "unapproval_actual_at")

	approved := domain.ApprovalApproved
	ticket.ApprovalStatus = &approved
	ticket.ApprovalActualAt = &now

	sum := ResolveFeature(ticket, now)
	assert.Equal(t, TagFeatureStage1, sum.Tag)
	assert.Equal(t, "pending", sum.Status)
	require.NotNil(t, sum.Planned)
	assert.Equal(t, base.Add(-time.Hour), *sum.Planned)
}

func TestUnapprovalWritesCarryRemarks(t *testing.T) {
	remarks := "duplicate of an existing request"
	ws := ApprovalWrites(domain.ApprovalUnapproved, &remarks, "u-9", "ui", base)
	assert.Equal(t, domain.ApprovalUnapproved, ws["approval_status"])
	assert.Equal(t, base, ws["unapproval_actual_at"])
	assert.Equal(t, remarks, ws["remarks"])
	assert.NotContains(t, ws, "approval_actual_at")
}

func TestResolveFeatureTotality(t *testing.T) {
	approvals := []*domain.ApprovalStatus{nil, ap(domain.ApprovalApproved), ap(domain.ApprovalUnapproved)}
	statuses := []*domain.StageStatus{nil, sp(domain.StageStatusCompleted), sp(domain.StageStatusPending), sp(domain.StageStatusStaging), sp(domain.StageStatusHold), sp(domain.StageStatusNA)}
	live := []*domain.StageStatus{nil, sp(domain.StageStatusCompleted), sp(domain.StageStatusPending)}

	for _, a := range approvals {
		for _, s2 := range statuses {
			for _, ls := range live {
				ticket := newFeature(base)
				ticket.ApprovalStatus, ticket.Status2, ticket.LiveStatus = a, s2, ls
				sum := ResolveFeature(ticket, base.Add(time.Hour))
				assert.NotEmpty(t, sum.Label)
				assert.GreaterOrEqual(t, sum.DelaySeconds, int64(0))
			}
		}
	}
}
