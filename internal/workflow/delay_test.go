package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func TestDelayNilPlanned(t *testing.T) {
	assert.Zero(t, Delay(nil, false, nil, SLAShort, base))
	assert.Zero(t, Delay(nil, true, tp(base), SLAShort, base))
}

func TestDelayOpenStageGrows(t *testing.T) {
	planned := tp(base)

	// Within budget.
	assert.Zero(t, Delay(planned, false, nil, SLAShort, base.Add(1*time.Hour)))
	// One hour over the two-hour budget.
	assert.Equal(t, int64(3600), Delay(planned, false, nil, SLAShort, base.Add(3*time.Hour)))
	// An open stage ignores a stray actual and keeps growing.
	assert.Equal(t, int64(7200), Delay(planned, false, tp(base.Add(time.Minute)), SLAShort, base.Add(4*time.Hour)))
}

func TestDelayClosedStageFrozen(t *testing.T) {
	planned := tp(base)
	actual := tp(base.Add(1 * time.Hour))

	// Closed within budget stays zero no matter how late now is.
	assert.Zero(t, Delay(planned, true, actual, SLAShort, base.Add(100*time.Hour)))
	// Closed over budget is measured against the close instant.
	late := tp(base.Add(3 * time.Hour))
	assert.Equal(t, int64(3600), Delay(planned, true, late, SLAShort, base.Add(100*time.Hour)))
}

func TestDelayNeverNegative(t *testing.T) {
	planned := tp(base)
	instants := []time.Time{
		base.Add(-48 * time.Hour),
		base,
		base.Add(time.Second),
		base.Add(SLAWork),
		base.Add(30 * 24 * time.Hour),
	}
	for _, now := range instants {
		assert.GreaterOrEqual(t, Delay(planned, false, nil, SLAShort, now), int64(0))
		for _, actual := range instants {
			assert.GreaterOrEqual(t, Delay(planned, true, tp(actual), SLAWork, now), int64(0))
		}
	}
}

func TestFormatDelay(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0 sec"},
		{-5, "-"},
		{42, "42 sec"},
		{18 * 60, "18 min"},
		{2*3600 + 10*60, "2 hr 10 min"},
		{86400 + 3*3600, "1 day 3 hr"},
		{2*86400 + 61, "2 days 1 min"},
		{3600, "1 hr"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDelay(tc.seconds), "seconds=%d", tc.seconds)
	}
}

func TestThresholds(t *testing.T) {
	assert.Equal(t, SLAShort, Threshold(KindChoresBugs, 1))
	assert.Equal(t, SLAWork, Threshold(KindChoresBugs, 2))
	assert.Equal(t, SLAShort, Threshold(KindChoresBugs, 3))
	assert.Equal(t, SLAShort, Threshold(KindChoresBugs, 4))
	assert.Equal(t, SLAWork, Threshold(KindFeature, 1))
	assert.Equal(t, SLAShort, Threshold(KindFeature, 2))
	assert.Equal(t, SLAShort, Threshold(KindStaging, 3))
	// Unknown stages degrade to the short budget.
	assert.Equal(t, SLAShort, Threshold(KindChoresBugs, 9))
}

func TestReplyStatus(t *testing.T) {
	status, text := ReplyStatus(nil, nil)
	assert.Equal(t, ReplyOnTime, status)
	assert.Equal(t, "-", text)

	arrival := tp(base)
	status, text = ReplyStatus(arrival, tp(base.Add(20*time.Minute)))
	assert.Equal(t, ReplyOnTime, status)
	assert.Equal(t, "On-time", text)

	status, text = ReplyStatus(arrival, tp(base.Add(42*time.Minute)))
	assert.Equal(t, ReplyDelayed, status)
	assert.Equal(t, "Delay: 42 min", text)

	status, text = ReplyStatus(arrival, tp(base.Add(3*time.Hour+5*time.Minute)))
	assert.Equal(t, ReplyDelayed, status)
	assert.Equal(t, "Delay: 3 hr 5 min", text)

	status, text = ReplyStatus(arrival, tp(base.Add(26*time.Hour)))
	assert.Equal(t, ReplyDelayed, status)
	assert.Equal(t, "Delay: 1 day 2 hr 0 min", text)
}
