package workflow

import (
	"fmt"
	"strings"
	"time"
)

// Delay returns the seconds a stage has overrun its SLA budget.
//
// A closed stage (complete with a recorded actual) is measured against the
// instant it actually closed; an open stage accrues live against now. The
// result is never negative and a stage without a planned instant reports
// zero.
func Delay(planned *time.Time, complete bool, actual *time.Time, threshold time.Duration, now time.Time) int64 {
	if planned == nil {
		return 0
	}
	end := now
	if complete && actual != nil {
		end = *actual
	}
	over := int64(end.Sub(*planned)/time.Second) - int64(threshold/time.Second)
	if over < 0 {
		return 0
	}
	return over
}

// FormatDelay renders a delay as "D day(s) H hr M min", using the largest
// nonzero units and omitting zero-valued higher units. Zero renders as
// "0 sec"; negative input renders as "-".
func FormatDelay(seconds int64) string {
	if seconds < 0 {
		return "-"
	}
	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	parts := make([]string, 0, 3)
	if d > 0 {
		unit := "day"
		if d > 1 {
			unit = "days"
		}
		parts = append(parts, fmt.Sprintf("%d %s", d, unit))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%d hr", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%d min", m))
	}
	if s > 0 && len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d sec", s))
	}
	if len(parts) == 0 {
		return "0 sec"
	}
	return strings.Join(parts, " ")
}
