package workflow

import (
	"fmt"
	"time"
)

// ReplySLAStatus classifies the first-reply turnaround.
type ReplySLAStatus string

const (
	ReplyOnTime  ReplySLAStatus = "on-time"
	ReplyDelayed ReplySLAStatus = "delay"
)

// ReplyStatus evaluates the 30-minute first-reply SLA between query arrival
// and query response. Missing instants report on-time with a "-" text.
func ReplyStatus(queryArrival, queryResponse *time.Time) (ReplySLAStatus, string) {
	if queryArrival == nil || queryResponse == nil {
		return ReplyOnTime, "-"
	}
	diffMin := int64(queryResponse.Sub(*queryArrival) / time.Minute)
	if diffMin <= int64(SLAReply/time.Minute) {
		return ReplyOnTime, "On-time"
	}
	h := diffMin / 60
	m := diffMin % 60
	d := h / 24
	hr := h % 24
	switch {
	case d > 0:
		unit := "day"
		if d > 1 {
			unit = "days"
		}
		return ReplyDelayed, fmt.Sprintf("Delay: %d %s %d hr %d min", d, unit, hr, m)
	case h > 0:
		return ReplyDelayed, fmt.Sprintf("Delay: %d hr %d min", h, m)
	default:
		return ReplyDelayed, fmt.Sprintf("Delay: %d min", m)
	}
}
