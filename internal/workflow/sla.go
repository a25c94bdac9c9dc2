package workflow

import "time"

// Kind selects one of the three ticket workflows.
type Kind string

const (
	KindChoresBugs Kind = "chores_bugs"
	KindFeature    Kind = "feature"
	KindStaging    Kind = "staging"
)

// SLA duration budgets. Delay is the overage beyond these.
const (
	SLAReply = 30 * time.Minute
	SLAShort = 2 * time.Hour
	SLAWork  = 24 * time.Hour
)

// thresholds maps (workflow, stage number) to its SLA budget. Stage 2 of
// Chores/Bugs and stage 1 of Feature are the work-progress stages and carry
// the one-day budget; everything else is two hours.
var thresholds = map[Kind]map[int]time.Duration{
	KindChoresBugs: {
		1: SLAShort,
		2: SLAWork,
		3: SLAShort,
		4: SLAShort,
	},
	KindFeature: {
		1: SLAWork,
		2: SLAShort,
	},
	KindStaging: {
		1: SLAShort,
		2: SLAShort,
		3: SLAShort,
	},
}

// Threshold returns the SLA budget for a stage. Unknown stages fall back to
// the two-hour budget so the engine stays total.
func Threshold(kind Kind, stage int) time.Duration {
	if m, ok := thresholds[kind]; ok {
		if d, ok := m[stage]; ok {
			return d
		}
	}
	return SLAShort
}
