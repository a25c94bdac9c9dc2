package workflow

import "time"

// Clock supplies the current instant. Stage resolution and delay math take
// the instant as input so projections stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the given instant.
type FixedClock struct {
	Instant time.Time
}

func (f FixedClock) Now() time.Time { return f.Instant }
