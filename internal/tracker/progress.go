package tracker

import (
	"time"

	"paper-analytics/internal/types"
)

const (
	startedPercent  = 10
	floorPercent    = 10
	ceilingPercent  = 90
	noClockPercent  = 20
	completePercent = 100
)

// Estimate maps run state and elapsed time onto 0-100. Running runs climb
// from 10 to at most 90 across window; the last 10 is held back until DONE.
// Failed and terminated runs report 0; callers take the error path instead.
func Estimate(state types.RunState, createdAt, now time.Time, window time.Duration) int {
	switch state {
	case types.RunStateStarted:
		return startedPercent
	case types.RunStateDone:
		return completePercent
	case types.RunStateRunning:
	default:
		return 0
	}

	if createdAt.IsZero() || window <= 0 {
		return noClockPercent
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return floorPercent
	}
	pct := floorPercent + int(elapsed.Seconds()/window.Seconds()*float64(ceilingPercent))
	if pct > ceilingPercent {
		return ceilingPercent
	}
	return pct
}
