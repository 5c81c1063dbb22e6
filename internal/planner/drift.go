package planner

import (
	"time"

	"flowstate/pkg/timegrid"
)

// Drift reports how far the live moment has run past the schedule: the
// maximum minutes by which now exceeds the scheduled end of any incomplete
// task. Break tasks are excluded from the accounting. Zero means the user is
// on (or ahead of) plan.
func Drift(tasks []Task, now time.Time) int {
	max := 0
	for _, t := range tasks {
		if t.Status == StatusDone || t.IsBreak() || t.End == nil {
			continue
		}
		if t.End.Before(now) {
			if m := timegrid.Minutes(*t.End, now); m > max {
				max = m
			}
		}
	}
	return max
}
