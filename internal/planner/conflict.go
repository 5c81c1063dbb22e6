package planner

import (
	"sort"
	"time"
)

// ResolveConflicts eliminates overlaps among already-scheduled tasks by
// right-shifting: incomplete scheduled tasks are walked in start order, and
// whenever one bleeds into the next, the next is shifted to begin exactly at
// the previous end, duration preserved. Shifted tasks are marked fixed with
// an explanatory reason. Break tasks and Done tasks are left alone.
//
// One pass reaches a fixed point: after shifting, starts stay monotonic and
// no pair overlaps, so applying ResolveConflicts twice equals applying it
// once.
func ResolveConflicts(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)

	idx := make([]int, 0, len(out))
	for i, t := range out {
		if t.Status == StatusDone || t.IsBreak() || !t.Scheduled() {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return out[idx[a]].Start.Before(*out[idx[b]].Start)
	})

	for k := 1; k < len(idx); k++ {
		cur := &out[idx[k-1]]
		next := &out[idx[k]]
		if !cur.End.After(*next.Start) {
			continue
		}
		start := *cur.End
		end := start.Add(time.Duration(next.Duration) * time.Minute)
		next.Start = &start
		next.End = &end
		next.Fixed = true
		next.Reason = "Auto-resolved conflict"
	}
	return out
}
