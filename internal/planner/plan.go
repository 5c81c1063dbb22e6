// Package planner implements the planning core: a deterministic scheduler
// that places tasks onto a 15-minute time grid subject to working hours,
// dependencies, fixed events, priorities, energy profiles, time windows and
// the focus/break rhythm.
//
// All entry points are pure functions over snapshots: inputs are read-only,
// outputs freshly allocated, and `now` is frozen for the duration of a call.
package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Plan runs the full placement pass over a task snapshot.
//
// Done tasks, fixed events and break tasks are never (re)placed; they shape
// availability and seed dependency completion times. Everything else is
// ranked and greedily fitted into the free-time grid. Unplaceable tasks are
// reported, not fatal; only input invariant violations reject the pass.
func Plan(tasks []Task, now time.Time, settings Settings) (*PlanResult, error) {
	if err := validateInput(tasks, settings); err != nil {
		return nil, err
	}

	pending, done := splitSnapshot(tasks, now)
	pending = mergeParts(pending)

	windows := freeWindows(tasks, now, settings)
	slots, breaks := chunkWindows(windows, settings)

	p := newPlacer(slots, now, settings, done)
	r := newRanker(pending, done)
	for {
		t, ok := r.next()
		if !ok {
			break
		}
		p.place(t)
	}

	// Ready set drained while tasks remain pending: a cycle or an
	// unresolved dependency blocks everything left.
	for _, t := range r.remaining() {
		p.unscheduled = append(p.unscheduled, Unscheduled{
			Task:   t,
			Reason: fmt.Sprintf("Blocked by unresolved dependencies (%s)", strings.Join(t.DependsOn, ", ")),
		})
	}

	scheduled := p.scheduled
	sort.SliceStable(scheduled, func(i, j int) bool {
		if !scheduled[i].Start.Equal(*scheduled[j].Start) {
			return scheduled[i].Start.Before(*scheduled[j].Start)
		}
		return scheduled[i].PartIndex < scheduled[j].PartIndex
	})

	return &PlanResult{
		Scheduled:   scheduled,
		Breaks:      breaks,
		Unscheduled: p.unscheduled,
		Warnings:    p.warnings(),
	}, nil
}

// splitSnapshot separates the plannable pool from the tasks that only
// constrain it, and seeds the completion-times map: fixed events complete at
// their scheduled end, done tasks at their end when known.
func splitSnapshot(tasks []Task, now time.Time) (pending []Task, done map[string]time.Time) {
	done = map[string]time.Time{}
	for _, t := range tasks {
		switch {
		case t.IsBreak():
			// Previously emitted breaks never re-enter the pool.
		case t.Status == StatusDone:
			if t.End != nil {
				done[t.ID] = *t.End
			} else {
				done[t.ID] = now
			}
		case t.Fixed:
			if t.End != nil {
				done[t.ID] = *t.End
			}
		default:
			pending = append(pending, t)
		}
	}
	return pending, done
}

// mergeParts collapses split parts back into their original task before
// replanning: durations are summed (even if the user resized a part), the
// original identifier and bare title are restored, and part bookkeeping is
// cleared. Non-split tasks pass through unchanged.
func mergeParts(pending []Task) []Task {
	merged := make([]Task, 0, len(pending))
	byOriginal := map[string]int{}
	for _, t := range pending {
		if t.OriginalTaskID == "" {
			merged = append(merged, t)
			continue
		}
		if idx, ok := byOriginal[t.OriginalTaskID]; ok {
			merged[idx].Duration += t.Duration
			continue
		}
		orig := t
		orig.ID = t.OriginalTaskID
		orig.Title = strings.TrimSuffix(t.Title, fmt.Sprintf(" (%d)", t.PartIndex))
		orig.OriginalTaskID = ""
		orig.PartIndex = 0
		orig.TotalParts = 0
		orig.Start = nil
		orig.End = nil
		byOriginal[t.OriginalTaskID] = len(merged)
		merged = append(merged, orig)
	}
	return merged
}
