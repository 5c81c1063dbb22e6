package planner

import (
	"time"
)

// CascadeMove applies a manual reschedule of the target task and propagates
// it through the dependency graph in both directions: successors whose start
// would now precede the target's end are pushed later, predecessors whose
// end would now overlap the target's start are pulled earlier. Moved tasks
// are marked fixed so a subsequent plan treats them as immovable.
//
// Traversal uses an explicit stack with a visited set; on a dependency
// cycle the first visit wins and the walk terminates at a fixed point. The
// input slice is not mutated.
//
// A pulled predecessor may land before `now` or outside work hours; the
// move is accepted unclamped and left to ResolveConflicts or a replan.
func CascadeMove(tasks []Task, targetID string, newStart time.Time) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)

	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.ID] = i
	}
	if _, ok := index[targetID]; !ok {
		return out
	}

	type move struct {
		id    string
		start time.Time
	}
	stack := []move{{id: targetID, start: newStart}}
	visited := map[string]bool{}

	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[m.id] {
			continue
		}
		visited[m.id] = true

		i := index[m.id]
		start := m.start
		end := start.Add(time.Duration(out[i].Duration) * time.Minute)
		out[i].Start = &start
		out[i].End = &end
		out[i].Fixed = true
		out[i].Reason = "Manually moved by user"

		// Push successors that would now start before this task ends.
		for _, succ := range out {
			if visited[succ.ID] || !dependsOn(succ, m.id) {
				continue
			}
			if succ.Start != nil && succ.Start.Before(end) {
				stack = append(stack, move{id: succ.ID, start: end})
			}
		}

		// Pull predecessors that would now end after this task starts.
		for _, dep := range out[i].DependsOn {
			j, ok := index[dep]
			if !ok || visited[dep] {
				continue
			}
			if out[j].End != nil && out[j].End.After(start) {
				stack = append(stack, move{
					id:    dep,
					start: start.Add(-time.Duration(out[j].Duration) * time.Minute),
				})
			}
		}
	}
	return out
}

func dependsOn(t Task, id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}
