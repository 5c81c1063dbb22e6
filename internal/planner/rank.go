package planner

import (
	"sort"
	"time"
)

// ranker hands the placement engine its next task. Tasks are split into a
// to-do-list stream and a project stream; picks alternate between the two so
// neither starves. A ready to-do with a deadline always jumps the queue.
type ranker struct {
	pending  []Task
	done     map[string]time.Time
	todoTurn bool
}

func newRanker(pending []Task, done map[string]time.Time) *ranker {
	return &ranker{pending: pending, done: done, todoTurn: true}
}

func (r *ranker) remaining() []Task { return r.pending }

// next returns the highest-ranked ready task, or ok=false when nothing is
// ready. ok=false with remaining() non-empty means the pending pool is
// blocked (dependency cycle or unresolved dependency).
func (r *ranker) next() (Task, bool) {
	pendingIDs := make(map[string]bool, len(r.pending))
	for _, t := range r.pending {
		pendingIDs[t.ID] = true
	}

	var todos, projects []Task
	for _, t := range r.pending {
		if !r.ready(t, pendingIDs) {
			continue
		}
		if t.TodoList {
			todos = append(todos, t)
		} else {
			projects = append(projects, t)
		}
	}
	sortQueue(todos)
	sortQueue(projects)

	// Urgent to-dos bypass the alternation entirely.
	for _, t := range todos {
		if t.Deadline != nil {
			r.take(t.ID)
			return t, true
		}
	}

	var pick Task
	switch {
	case r.todoTurn && len(todos) > 0:
		pick = todos[0]
	case !r.todoTurn && len(projects) > 0:
		pick = projects[0]
	case len(todos) > 0:
		pick = todos[0]
	case len(projects) > 0:
		pick = projects[0]
	default:
		return Task{}, false
	}
	r.todoTurn = !r.todoTurn
	r.take(pick.ID)
	return pick, true
}

// ready reports whether every dependency of t is completed or absent from
// the pending pool. A dangling dependency id counts as satisfied.
func (r *ranker) ready(t Task, pendingIDs map[string]bool) bool {
	for _, dep := range t.DependsOn {
		if _, completed := r.done[dep]; completed {
			continue
		}
		if pendingIDs[dep] {
			return false
		}
	}
	return true
}

func (r *ranker) take(id string) {
	for i, t := range r.pending {
		if t.ID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

// score ranks a task within its queue: priority dominates, then the
// presence of hard time constraints.
func score(t Task) int {
	s := t.Priority.weight() * 100
	if t.Deadline != nil {
		s += 50
	}
	if t.LatestEnd != nil {
		s += 60
	}
	return s
}

// sortQueue orders by score descending, then deadline ascending when both
// sides have deadlines, then duration descending. Stable so input order
// breaks remaining ties deterministically.
func sortQueue(q []Task) {
	sort.SliceStable(q, func(i, j int) bool {
		si, sj := score(q[i]), score(q[j])
		if si != sj {
			return si > sj
		}
		if q[i].Deadline != nil && q[j].Deadline != nil && !q[i].Deadline.Equal(*q[j].Deadline) {
			return q[i].Deadline.Before(*q[j].Deadline)
		}
		return q[i].Duration > q[j].Duration
	})
}
