package planner

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"flowstate/pkg/timegrid"
)

// placer owns the mutable slot list during a placement pass. No other
// component reads or writes it; completionTimes is likewise single-writer.
type placer struct {
	slots    []Slot
	now      time.Time
	settings Settings

	completionTimes map[string]time.Time

	scheduled   []Task
	unscheduled []Unscheduled

	highTodoScheduled   bool
	projectPastDeadline int
}

func newPlacer(slots []Slot, now time.Time, settings Settings, done map[string]time.Time) *placer {
	return &placer{
		slots:           slots,
		now:             now,
		settings:        settings,
		completionTimes: done,
	}
}

// place fits one task into the slot grid, splitting it across slots when a
// single slot cannot hold it. On success the consumed intervals are removed
// from the slot list and the parts are appended to the accepted output; on
// failure the slot list is restored untouched and the task lands in the
// unscheduled list with a reason.
func (p *placer) place(t Task) {
	floor := p.startFloor(t)
	ceiling := p.endCeiling(t)

	startIdx := 0
	if t.Energy != EnergyNone {
		idx, ok := p.bestEnergySlot(t, floor, ceiling)
		if !ok {
			p.reject(t, ceiling)
			return
		}
		startIdx = idx
	}

	snapshot := slices.Clone(p.slots)
	remaining := t.Duration
	var parts []Task

	i := startIdx
	for i < len(p.slots) && remaining > 0 {
		slot := p.slots[i]
		usable, end, ok := usableRange(slot, floor, ceiling)
		if !ok {
			i++
			continue
		}

		fit := min(remaining, timegrid.Minutes(usable, end))
		partEnd := usable.Add(time.Duration(fit) * time.Minute)
		parts = append(parts, p.newPart(t, usable, partEnd, fit, len(parts)+1))
		remaining -= fit

		// Splice the consumed interval out of the slot list, keeping it
		// sorted: drop the slot, keep its tail, or split it in two.
		switch {
		case usable.Equal(slot.Start) && partEnd.Equal(slot.End):
			p.slots = slices.Delete(p.slots, i, i+1)
		case usable.Equal(slot.Start):
			p.slots[i].Start = partEnd
			i++
		default:
			tail := Slot{Start: partEnd, End: slot.End}
			p.slots[i].End = usable
			i++
			if tail.Start.Before(tail.End) {
				p.slots = slices.Insert(p.slots, i, tail)
				i++
			}
		}
	}

	if remaining > 0 {
		p.slots = snapshot
		p.reject(t, ceiling)
		return
	}

	p.commit(t, parts)
}

// startFloor is the earliest moment the task may begin: now, the completion
// of every placed dependency, and the task's own earliest-start.
func (p *placer) startFloor(t Task) time.Time {
	floor := p.now
	for _, dep := range t.DependsOn {
		if end, ok := p.completionTimes[dep]; ok && end.After(floor) {
			floor = end
		}
	}
	if t.EarliestStart != nil && t.EarliestStart.After(floor) {
		floor = *t.EarliestStart
	}
	return timegrid.Ceil(floor)
}

// endCeiling is the latest moment the task may end, nil when unbounded.
// A deadline is a calendar date and binds at end of day.
func (p *placer) endCeiling(t Task) *time.Time {
	var ceiling *time.Time
	if t.Deadline != nil {
		d := t.DeadlineEnd()
		ceiling = &d
	}
	if t.LatestEnd != nil {
		le := timegrid.Floor(*t.LatestEnd)
		if ceiling == nil || le.Before(*ceiling) {
			ceiling = &le
		}
	}
	return ceiling
}

// usableRange clips a slot to the task's floor and ceiling. ok=false when
// nothing of at least one grid step remains.
func usableRange(slot Slot, floor time.Time, ceiling *time.Time) (start, end time.Time, ok bool) {
	start = slot.Start
	if floor.After(start) {
		start = floor
	}
	end = slot.End
	if ceiling != nil && ceiling.Before(end) {
		end = *ceiling
	}
	if !start.Before(end) || timegrid.Minutes(start, end) < timegrid.StepMinutes {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// bestEnergySlot scans the whole slot list for the start whose hour best
// matches the task's energy tag. Ties break toward the earliest usable
// start, which the in-order scan gives for free.
func (p *placer) bestEnergySlot(t Task, floor time.Time, ceiling *time.Time) (int, bool) {
	best := -1
	bestScore := 0
	for i, slot := range p.slots {
		start, _, ok := usableRange(slot, floor, ceiling)
		if !ok {
			continue
		}
		if s := energyScore(t.Energy, start.Hour()); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, best >= 0
}

// energyScore rates a start hour against an energy tag. High-energy work
// prefers mornings, medium the middle of the day, low the afternoon.
func energyScore(e Energy, hour int) int {
	switch e {
	case EnergyHigh:
		switch {
		case hour < 11:
			return 3
		case hour < 15:
			return 2
		default:
			return 1
		}
	case EnergyMedium:
		switch {
		case hour >= 10 && hour <= 16:
			return 3
		case hour >= 8 && hour <= 18:
			return 2
		default:
			return 1
		}
	case EnergyLow:
		switch {
		case hour >= 15:
			return 3
		case hour >= 12:
			return 2
		default:
			return 1
		}
	}
	return 0
}

func (p *placer) newPart(t Task, start, end time.Time, minutes, index int) Task {
	s, e := start, end
	part := t
	part.Duration = minutes
	part.Start = &s
	part.End = &e
	part.PartIndex = index
	part.OriginalTaskID = t.ID
	part.Reason = p.reasonFor(t)
	return part
}

// commit finalizes the parts of a fully placed task. Split parts get
// derived identifiers and a numbered title so the host can collapse them on
// later passes.
func (p *placer) commit(t Task, parts []Task) {
	if len(parts) == 1 {
		parts[0].PartIndex = 0
		parts[0].OriginalTaskID = ""
	} else {
		for i := range parts {
			parts[i].ID = fmt.Sprintf("%s-part-%d", t.ID, parts[i].PartIndex)
			parts[i].Title = fmt.Sprintf("%s (%d)", t.Title, parts[i].PartIndex)
			parts[i].TotalParts = len(parts)
		}
	}
	p.scheduled = append(p.scheduled, parts...)

	lastEnd := *parts[len(parts)-1].End
	p.completionTimes[t.ID] = lastEnd

	if t.TodoList && t.Priority == PriorityHigh {
		p.highTodoScheduled = true
	}
	// The deadline ceiling binds at end of day, but the push warning
	// compares against the deadline moment itself: a project finishing
	// after its deadline date has slipped even when still placeable.
	if !t.TodoList && t.Deadline != nil && lastEnd.After(*t.Deadline) {
		p.projectPastDeadline++
	}
}

func (p *placer) reject(t Task, ceiling *time.Time) {
	reason := "Insufficient availability"
	if ceiling != nil {
		reason = fmt.Sprintf("No slot before deadline/window (needs %d min)", t.Duration)
	}
	p.unscheduled = append(p.unscheduled, Unscheduled{Task: t, Reason: reason})
}

// reasonFor composes the human-readable scheduling note attached to every
// placed part.
func (p *placer) reasonFor(t Task) string {
	notes := make([]string, 0, 4)
	if p.settings.EnableChunking {
		notes = append(notes, "fits the focus/break rhythm")
	}
	notes = append(notes, "priority "+t.Priority.String())
	if t.Energy != EnergyNone {
		notes = append(notes, strings.ToLower(t.Energy.String())+" energy hours")
	}
	if t.EarliestStart != nil || t.LatestEnd != nil {
		notes = append(notes, "within the requested time window")
	}
	return "Scheduled: " + strings.Join(notes, ", ")
}

func (p *placer) warnings() []string {
	var w []string
	if p.highTodoScheduled && p.projectPastDeadline > 0 {
		w = append(w, fmt.Sprintf("High-priority to-dos pushed %d project task(s) past deadlines.", p.projectPastDeadline))
	}
	return w
}
