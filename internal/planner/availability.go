package planner

import (
	"time"

	"flowstate/pkg/timegrid"
)

const dayKeyFormat = "2006-01-02"

// freeWindows enumerates the free intervals over the planning horizon:
// the work-hours window of every active day, minus fixed events, re-snapped
// to the grid. Output is chronological and non-overlapping. An empty result
// is not an error; it means no placement is possible within the horizon.
func freeWindows(tasks []Task, now time.Time, settings Settings) []Slot {
	fixedByDay := indexFixedEvents(tasks)
	active := settings.activeDaySet()

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var out []Slot
	for i := 0; i <= HorizonDays; i++ {
		day := today.AddDate(0, 0, i)
		if !active[day.Weekday()] {
			continue
		}

		workStart := timegrid.Ceil(day.Add(time.Duration(settings.WorkStartHour) * time.Hour))
		workEnd := timegrid.Floor(day.Add(time.Duration(settings.WorkEndHour) * time.Hour))
		if i == 0 {
			if !now.Before(workEnd) {
				continue
			}
			if now.After(workStart) {
				workStart = timegrid.Ceil(now)
			}
		}
		if !workStart.Before(workEnd) {
			continue
		}

		windows := []Slot{{Start: workStart, End: workEnd}}
		for _, ev := range fixedByDay[day.Format(dayKeyFormat)] {
			if !timegrid.Overlaps(ev.Start, ev.End, workStart, workEnd) {
				continue
			}
			windows = subtractEvent(windows, ev)
		}

		for _, w := range windows {
			start := timegrid.Ceil(w.Start)
			end := timegrid.Floor(w.End)
			if timegrid.Minutes(start, end) >= timegrid.StepMinutes {
				out = append(out, Slot{Start: start, End: end})
			}
		}
	}
	return out
}

// indexFixedEvents groups immovable scheduled events by every calendar day
// they touch. Only fixed, not-done tasks with both endpoints count. Break
// tasks are a rhythm product, not user events; a stored schedule's breaks
// must not shrink the windows the next pass re-chunks.
func indexFixedEvents(tasks []Task) map[string][]Slot {
	idx := map[string][]Slot{}
	for _, t := range tasks {
		if !t.Fixed || t.IsBreak() || t.Status == StatusDone || !t.Scheduled() {
			continue
		}
		ev := Slot{Start: *t.Start, End: *t.End}
		y, m, d := ev.Start.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, ev.Start.Location())
		for day.Before(ev.End) {
			key := day.Format(dayKeyFormat)
			idx[key] = append(idx[key], ev)
			day = day.AddDate(0, 0, 1)
		}
	}
	return idx
}

// subtractEvent removes [ev.Start, ev.End) from every window it overlaps,
// splitting a window into at most two sub-windows.
func subtractEvent(windows []Slot, ev Slot) []Slot {
	next := make([]Slot, 0, len(windows)+1)
	for _, w := range windows {
		if !timegrid.Overlaps(w.Start, w.End, ev.Start, ev.End) {
			next = append(next, w)
			continue
		}
		if w.Start.Before(ev.Start) {
			next = append(next, Slot{Start: w.Start, End: ev.Start})
		}
		if ev.End.Before(w.End) {
			next = append(next, Slot{Start: ev.End, End: w.End})
		}
	}
	return next
}
