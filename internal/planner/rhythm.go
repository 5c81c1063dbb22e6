package planner

import (
	"time"

	"github.com/google/uuid"

	"flowstate/pkg/timegrid"
)

// chunkWindows subdivides free windows into alternating focus slots and
// break tasks according to the user's chunking settings. The cadence counter
// is shared across windows within a plan: every LongBreakCadence-th focus
// chunk is followed by a long break instead of a short one.
//
// With chunking disabled the windows pass through untouched and no breaks
// are emitted.
func chunkWindows(windows []Slot, settings Settings) ([]Slot, []Task) {
	if !settings.EnableChunking {
		return windows, nil
	}

	focusLen := timegrid.RoundMinutes(settings.FocusChunkMinutes)
	shortLen := timegrid.RoundMinutes(settings.ShortBreakMinutes)
	longLen := timegrid.RoundMinutes(settings.LongBreakMinutes)

	var slots []Slot
	var breaks []Task
	chunks := 0

	for _, w := range windows {
		cursor := w.Start
		for timegrid.Minutes(cursor, w.End) >= timegrid.StepMinutes {
			remaining := timegrid.FloorMinutes(timegrid.Minutes(cursor, w.End))

			focus := focusLen
			if remaining < focus {
				focus = remaining
			}
			slots = append(slots, Slot{Start: cursor, End: cursor.Add(time.Duration(focus) * time.Minute)})
			cursor = cursor.Add(time.Duration(focus) * time.Minute)
			chunks++

			remaining = timegrid.Minutes(cursor, w.End)
			if remaining < timegrid.StepMinutes {
				break
			}

			length := shortLen
			title := "Short Break"
			if chunks%settings.LongBreakCadence == 0 {
				length = longLen
				title = "Long Break"
			}
			if capped := timegrid.FloorMinutes(remaining); length > capped {
				length = capped
			}
			if length < timegrid.StepMinutes {
				// Remainder too small for a break; the gap is absorbed.
				break
			}
			end := cursor.Add(time.Duration(length) * time.Minute)
			breaks = append(breaks, newBreakTask(title, cursor, end, length))
			cursor = end
		}
	}
	return slots, breaks
}

func newBreakTask(title string, start, end time.Time, minutes int) Task {
	s, e := start, end
	return Task{
		ID:        "break-" + uuid.NewString(),
		Title:     title,
		Duration:  minutes,
		Priority:  PriorityLow,
		Status:    StatusTodo,
		ProjectID: BreakProjectID,
		Start:     &s,
		End:       &e,
		Fixed:     true,
	}
}
