package planner

import (
	"fmt"

	"flowstate/pkg/timegrid"
)

// Validate checks the settings invariants. A settings value that fails here
// rejects the whole planning pass.
func (s Settings) Validate() error {
	if s.WorkStartHour < 0 || s.WorkStartHour > 23 {
		return fmt.Errorf("work_start_hour %d out of range 0-23", s.WorkStartHour)
	}
	if s.WorkEndHour < 0 || s.WorkEndHour > 23 {
		return fmt.Errorf("work_end_hour %d out of range 0-23", s.WorkEndHour)
	}
	if s.WorkEndHour <= s.WorkStartHour {
		return fmt.Errorf("work_end_hour %d must exceed work_start_hour %d", s.WorkEndHour, s.WorkStartHour)
	}
	for _, d := range s.ActiveDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("active day %d out of range 0-6", d)
		}
	}
	if s.EnableChunking {
		if s.FocusChunkMinutes < timegrid.StepMinutes || s.FocusChunkMinutes%timegrid.StepMinutes != 0 {
			return fmt.Errorf("focus_chunk_minutes %d must be a positive multiple of %d", s.FocusChunkMinutes, timegrid.StepMinutes)
		}
		if s.ShortBreakMinutes < 0 || s.ShortBreakMinutes%timegrid.StepMinutes != 0 {
			return fmt.Errorf("short_break_minutes %d must be a non-negative multiple of %d", s.ShortBreakMinutes, timegrid.StepMinutes)
		}
		if s.LongBreakMinutes < 0 || s.LongBreakMinutes%timegrid.StepMinutes != 0 {
			return fmt.Errorf("long_break_minutes %d must be a non-negative multiple of %d", s.LongBreakMinutes, timegrid.StepMinutes)
		}
		if s.LongBreakCadence < 2 {
			return fmt.Errorf("long_break_cadence %d must be >= 2", s.LongBreakCadence)
		}
	}
	if s.DefaultTaskDuration != 0 && s.DefaultTaskDuration < timegrid.StepMinutes {
		return fmt.Errorf("default_task_duration %d must be >= %d", s.DefaultTaskDuration, timegrid.StepMinutes)
	}
	if s.PlanningBufferMinutes < 0 {
		return fmt.Errorf("planning_buffer_minutes %d must be >= 0", s.PlanningBufferMinutes)
	}
	return nil
}

// validateTask checks the per-task input invariants.
func validateTask(t Task) error {
	if t.ID == "" {
		return fmt.Errorf("task with empty id")
	}
	if t.Duration < timegrid.StepMinutes || t.Duration%timegrid.StepMinutes != 0 {
		return fmt.Errorf("task %s: duration %d must be a positive multiple of %d", t.ID, t.Duration, timegrid.StepMinutes)
	}
	if t.Start != nil && t.End != nil && !t.Start.Before(*t.End) {
		return fmt.Errorf("task %s: scheduled start %s is not before end %s", t.ID, t.Start.Format("2006-01-02 15:04"), t.End.Format("2006-01-02 15:04"))
	}
	if t.EarliestStart != nil && t.LatestEnd != nil && t.EarliestStart.After(*t.LatestEnd) {
		return fmt.Errorf("task %s: earliest_start is after latest_end", t.ID)
	}
	return nil
}

// validateInput rejects the pass when any settings or task invariant is
// violated. Individual placement failures never come through here; they are
// reported in the unscheduled list instead.
func validateInput(tasks []Task, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	for _, t := range tasks {
		if err := validateTask(t); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
	}
	return nil
}
