package planner

import (
	"encoding/json"
	"fmt"
	"time"

	"flowstate/pkg/timegrid"
)

// HorizonDays is how far ahead the availability engine looks for free time.
const HorizonDays = 180

// BreakProjectID marks synthesized break tasks so downstream components can
// exclude them from workload and conflict accounting.
const BreakProjectID = "system-break"

// Priority of a task. Higher values outrank lower ones.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// weight is the ranker's base multiplier: High=3, Medium=2, Low=1.
func (p Priority) weight() int { return int(p) }

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) MarshalJSON() ([]byte, error) {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return json.Marshal(p.String())
	}
	return nil, fmt.Errorf("invalid priority %d", int(p))
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "High":
		*p = PriorityHigh
	case "Medium":
		*p = PriorityMedium
	case "Low":
		*p = PriorityLow
	default:
		return fmt.Errorf("invalid priority %q", s)
	}
	return nil
}

// Status of a task.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return json.Marshal(s.String())
	}
	return nil, fmt.Errorf("invalid status %d", int(s))
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "To Do":
		*s = StatusTodo
	case "In Progress":
		*s = StatusInProgress
	case "Done":
		*s = StatusDone
	default:
		return fmt.Errorf("invalid status %q", v)
	}
	return nil
}

// Energy is an optional tag describing when a task is best tackled.
// The zero value means untagged.
type Energy int

const (
	EnergyNone Energy = iota
	EnergyLow
	EnergyMedium
	EnergyHigh
)

func (e Energy) String() string {
	switch e {
	case EnergyNone:
		return ""
	case EnergyLow:
		return "Low"
	case EnergyMedium:
		return "Medium"
	case EnergyHigh:
		return "High"
	}
	return fmt.Sprintf("Energy(%d)", int(e))
}

func (e Energy) MarshalJSON() ([]byte, error) {
	if e == EnergyNone {
		return json.Marshal("")
	}
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return json.Marshal(e.String())
	}
	return nil, fmt.Errorf("invalid energy %d", int(e))
}

func (e *Energy) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "":
		*e = EnergyNone
	case "Low":
		*e = EnergyLow
	case "Medium":
		*e = EnergyMedium
	case "High":
		*e = EnergyHigh
	default:
		return fmt.Errorf("invalid energy %q", s)
	}
	return nil
}

// Task is the scheduling unit. The planner treats inputs as read-only and
// returns freshly allocated tasks; split parts reference their origin via
// OriginalTaskID so the host can collapse them on later passes.
type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration int      `json:"duration"` // minutes, positive multiple of 15
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	ProjectID string     `json:"project_id,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"` // calendar date, end of day

	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
	Fixed bool       `json:"is_fixed,omitempty"`

	DependsOn []string `json:"dependencies,omitempty"`

	Energy        Energy     `json:"energy,omitempty"`
	EarliestStart *time.Time `json:"earliest_start,omitempty"`
	LatestEnd     *time.Time `json:"latest_end,omitempty"`

	TodoList bool `json:"is_todo_list,omitempty"`

	OriginalTaskID string `json:"original_task_id,omitempty"`
	PartIndex      int    `json:"part_index,omitempty"`
	TotalParts     int    `json:"total_parts,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// IsBreak reports whether t is a synthesized break task.
func (t Task) IsBreak() bool { return t.ProjectID == BreakProjectID }

// Scheduled reports whether t carries both scheduled endpoints.
func (t Task) Scheduled() bool { return t.Start != nil && t.End != nil }

// DeadlineEnd returns the end-of-day moment for the task's deadline.
// Deadlines are calendar dates; the half-open interval end is the following
// midnight in the deadline's location.
func (t Task) DeadlineEnd() time.Time {
	d := *t.Deadline
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location()).AddDate(0, 0, 1)
}

// Slot is a free interval on the grid. Availability output slots never
// overlap and are always at least one grid step long.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DurationMinutes is End minus Start in whole minutes.
func (s Slot) DurationMinutes() int { return timegrid.Minutes(s.Start, s.End) }

// Settings is the user's planning configuration. See Validate for the
// accepted ranges.
type Settings struct {
	WorkStartHour int   `json:"work_start_hour"`
	WorkEndHour   int   `json:"work_end_hour"`
	ActiveDays    []int `json:"active_days"` // 0=Sunday .. 6=Saturday

	EnableChunking    bool `json:"enable_chunking"`
	FocusChunkMinutes int  `json:"focus_chunk_minutes"`
	ShortBreakMinutes int  `json:"short_break_minutes"`
	LongBreakMinutes  int  `json:"long_break_minutes"`
	LongBreakCadence  int  `json:"long_break_cadence"` // long break after every N focus chunks

	DefaultTaskDuration   int  `json:"default_task_duration"`
	PlanningBufferMinutes int  `json:"planning_buffer_minutes"`
	AutoRescheduleOverdue bool `json:"auto_reschedule_overdue"`
}

// DefaultSettings returns the out-of-the-box planning configuration.
func DefaultSettings() Settings {
	return Settings{
		WorkStartHour:       9,
		WorkEndHour:         17,
		ActiveDays:          []int{1, 2, 3, 4, 5},
		EnableChunking:      true,
		FocusChunkMinutes:   90,
		ShortBreakMinutes:   15,
		LongBreakMinutes:    30,
		LongBreakCadence:    4,
		DefaultTaskDuration: 30,
	}
}

func (s Settings) activeDaySet() map[time.Weekday]bool {
	m := make(map[time.Weekday]bool, len(s.ActiveDays))
	for _, d := range s.ActiveDays {
		m[time.Weekday(d)] = true
	}
	return m
}

// Unscheduled pairs a task the placer could not fit with a human-readable
// reason.
type Unscheduled struct {
	Task   Task   `json:"task"`
	Reason string `json:"reason"`
}

// PlanResult is the output of a full placement pass.
type PlanResult struct {
	Scheduled   []Task        `json:"scheduled"`
	Breaks      []Task        `json:"breaks"`
	Unscheduled []Unscheduled `json:"unscheduled"`
	Warnings    []string      `json:"warnings,omitempty"`
}
