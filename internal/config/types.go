package config

import (
	"flowstate/internal/planner"
)

// Config is the on-disk configuration. JSON or YAML; unknown fields are
// rejected so typos surface at load time instead of being silently ignored.
type Config struct {
	Planner PlannerConfig `json:"planner"`
	Logging LoggingConfig `json:"logging"`

	// Storage controls the optional persistence layer.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Drift controls the background drift poller.
	Drift *DriftConfig `json:"drift,omitempty"`
}

// PlannerConfig mirrors planner.Settings with omitted fields falling back
// to defaults. Pointer fields distinguish "omitted" from an explicit zero.
type PlannerConfig struct {
	WorkStartHour *int  `json:"work_start_hour,omitempty"`
	WorkEndHour   *int  `json:"work_end_hour,omitempty"`
	ActiveDays    []int `json:"active_days,omitempty"`

	EnableChunking    *bool `json:"enable_chunking,omitempty"`
	FocusChunkMinutes int   `json:"focus_chunk_minutes,omitempty"`
	ShortBreakMinutes *int  `json:"short_break_minutes,omitempty"`
	LongBreakMinutes  *int  `json:"long_break_minutes,omitempty"`
	LongBreakCadence  int   `json:"long_break_cadence,omitempty"`

	DefaultTaskDuration   int  `json:"default_task_duration,omitempty"`
	PlanningBufferMinutes int  `json:"planning_buffer_minutes,omitempty"`
	AutoRescheduleOverdue bool `json:"auto_reschedule_overdue,omitempty"`
}

// Settings resolves the config block into planner settings, applying
// defaults for every omitted field.
func (c PlannerConfig) Settings() planner.Settings {
	s := planner.DefaultSettings()
	if c.WorkStartHour != nil {
		s.WorkStartHour = *c.WorkStartHour
	}
	if c.WorkEndHour != nil {
		s.WorkEndHour = *c.WorkEndHour
	}
	if c.ActiveDays != nil {
		s.ActiveDays = c.ActiveDays
	}
	if c.EnableChunking != nil {
		s.EnableChunking = *c.EnableChunking
	}
	if c.FocusChunkMinutes > 0 {
		s.FocusChunkMinutes = c.FocusChunkMinutes
	}
	if c.ShortBreakMinutes != nil {
		s.ShortBreakMinutes = *c.ShortBreakMinutes
	}
	if c.LongBreakMinutes != nil {
		s.LongBreakMinutes = *c.LongBreakMinutes
	}
	if c.LongBreakCadence > 0 {
		s.LongBreakCadence = c.LongBreakCadence
	}
	if c.DefaultTaskDuration > 0 {
		s.DefaultTaskDuration = c.DefaultTaskDuration
	}
	s.PlanningBufferMinutes = c.PlanningBufferMinutes
	s.AutoRescheduleOverdue = c.AutoRescheduleOverdue
	return s
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the persistence layer.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./flowstate_store" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// DriftConfig controls the background drift poller.
//
// Interval is a Go duration string; it defaults to "1m". ReplanPerHour caps
// how often an overdue schedule may trigger an automatic replan.
type DriftConfig struct {
	Enabled       bool   `json:"enabled"`
	Interval      string `json:"interval,omitempty"`
	ReplanPerHour int    `json:"replan_per_hour,omitempty"`
}

// Validate resolves and checks the planner block plus the ancillary
// sections. Used as the manager's validation hook before a reload commits.
func (c *Config) Validate() error {
	if err := c.Planner.Settings().Validate(); err != nil {
		return err
	}
	if c.Drift != nil {
		if _, err := ParseDurationField("drift.interval", c.Drift.Interval); err != nil {
			return err
		}
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}
