package storage

import (
	"context"
	"encoding/json"
	"time"

	"flowstate/internal/planner"
)

// Well-known blob keys. The five host-state keys plus the last plan
// snapshot. Moments inside the blobs are ISO-8601 strings, durations are
// integer minutes.
const (
	KeyTasks    = "tasks"
	KeyProjects = "projects"
	KeySettings = "settings"
	KeyNotes    = "notes"
	KeyStats    = "stats"
	KeyPlan     = "plan"
)

// Project is host-side grouping metadata; the planner only ever sees the
// project identifier on a task.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Stats is the user-stats blob. Opaque to the planner; the shape is fixed
// for interop with hosts that track it.
type Stats struct {
	TasksCompleted  int        `json:"tasks_completed"`
	MinutesFocused  int        `json:"minutes_focused"`
	CurrentStreak   int        `json:"current_streak"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}

func getJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func putJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.Put(ctx, key, b)
}

// LoadTasks returns the stored task set, or an empty slice when the blob
// does not exist yet.
func LoadTasks(ctx context.Context, s Store) ([]planner.Task, error) {
	var tasks []planner.Task
	if _, err := getJSON(ctx, s, KeyTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func SaveTasks(ctx context.Context, s Store, tasks []planner.Task) error {
	return putJSON(ctx, s, KeyTasks, tasks)
}

func LoadProjects(ctx context.Context, s Store) ([]Project, error) {
	var projects []Project
	if _, err := getJSON(ctx, s, KeyProjects, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func SaveProjects(ctx context.Context, s Store, projects []Project) error {
	return putJSON(ctx, s, KeyProjects, projects)
}

// LoadSettings returns the stored settings, falling back to defaults when
// none are stored yet.
func LoadSettings(ctx context.Context, s Store) (planner.Settings, error) {
	settings := planner.DefaultSettings()
	if _, err := getJSON(ctx, s, KeySettings, &settings); err != nil {
		return planner.Settings{}, err
	}
	return settings, nil
}

func SaveSettings(ctx context.Context, s Store, settings planner.Settings) error {
	return putJSON(ctx, s, KeySettings, settings)
}

func LoadNotes(ctx context.Context, s Store) (string, error) {
	var notes string
	if _, err := getJSON(ctx, s, KeyNotes, &notes); err != nil {
		return "", err
	}
	return notes, nil
}

func SaveNotes(ctx context.Context, s Store, notes string) error {
	return putJSON(ctx, s, KeyNotes, notes)
}

func LoadStats(ctx context.Context, s Store) (Stats, error) {
	var stats Stats
	if _, err := getJSON(ctx, s, KeyStats, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func SaveStats(ctx context.Context, s Store, stats Stats) error {
	return putJSON(ctx, s, KeyStats, stats)
}

func LoadPlan(ctx context.Context, s Store) (*planner.PlanResult, bool, error) {
	var plan planner.PlanResult
	ok, err := getJSON(ctx, s, KeyPlan, &plan)
	if err != nil || !ok {
		return nil, false, err
	}
	return &plan, true, nil
}

func SavePlan(ctx context.Context, s Store, plan *planner.PlanResult) error {
	return putJSON(ctx, s, KeyPlan, plan)
}
