package planner

import (
	"strings"
	"testing"
	"time"

	"flowstate/pkg/timegrid"
)

// monday is a fixed reference start: Monday 2026-03-02 09:00 UTC.
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func dayAt(dayOffset, h, m int) time.Time {
	return time.Date(2026, 3, 2+dayOffset, h, m, 0, 0, time.UTC)
}

func mondayAt(h, m int) time.Time { return dayAt(0, h, m) }

// plainSettings: work 09-17, every day active, chunking off.
func plainSettings() Settings {
	return Settings{
		WorkStartHour: 9,
		WorkEndHour:   17,
		ActiveDays:    []int{0, 1, 2, 3, 4, 5, 6},
	}
}

func task(id string, duration int, priority Priority) Task {
	return Task{ID: id, Title: id, Duration: duration, Priority: priority, Status: StatusTodo}
}

func fixedEvent(id string, start, end time.Time) Task {
	s, e := start, end
	return Task{
		ID: id, Title: id, Duration: timegrid.Minutes(start, end),
		Priority: PriorityMedium, Status: StatusTodo,
		Start: &s, End: &e, Fixed: true,
	}
}

func mustPlan(t *testing.T, tasks []Task, now time.Time, settings Settings) *PlanResult {
	t.Helper()
	plan, err := Plan(tasks, now, settings)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	return plan
}

func findScheduled(t *testing.T, plan *PlanResult, id string) Task {
	t.Helper()
	for _, s := range plan.Scheduled {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("task %s not in scheduled output", id)
	return Task{}
}

func assertInterval(t *testing.T, got Task, start, end time.Time) {
	t.Helper()
	if !got.Scheduled() {
		t.Fatalf("task %s has no scheduled interval", got.ID)
	}
	if !got.Start.Equal(start) || !got.End.Equal(end) {
		t.Fatalf("task %s scheduled %v-%v, want %v-%v", got.ID, got.Start, got.End, start, end)
	}
}

func TestPlanBasicFit(t *testing.T) {
	t.Parallel()
	tasks := []Task{task("a", 60, PriorityHigh), task("b", 30, PriorityMedium)}

	plan := mustPlan(t, tasks, monday, plainSettings())

	if len(plan.Unscheduled) != 0 {
		t.Fatalf("unexpected unscheduled: %+v", plan.Unscheduled)
	}
	assertInterval(t, findScheduled(t, plan, "a"), mondayAt(9, 0), mondayAt(10, 0))
	assertInterval(t, findScheduled(t, plan, "b"), mondayAt(10, 0), mondayAt(10, 30))
}

func TestPlanSplitAcrossDays(t *testing.T) {
	t.Parallel()
	settings := plainSettings()
	settings.WorkEndHour = 12

	plan := mustPlan(t, []Task{task("c", 240, PriorityMedium)}, monday, settings)

	if len(plan.Scheduled) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(plan.Scheduled))
	}
	p1, p2 := plan.Scheduled[0], plan.Scheduled[1]
	assertInterval(t, p1, mondayAt(9, 0), mondayAt(12, 0))
	assertInterval(t, p2, dayAt(1, 9, 0), dayAt(1, 10, 0))
	if p1.PartIndex != 1 || p2.PartIndex != 2 {
		t.Fatalf("part indices = %d, %d, want 1, 2", p1.PartIndex, p2.PartIndex)
	}
	if p1.OriginalTaskID != "c" || p2.OriginalTaskID != "c" {
		t.Fatalf("parts must reference original task id, got %q and %q", p1.OriginalTaskID, p2.OriginalTaskID)
	}
	if p1.ID != "c-part-1" || p2.ID != "c-part-2" {
		t.Fatalf("part ids = %q, %q", p1.ID, p2.ID)
	}
	if p1.Duration+p2.Duration != 240 {
		t.Fatalf("split does not conserve duration: %d + %d", p1.Duration, p2.Duration)
	}
	if !strings.HasSuffix(p1.Title, "(1)") || !strings.HasSuffix(p2.Title, "(2)") {
		t.Fatalf("part titles = %q, %q", p1.Title, p2.Title)
	}
}

func TestPlanDependencyOrdering(t *testing.T) {
	t.Parallel()
	b := task("b", 30, PriorityMedium)
	b.DependsOn = []string{"a"}
	// b outranks a by priority; the dependency must still force a first.
	b.Priority = PriorityHigh

	plan := mustPlan(t, []Task{b, task("a", 60, PriorityLow)}, monday, plainSettings())

	assertInterval(t, findScheduled(t, plan, "a"), mondayAt(9, 0), mondayAt(10, 0))
	assertInterval(t, findScheduled(t, plan, "b"), mondayAt(10, 0), mondayAt(10, 30))
}

func TestPlanDeadlineMiss(t *testing.T) {
	t.Parallel()
	deadline := mondayAt(0, 0)
	c := task("c", 600, PriorityHigh)
	c.Deadline = &deadline

	plan := mustPlan(t, []Task{c}, monday, plainSettings())

	if len(plan.Scheduled) != 0 {
		t.Fatalf("expected no placement, got %+v", plan.Scheduled)
	}
	if len(plan.Unscheduled) != 1 {
		t.Fatalf("expected 1 unscheduled, got %d", len(plan.Unscheduled))
	}
	reason := plan.Unscheduled[0].Reason
	if !strings.Contains(reason, "deadline/window") {
		t.Fatalf("reason %q should mention the deadline/window", reason)
	}
}

func TestPlanAroundFixedEvent(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		fixedEvent("meeting", mondayAt(10, 0), mondayAt(11, 0)),
		task("a", 120, PriorityMedium),
	}

	plan := mustPlan(t, tasks, monday, plainSettings())

	if len(plan.Scheduled) != 2 {
		t.Fatalf("expected a split around the event, got %d parts", len(plan.Scheduled))
	}
	assertInterval(t, plan.Scheduled[0], mondayAt(9, 0), mondayAt(10, 0))
	assertInterval(t, plan.Scheduled[1], mondayAt(11, 0), mondayAt(12, 0))
}

func TestPlanRespectsWindow(t *testing.T) {
	t.Parallel()
	earliest := mondayAt(13, 0)
	latest := mondayAt(16, 0)
	a := task("a", 60, PriorityMedium)
	a.EarliestStart = &earliest
	a.LatestEnd = &latest

	plan := mustPlan(t, []Task{a}, monday, plainSettings())

	got := findScheduled(t, plan, "a")
	if got.Start.Before(earliest) {
		t.Fatalf("start %v violates earliest %v", got.Start, earliest)
	}
	if got.End.After(latest) {
		t.Fatalf("end %v violates latest %v", got.End, latest)
	}
}

func TestPlanDependencyCycleBlocks(t *testing.T) {
	t.Parallel()
	a := task("a", 30, PriorityMedium)
	a.DependsOn = []string{"b"}
	b := task("b", 30, PriorityMedium)
	b.DependsOn = []string{"a"}

	plan := mustPlan(t, []Task{a, b}, monday, plainSettings())

	if len(plan.Scheduled) != 0 {
		t.Fatalf("cycle must block placement, got %+v", plan.Scheduled)
	}
	if len(plan.Unscheduled) != 2 {
		t.Fatalf("expected both tasks unscheduled, got %d", len(plan.Unscheduled))
	}
	for _, u := range plan.Unscheduled {
		if !strings.Contains(u.Reason, "dependencies") {
			t.Fatalf("reason %q should mention dependencies", u.Reason)
		}
	}
}

func TestPlanDanglingDependencyIsSatisfied(t *testing.T) {
	t.Parallel()
	a := task("a", 30, PriorityMedium)
	a.DependsOn = []string{"gone"}

	plan := mustPlan(t, []Task{a}, monday, plainSettings())
	if len(plan.Unscheduled) != 0 {
		t.Fatalf("dangling dependency must not block: %+v", plan.Unscheduled)
	}
}

func TestPlanRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		tasks    []Task
		settings Settings
	}{
		{
			name:     "duration not multiple of grid",
			tasks:    []Task{task("a", 20, PriorityLow)},
			settings: plainSettings(),
		},
		{
			name:     "zero duration",
			tasks:    []Task{task("a", 0, PriorityLow)},
			settings: plainSettings(),
		},
		{
			name:     "start after end",
			tasks:    []Task{fixedEvent("e", mondayAt(11, 0), mondayAt(11, 0))},
			settings: plainSettings(),
		},
		{
			name:  "end hour before start hour",
			tasks: nil,
			settings: Settings{
				WorkStartHour: 17, WorkEndHour: 9, ActiveDays: []int{1},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Plan(tt.tasks, monday, tt.settings); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPlanNeverMutatesInput(t *testing.T) {
	t.Parallel()
	a := task("a", 240, PriorityHigh)
	tasks := []Task{a, fixedEvent("e", mondayAt(10, 0), mondayAt(11, 0))}

	_ = mustPlan(t, tasks, monday, plainSettings())

	if tasks[0].Start != nil || tasks[0].End != nil || tasks[0].PartIndex != 0 {
		t.Fatalf("input task mutated: %+v", tasks[0])
	}
}

func TestPlanOutputInvariants(t *testing.T) {
	t.Parallel()
	settings := plainSettings()
	settings.EnableChunking = true
	settings.FocusChunkMinutes = 60
	settings.ShortBreakMinutes = 15
	settings.LongBreakMinutes = 30
	settings.LongBreakCadence = 3

	deadline := dayAt(2, 0, 0)
	d := task("d", 90, PriorityHigh)
	d.Deadline = &deadline
	e := task("e", 45, PriorityLow)
	e.Energy = EnergyLow
	f := task("f", 180, PriorityMedium)
	f.DependsOn = []string{"d"}

	tasks := []Task{
		d, e, f,
		fixedEvent("standup", mondayAt(9, 30), mondayAt(10, 0)),
		fixedEvent("lunch", mondayAt(12, 0), mondayAt(13, 0)),
	}

	plan := mustPlan(t, tasks, monday, settings)

	var all []Task
	all = append(all, plan.Scheduled...)
	all = append(all, plan.Breaks...)
	all = append(all, fixedEvent("standup", mondayAt(9, 30), mondayAt(10, 0)))
	all = append(all, fixedEvent("lunch", mondayAt(12, 0), mondayAt(13, 0)))

	// Non-overlap across scheduled, breaks and fixed events.
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if timegrid.Overlaps(*all[i].Start, *all[i].End, *all[j].Start, *all[j].End) {
				t.Fatalf("overlap between %s (%v-%v) and %s (%v-%v)",
					all[i].ID, all[i].Start, all[i].End, all[j].ID, all[j].Start, all[j].End)
			}
		}
	}

	// Grid alignment and duration consistency.
	for _, s := range all {
		if !timegrid.Aligned(*s.Start) || !timegrid.Aligned(*s.End) {
			t.Fatalf("%s not grid aligned: %v-%v", s.ID, s.Start, s.End)
		}
		if got := timegrid.Minutes(*s.Start, *s.End); got != s.Duration || got <= 0 || got%timegrid.StepMinutes != 0 {
			t.Fatalf("%s duration mismatch: interval %d, field %d", s.ID, got, s.Duration)
		}
	}

	// Work-hours containment.
	for _, s := range plan.Scheduled {
		if s.Start.Hour() < settings.WorkStartHour || s.End.Hour() > settings.WorkEndHour ||
			(s.End.Hour() == settings.WorkEndHour && s.End.Minute() > 0) {
			t.Fatalf("%s outside work hours: %v-%v", s.ID, s.Start, s.End)
		}
	}

	// Dependency respect: every placed part of f starts after d's last end.
	var dEnd time.Time
	for _, s := range plan.Scheduled {
		if s.ID == "d" || s.OriginalTaskID == "d" {
			if s.End.After(dEnd) {
				dEnd = *s.End
			}
		}
	}
	for _, s := range plan.Scheduled {
		if s.ID == "f" || s.OriginalTaskID == "f" {
			if s.Start.Before(dEnd) {
				t.Fatalf("f part at %v starts before dependency d completes at %v", s.Start, dEnd)
			}
		}
	}

	// Split conservation.
	sums := map[string]int{}
	for _, s := range plan.Scheduled {
		key := s.ID
		if s.OriginalTaskID != "" {
			key = s.OriginalTaskID
		}
		sums[key] += s.Duration
	}
	for _, in := range []Task{d, e, f} {
		if len(plan.Unscheduled) > 0 {
			break
		}
		if sums[in.ID] != in.Duration {
			t.Fatalf("task %s placed %d minutes, want %d", in.ID, sums[in.ID], in.Duration)
		}
	}

	// Output ordering: by start, then part index.
	for i := 1; i < len(plan.Scheduled); i++ {
		prev, cur := plan.Scheduled[i-1], plan.Scheduled[i]
		if cur.Start.Before(*prev.Start) {
			t.Fatalf("scheduled output not ordered by start at index %d", i)
		}
		if cur.Start.Equal(*prev.Start) && cur.PartIndex < prev.PartIndex {
			t.Fatalf("equal starts not ordered by part index at index %d", i)
		}
	}
}

func TestPlanWarnsWhenTodosPushProjects(t *testing.T) {
	t.Parallel()
	deadline := mondayAt(0, 0) // project due today
	project := task("proj", 120, PriorityMedium)
	project.Deadline = &deadline

	urgent := task("todo", 180, PriorityHigh)
	urgent.TodoList = true
	todoDeadline := mondayAt(0, 0)
	urgent.Deadline = &todoDeadline

	plan := mustPlan(t, []Task{project, urgent}, monday, plainSettings())

	// The urgent to-do claims the morning; the project slips past its
	// deadline moment but still fits before end of day.
	assertInterval(t, findScheduled(t, plan, "todo"), mondayAt(9, 0), mondayAt(12, 0))
	assertInterval(t, findScheduled(t, plan, "proj"), mondayAt(12, 0), mondayAt(14, 0))

	if len(plan.Warnings) == 0 {
		t.Fatal("expected a pushed-past-deadline warning")
	}
	if !strings.Contains(plan.Warnings[0], "past deadline") {
		t.Fatalf("unexpected warning %q", plan.Warnings[0])
	}
}

func TestPlanMergesSplitParts(t *testing.T) {
	t.Parallel()
	s1, e1 := mondayAt(9, 0), mondayAt(10, 0)
	s2, e2 := mondayAt(11, 0), mondayAt(12, 0)
	parts := []Task{
		{ID: "c-part-1", Title: "c (1)", Duration: 60, Priority: PriorityMedium, Status: StatusTodo,
			OriginalTaskID: "c", PartIndex: 1, TotalParts: 2, Start: &s1, End: &e1},
		{ID: "c-part-2", Title: "c (2)", Duration: 60, Priority: PriorityMedium, Status: StatusTodo,
			OriginalTaskID: "c", PartIndex: 2, TotalParts: 2, Start: &s2, End: &e2},
	}

	plan := mustPlan(t, parts, monday, plainSettings())

	got := findScheduled(t, plan, "c")
	if got.Duration != 120 {
		t.Fatalf("merged duration = %d, want 120", got.Duration)
	}
	if got.Title != "c" {
		t.Fatalf("merged title = %q, want %q", got.Title, "c")
	}
}
