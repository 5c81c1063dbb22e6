package planner

import (
	"reflect"
	"testing"
)

func TestResolveConflictsShiftsChain(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		scheduledTask("a", 60, 9*60, 10*60),
		scheduledTask("b", 60, 9*60+30, 10*60+30),
		scheduledTask("c", 60, 10*60+15, 11*60+15),
	}

	out := ResolveConflicts(tasks)

	assertInterval(t, out[0], mondayAt(9, 0), mondayAt(10, 0))
	assertInterval(t, out[1], mondayAt(10, 0), mondayAt(11, 0))
	assertInterval(t, out[2], mondayAt(11, 0), mondayAt(12, 0))
	for _, i := range []int{1, 2} {
		if !out[i].Fixed || out[i].Reason != "Auto-resolved conflict" {
			t.Fatalf("shifted task %s must be pinned with a reason: %+v", out[i].ID, out[i])
		}
	}
}

func TestResolveConflictsReachesFixedPoint(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		scheduledTask("a", 90, 9*60, 10*60+30),
		scheduledTask("b", 60, 9*60+15, 10*60+15),
		scheduledTask("c", 45, 9*60+30, 10*60+15),
	}

	once := ResolveConflicts(tasks)
	twice := ResolveConflicts(once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed the schedule:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	for i := 1; i < len(once); i++ {
		if once[i].Start.Before(*once[i-1].End) {
			t.Fatalf("overlap survived between %s and %s", once[i-1].ID, once[i].ID)
		}
	}
}

func TestResolveConflictsSkipsDoneAndBreaks(t *testing.T) {
	t.Parallel()
	done := scheduledTask("done", 60, 9*60, 10*60)
	done.Status = StatusDone
	br := scheduledTask("pause", 30, 9*60+30, 10*60)
	br.ProjectID = BreakProjectID
	live := scheduledTask("live", 60, 9*60+30, 10*60+30)

	out := ResolveConflicts([]Task{done, br, live})

	// Done tasks and breaks neither shift nor cause shifts.
	assertInterval(t, out[0], mondayAt(9, 0), mondayAt(10, 0))
	assertInterval(t, out[1], mondayAt(9, 30), mondayAt(10, 0))
	assertInterval(t, out[2], mondayAt(9, 30), mondayAt(10, 30))
	if out[2].Fixed {
		t.Fatal("task overlapping only excluded entries must stay put")
	}
}

func TestResolveConflictsNoOverlapIsNoOp(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		scheduledTask("a", 60, 9*60, 10*60),
		scheduledTask("b", 60, 10*60, 11*60),
	}

	out := ResolveConflicts(tasks)

	if !reflect.DeepEqual(tasks, out) {
		t.Fatalf("touch-free schedule changed: %+v", out)
	}
}
