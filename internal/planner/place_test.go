package planner

import (
	"strings"
	"testing"
)

func TestEnergyScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		energy Energy
		hour   int
		want   int
	}{
		{EnergyHigh, 9, 3},
		{EnergyHigh, 12, 2},
		{EnergyHigh, 16, 1},
		{EnergyMedium, 13, 3},
		{EnergyMedium, 9, 2},
		{EnergyMedium, 7, 1},
		{EnergyLow, 16, 3},
		{EnergyLow, 13, 2},
		{EnergyLow, 9, 1},
		{EnergyNone, 9, 0},
	}
	for _, tt := range tests {
		if got := energyScore(tt.energy, tt.hour); got != tt.want {
			t.Fatalf("energyScore(%v, %d) = %d, want %d", tt.energy, tt.hour, got, tt.want)
		}
	}
}

func TestPlanLowEnergyPrefersAfternoon(t *testing.T) {
	t.Parallel()
	chill := task("chill", 60, PriorityMedium)
	chill.Energy = EnergyLow
	// The fixed block splits the day so an afternoon slot exists.
	tasks := []Task{chill, fixedEvent("block", mondayAt(12, 0), mondayAt(15, 0))}

	plan := mustPlan(t, tasks, monday, plainSettings())

	got := findScheduled(t, plan, "chill")
	assertInterval(t, got, mondayAt(15, 0), mondayAt(16, 0))
	if !strings.Contains(got.Reason, "low energy") {
		t.Fatalf("reason %q should mention the energy match", got.Reason)
	}
}

func TestPlanHighEnergyPrefersMorning(t *testing.T) {
	t.Parallel()
	deep := task("deep", 60, PriorityMedium)
	deep.Energy = EnergyHigh
	tasks := []Task{deep, fixedEvent("block", mondayAt(12, 0), mondayAt(15, 0))}

	plan := mustPlan(t, tasks, monday, plainSettings())

	assertInterval(t, findScheduled(t, plan, "deep"), mondayAt(9, 0), mondayAt(10, 0))
}

func TestPlanEnergyFallsBackWhenNoGoodHours(t *testing.T) {
	t.Parallel()
	settings := plainSettings()
	settings.WorkEndHour = 12 // mornings only

	chill := task("chill", 60, PriorityMedium)
	chill.Energy = EnergyLow

	plan := mustPlan(t, []Task{chill}, monday, settings)

	// No afternoon exists; the task still lands in the best hour on offer.
	assertInterval(t, findScheduled(t, plan, "chill"), mondayAt(9, 0), mondayAt(10, 0))
}
