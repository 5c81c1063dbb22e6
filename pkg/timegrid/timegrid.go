// Package timegrid provides 15-minute grid arithmetic for the planner.
//
// All scheduling math in the planning core happens on this grid: moments are
// floored/ceiled to quarter-hour boundaries and durations are integer
// minutes that are multiples of the step.
package timegrid

import "time"

// StepMinutes is the grid resolution. Compile-time constant by design.
const StepMinutes = 15

// Step is StepMinutes as a time.Duration.
const Step = StepMinutes * time.Minute

// Floor rounds t back to the previous grid boundary, zeroing seconds and
// sub-second fields. Identity when t is already aligned.
func Floor(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	// Real-world UTC offsets are multiples of 15 minutes, so the wall-clock
	// minute is grid-stable across timezones.
	return t.Add(-time.Duration(t.Minute()%StepMinutes) * time.Minute)
}

// Ceil rounds t forward to the next grid boundary. Identity when t is
// already aligned (including zero seconds).
func Ceil(t time.Time) time.Time {
	f := Floor(t)
	if t.After(f) {
		return f.Add(Step)
	}
	return f
}

// Aligned reports whether t sits exactly on a grid boundary.
func Aligned(t time.Time) bool {
	return Floor(t).Equal(t)
}

// RoundMinutes rounds m to the nearest multiple of the step, with a floor of
// one step. 22 -> 15, 23 -> 30, 0 -> 15.
func RoundMinutes(m int) int {
	r := (m + StepMinutes/2) / StepMinutes * StepMinutes
	if r < StepMinutes {
		return StepMinutes
	}
	return r
}

// FloorMinutes rounds m down to a multiple of the step.
func FloorMinutes(m int) int {
	if m < 0 {
		return 0
	}
	return m - m%StepMinutes
}

// Minutes returns the whole minutes from a to b. Negative when b precedes a.
func Minutes(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect with strictly positive measure.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
