package timegrid

import (
	"testing"
	"time"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 3, 2, h, m, s, 0, time.UTC)
}

func TestFloorCeil(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		in    time.Time
		floor time.Time
		ceil  time.Time
	}{
		{name: "aligned", in: at(9, 0, 0), floor: at(9, 0, 0), ceil: at(9, 0, 0)},
		{name: "aligned quarter", in: at(9, 45, 0), floor: at(9, 45, 0), ceil: at(9, 45, 0)},
		{name: "mid interval", in: at(9, 7, 0), floor: at(9, 0, 0), ceil: at(9, 15, 0)},
		{name: "just past boundary", in: at(9, 16, 0), floor: at(9, 15, 0), ceil: at(9, 30, 0)},
		{name: "seconds on boundary", in: at(9, 15, 30), floor: at(9, 15, 0), ceil: at(9, 30, 0)},
		{name: "hour rollover", in: at(9, 59, 0), floor: at(9, 45, 0), ceil: at(10, 0, 0)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Floor(tt.in); !got.Equal(tt.floor) {
				t.Fatalf("Floor(%v) = %v, want %v", tt.in, got, tt.floor)
			}
			if got := Ceil(tt.in); !got.Equal(tt.ceil) {
				t.Fatalf("Ceil(%v) = %v, want %v", tt.in, got, tt.ceil)
			}
		})
	}
}

func TestRoundMinutes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want int
	}{
		{0, 15}, {1, 15}, {7, 15}, {8, 15}, {15, 15},
		{22, 15}, {23, 30}, {30, 30}, {37, 30}, {38, 45}, {90, 90},
	}
	for _, tt := range tests {
		if got := RoundMinutes(tt.in); got != tt.want {
			t.Fatalf("RoundMinutes(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFloorMinutes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want int
	}{{-5, 0}, {0, 0}, {14, 0}, {15, 15}, {29, 15}, {61, 60}}
	for _, tt := range tests {
		if got := FloorMinutes(tt.in); got != tt.want {
			t.Fatalf("FloorMinutes(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "disjoint", a: iv(9, 10), b: iv(11, 12), want: false},
		{name: "touching endpoints", a: iv(9, 10), b: iv(10, 11), want: false},
		{name: "nested", a: iv(9, 12), b: iv(10, 11), want: true},
		{name: "partial", a: iv(9, 11), b: iv(10, 12), want: true},
		{name: "identical", a: iv(9, 10), b: iv(9, 10), want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.a.s, tt.a.e, tt.b.s, tt.b.e)
			if got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			// symmetric
			if got := Overlaps(tt.b.s, tt.b.e, tt.a.s, tt.a.e); got != tt.want {
				t.Fatalf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

type Interval struct{ s, e time.Time }

func iv(sh, eh int) Interval {
	return Interval{s: at(sh, 0, 0), e: at(eh, 0, 0)}
}

func TestMinutes(t *testing.T) {
	t.Parallel()
	if got := Minutes(at(9, 0, 0), at(10, 30, 0)); got != 90 {
		t.Fatalf("Minutes = %d, want 90", got)
	}
	if got := Minutes(at(10, 0, 0), at(9, 0, 0)); got != -60 {
		t.Fatalf("Minutes (reversed) = %d, want -60", got)
	}
}

func TestAligned(t *testing.T) {
	t.Parallel()
	if !Aligned(at(9, 30, 0)) {
		t.Fatal("expected 09:30 to be aligned")
	}
	if Aligned(at(9, 31, 0)) {
		t.Fatal("expected 09:31 to not be aligned")
	}
	if Aligned(at(9, 30, 10)) {
		t.Fatal("expected 09:30:10 to not be aligned")
	}
}
