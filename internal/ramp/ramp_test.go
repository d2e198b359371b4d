package ramp

import (
	"testing"
	"time"
)

type recorder struct {
	levels []uint8
	ticks  []time.Duration
}

func (r *recorder) tick(d time.Duration) bool { r.ticks = append(r.ticks, d); return true }
func (r *recorder) set(v uint8)               { r.levels = append(r.levels, v) }

func TestLinearUp(t *testing.T) {
	var r recorder
	if !Linear[uint8](0, 100, 100*time.Millisecond, 10*time.Millisecond, r.tick, r.set) {
		t.Fatal("ramp cancelled")
	}
	want := []uint8{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if len(r.levels) != len(want) {
		t.Fatalf("levels = %v, want %v", r.levels, want)
	}
	for i := range want {
		if r.levels[i] != want[i] {
			t.Fatalf("levels = %v, want %v", r.levels, want)
		}
	}
	var total time.Duration
	for _, d := range r.ticks {
		total += d
	}
	if total != 100*time.Millisecond {
		t.Errorf("ramp waited %v, want 100ms", total)
	}
}

func TestLinearDownIsMonotonic(t *testing.T) {
	var r recorder
	Linear[uint8](95, 0, 5*time.Second, 10*time.Millisecond, r.tick, r.set)
	if r.levels[0] != 95 || r.levels[len(r.levels)-1] != 0 {
		t.Fatalf("endpoints = %d..%d, want 95..0", r.levels[0], r.levels[len(r.levels)-1])
	}
	for i := 1; i < len(r.levels); i++ {
		if r.levels[i] > r.levels[i-1] {
			t.Fatalf("level rose at step %d: %d -> %d", i, r.levels[i-1], r.levels[i])
		}
	}
	if len(r.ticks) != 500 {
		t.Errorf("%d ticks, want 500", len(r.ticks))
	}
}

func TestLinearCancel(t *testing.T) {
	var levels []uint8
	n := 0
	tick := func(time.Duration) bool { n++; return n < 3 }
	ok := Linear[uint8](0, 100, 100*time.Millisecond, 10*time.Millisecond, tick, func(v uint8) { levels = append(levels, v) })
	if ok {
		t.Fatal("expected cancellation")
	}
	if len(levels) != 3 || levels[2] != 20 {
		t.Errorf("levels = %v, want [0 10 20]", levels)
	}
}

func TestLinearSnap(t *testing.T) {
	var r recorder
	Linear[uint8](0, 80, 0, 10*time.Millisecond, r.tick, r.set)
	if len(r.levels) != 1 || r.levels[0] != 80 || len(r.ticks) != 0 {
		t.Errorf("levels = %v ticks = %v, want a single snap to 80", r.levels, r.ticks)
	}
}

func TestDuty(t *testing.T) {
	tests := []struct {
		top     uint32
		percent uint8
		want    uint32
	}{
		{top: 65535, percent: 0, want: 0},
		{top: 65535, percent: 100, want: 65535},
		{top: 1000, percent: 95, want: 950},
		{top: 1000, percent: 250, want: 1000},
	}
	for _, tt := range tests {
		if got := Duty(tt.top, tt.percent); got != tt.want {
			t.Errorf("Duty(%d, %d) = %d, want %d", tt.top, tt.percent, got, tt.want)
		}
	}
}

func TestUntilSignalStopsRamp(t *testing.T) {
	stop := make(chan struct{}, 1)
	var levels []uint8
	set := func(v uint8) {
		levels = append(levels, v)
		if v == 20 {
			stop <- struct{}{}
		}
	}
	if Linear[uint8](0, 100, 100*time.Millisecond, time.Millisecond, UntilSignal(stop), set) {
		t.Fatal("ramp ran to completion after stop")
	}
	if last := levels[len(levels)-1]; last != 20 {
		t.Errorf("last level = %d, want 20", last)
	}
	if len(stop) != 0 {
		t.Error("stop signal not consumed")
	}
}

func TestUntilSignalSleepsWithoutStop(t *testing.T) {
	tick := UntilSignal(make(chan struct{}))
	start := time.Now()
	if !tick(5 * time.Millisecond) {
		t.Fatal("tick cancelled without a stop signal")
	}
	if el := time.Since(start); el < 5*time.Millisecond {
		t.Errorf("tick returned after %v, want >= 5ms", el)
	}
}
