// Package ramp fades a PWM duty cycle in software. The RP2 PWM slices have no
// fade hardware, so motor demos step the duty from a goroutine.
package ramp

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Sleep is a Tick that never cancels.
func Sleep(d time.Duration) bool {
	time.Sleep(d)
	return true
}

// UntilSignal returns a Tick that sleeps like Sleep but cancels as soon as
// stop delivers a value. The value is consumed.
func UntilSignal(stop <-chan struct{}) Tick {
	return func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return true
		case <-stop:
			return false
		}
	}
}

// Linear sets from immediately, then moves towards to in equal increments,
// one per interval, arriving at to after duration. It reports false if tick
// cancelled the ramp early. duration <= interval snaps straight to to.
func Linear[T constraints.Integer](from, to T, duration, interval time.Duration, tick Tick, set func(T)) bool {
	if interval <= 0 || duration <= interval {
		set(to)
		return true
	}
	steps := int64(duration / interval)
	diff := int64(to) - int64(from)
	set(from)
	for i := int64(1); i <= steps; i++ {
		if !tick(interval) {
			return false
		}
		set(T(int64(from) + diff*i/steps))
	}
	return true
}

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Duty converts a percentage into a PWM compare value for a counter top.
// Percentages above 100 are clamped.
func Duty(top uint32, percent uint8) uint32 {
	p := Clamp(percent, 0, 100)
	return uint32(uint64(top) * uint64(p) / 100)
}
