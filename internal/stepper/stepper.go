// Package stepper holds the timing math for driving a step/dir stepper driver
// (DRV8825 and friends) with a square wave on the STEP pin.
package stepper

import (
	"strconv"
	"time"
)

// HalfPeriod returns how long STEP stays at each level so that stepsPerRev
// pulses take exactly one revolution at rpm. Truncated to whole microseconds.
func HalfPeriod(rpm, stepsPerRev uint32) time.Duration {
	if rpm == 0 || stepsPerRev == 0 {
		return 0
	}
	us := 60 * 1_000_000 / rpm / stepsPerRev / 2
	return time.Duration(us) * time.Microsecond
}

// Revolution returns the time of one revolution at rpm.
func Revolution(rpm uint32) time.Duration {
	if rpm == 0 {
		return 0
	}
	return time.Minute / time.Duration(rpm)
}

// CyclePeriod is one revolution plus a rest.
func CyclePeriod(rpm uint32, pause time.Duration) time.Duration {
	return Revolution(rpm) + pause
}

// StepTiming records when one STEP pulse went high, went low, and ended, as
// offsets from the start of its rotation. Durations keep a full rotation of
// records small enough for RP2040 SRAM.
type StepTiming struct {
	High time.Duration
	Low  time.Duration
	End  time.Duration
}

func (s StepTiming) HighTime() time.Duration  { return s.Low - s.High }
func (s StepTiming) LowTime() time.Duration   { return s.End - s.Low }
func (s StepTiming) CycleTime() time.Duration { return s.End - s.High }

// AppendReport appends "step i: high - low - cycle - elapsed - overall" to
// buf, with pulse times in µs, elapsed in ms since the rotation began and
// overall in whole seconds since the program began. rotationAt is the
// rotation start measured from program start.
func (s StepTiming) AppendReport(buf []byte, i int, rotationAt time.Duration) []byte {
	buf = append(buf, "step "...)
	buf = strconv.AppendInt(buf, int64(i), 10)
	buf = append(buf, ": "...)
	buf = strconv.AppendInt(buf, s.HighTime().Microseconds(), 10)
	buf = append(buf, " - "...)
	buf = strconv.AppendInt(buf, s.LowTime().Microseconds(), 10)
	buf = append(buf, " - "...)
	buf = strconv.AppendInt(buf, s.CycleTime().Microseconds(), 10)
	buf = append(buf, " - "...)
	buf = strconv.AppendInt(buf, s.End.Milliseconds(), 10)
	buf = append(buf, " - "...)
	buf = strconv.AppendInt(buf, int64((rotationAt+s.End)/time.Second), 10)
	return buf
}
