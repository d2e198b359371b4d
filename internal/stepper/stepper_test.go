package stepper

import (
	"testing"
	"time"
	"unsafe"
)

func TestHalfPeriod(t *testing.T) {
	tests := []struct {
		rpm, steps uint32
		want       time.Duration
	}{
		{rpm: 60, steps: 1600, want: 312 * time.Microsecond},
		{rpm: 60, steps: 200, want: 2500 * time.Microsecond},
		{rpm: 120, steps: 1600, want: 156 * time.Microsecond},
		{rpm: 0, steps: 1600, want: 0},
	}
	for _, tt := range tests {
		if got := HalfPeriod(tt.rpm, tt.steps); got != tt.want {
			t.Errorf("HalfPeriod(%d, %d) = %v, want %v", tt.rpm, tt.steps, got, tt.want)
		}
	}
}

func TestCyclePeriod(t *testing.T) {
	if got := CyclePeriod(60, 4*time.Second); got != 5*time.Second {
		t.Errorf("CyclePeriod(60, 4s) = %v, want 5s", got)
	}
	if got := Revolution(30); got != 2*time.Second {
		t.Errorf("Revolution(30) = %v, want 2s", got)
	}
}

func TestAppendReport(t *testing.T) {
	s := StepTiming{High: 10 * time.Millisecond}
	s.Low = s.High + 312*time.Microsecond
	s.End = s.Low + 315*time.Microsecond

	got := string(s.AppendReport(nil, 7, 3*time.Second))
	const want = "step 7: 312 - 315 - 627 - 10 - 3"
	if got != want {
		t.Errorf("report = %q, want %q", got, want)
	}
}

func TestStepTimingSize(t *testing.T) {
	// 1600 records must stay well clear of the RP2040's 264 KB of SRAM.
	if size := unsafe.Sizeof(StepTiming{}); size != 24 {
		t.Errorf("StepTiming is %d bytes, want 24", size)
	}
}
