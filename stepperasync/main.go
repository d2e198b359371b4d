package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/picodemos/internal/stepper"
)

// Assumes the DRV8825 is strapped for 1/8 micro-steps.
const (
	rpm      = 60
	numSteps = 1600
	pause    = 4 * time.Second
)

// Kept off the goroutine stack.
var timings [numSteps]stepper.StepTiming

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dir := machine.GP20
	dir.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dir.Low()

	step := machine.GP21
	step.Configure(machine.PinConfig{Mode: machine.PinOutput})
	step.Low()

	halfPeriod := stepper.HalfPeriod(rpm, numSteps)
	logger.Info("delay time", slog.Int64("us", halfPeriod.Microseconds()))
	cycle := stepper.CyclePeriod(rpm, pause)
	logger.Info("cycle time", slog.Int64("us", cycle.Microseconds()))

	programStart := time.Now()
	cycleTicker := time.NewTicker(cycle)

	report := make([]byte, 0, 64)
	for {
		rotationStart := time.Now()
		ticker := time.NewTicker(halfPeriod)
		for i := range timings {
			step.High()
			timings[i].High = time.Since(rotationStart)
			<-ticker.C

			step.Low()
			timings[i].Low = time.Since(rotationStart)
			<-ticker.C

			timings[i].End = time.Since(rotationStart)
		}
		ticker.Stop()

		rotationAt := rotationStart.Sub(programStart)
		for i := range timings {
			report = timings[i].AppendReport(report[:0], i, rotationAt)
			logger.Info(string(report))
		}

		// Rest until the next rotation is due.
		<-cycleTicker.C
	}
}
