package main

import (
	"machine"
	"time"

	"github.com/harveysanders/picodemos/internal/stepper"
)

// Assumes the DRV8825 is strapped for 1/8 micro-steps.
const (
	rpm      = 60
	numSteps = 1600
)

func main() {
	dir := machine.GP20
	dir.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dir.High()

	step := machine.GP21
	step.Configure(machine.PinConfig{Mode: machine.PinOutput})
	step.Low()

	delay := stepper.HalfPeriod(rpm, numSteps)
	println("delay time (us):", delay.Microseconds())

	for counter := 0; ; counter++ {
		println(counter, ": start rotation")
		for i := 0; i < numSteps; i++ {
			step.High()
			time.Sleep(delay)
			step.Low()
			time.Sleep(delay)
		}
		println("pause")
		time.Sleep(2 * time.Second)
	}
}
