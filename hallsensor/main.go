package main

import (
	"machine"
	"time"
)

func main() {
	led := machine.GP15
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.Low()

	// The hall switch grounds the line when a magnet is near.
	hall := machine.GP14
	hall.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	for {
		if hall.Get() {
			led.High()
			println("HALL SENSOR: OPEN")
		} else {
			led.Low()
			println("HALL SENSOR: CLOSED")
		}
		time.Sleep(500 * time.Millisecond)
	}
}
