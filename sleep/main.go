package main

import (
	"machine"
	"time"
)

func main() {
	led := machine.GP15
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()
	println("start")
	time.Sleep(5 * time.Second)

	println("sleep")
	// Let the UART drain before going quiet.
	time.Sleep(100 * time.Millisecond)

	// With no goroutine runnable the TinyGo scheduler arms a timer alarm and
	// parks the core in WFE until it fires.
	time.Sleep(5 * time.Second)

	// Serial output is not used from here on: the USB host usually drops the
	// CDC connection while the board is idle and it does not come back.
	// Blink to show the program resumed.
	for {
		led.Set(!led.Get())
		time.Sleep(time.Second)
	}
}
