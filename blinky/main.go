package main

import (
	"machine"
	"time"
)

func main() {
	led := machine.GP15
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()
	for {
		led.Set(!led.Get())
		if led.Get() {
			println("LED ON")
		} else {
			println("LED OFF")
		}
		time.Sleep(500 * time.Millisecond)
	}
}
