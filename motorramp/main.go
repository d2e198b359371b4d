package main

import (
	"machine"
	"time"

	"github.com/harveysanders/picodemos/internal/ramp"
)

const (
	pwmMin       uint8 = 0
	pwmMax       uint8 = 100
	rampDuration       = 2500 * time.Millisecond
	rampInterval       = 10 * time.Millisecond
	pauseTime          = 5 * time.Second
)

func main() {
	// DRV8871 IN1 on GP8 and IN2 on GP9 are the A/B outputs of PWM slice 4.
	in1, in2 := machine.GP8, machine.GP9
	pwm := machine.PWM4
	err := pwm.Configure(machine.PWMConfig{
		Period: uint64(time.Second) / 1000, // 1 kHz
	})
	if err != nil {
		println("could not configure PWM:", err.Error())
		return
	}

	ch1, err := pwm.Channel(in1)
	if err != nil {
		println("could not get channel for IN1:", err.Error())
		return
	}
	ch2, err := pwm.Channel(in2)
	if err != nil {
		println("could not get channel for IN2:", err.Error())
		return
	}
	pwm.Set(ch1, 0)
	pwm.Set(ch2, 0)

	forward := func(pct uint8) { pwm.Set(ch1, ramp.Duty(pwm.Top(), pct)) }
	backward := func(pct uint8) { pwm.Set(ch2, ramp.Duty(pwm.Top(), pct)) }

	for {
		println("starting forward ramp up")
		ramp.Linear(pwmMin, pwmMax, rampDuration, rampInterval, ramp.Sleep, forward)

		println("starting forward ramp down")
		ramp.Linear(pwmMax, pwmMin, rampDuration, rampInterval, ramp.Sleep, forward)

		println("starting backward ramp up")
		ramp.Linear(pwmMin, pwmMax, rampDuration, rampInterval, ramp.Sleep, backward)

		println("starting backward ramp down")
		ramp.Linear(pwmMax, pwmMin, rampDuration, rampInterval, ramp.Sleep, backward)

		println("pausing")
		time.Sleep(pauseTime)
	}
}
