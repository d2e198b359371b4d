package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/picodemos/internal/ramp"
)

// Motor parameters.
const (
	pwmMin       uint8 = 0
	pwmMax       uint8 = 95
	rampDuration       = 5 * time.Second
	rampInterval       = 10 * time.Millisecond
	pauseTime          = 5 * time.Second
	debounce           = 50 * time.Millisecond
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Disable the DBH12 and hold both inputs low while PWM is set up.
	enable := machine.GP21
	in1, in2 := machine.GP6, machine.GP7
	for _, p := range []machine.Pin{enable, in1, in2} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}

	// GP6/GP7 are the A/B outputs of PWM slice 3.
	pwm := machine.PWM3
	err := pwm.Configure(machine.PWMConfig{
		Period: uint64(time.Second) / 1000, // 1 kHz
	})
	if err != nil {
		printErrForever(logger, "configure PWM", slog.String("reason", err.Error()))
	}
	ch1, err := pwm.Channel(in1)
	if err != nil {
		printErrForever(logger, "PWM channel for IN1", slog.String("reason", err.Error()))
	}
	ch2, err := pwm.Channel(in2)
	if err != nil {
		printErrForever(logger, "PWM channel for IN2", slog.String("reason", err.Error()))
	}
	pwm.Set(ch1, 0)
	pwm.Set(ch2, 0)

	// Momentary button wired to ground.
	button := machine.GP9
	button.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pressed := make(chan struct{}, 1)
	err = button.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		select {
		case pressed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		printErrForever(logger, "button interrupt", slog.String("reason", err.Error()))
	}

	forward := func(pct uint8) { pwm.Set(ch1, ramp.Duty(pwm.Top(), pct)) }
	backward := func(pct uint8) { pwm.Set(ch2, ramp.Duty(pwm.Top(), pct)) }

	// A press while the motor runs stops the cycle.
	tick := ramp.UntilSignal(pressed)
	phases := []struct {
		msg      string
		from, to uint8
		set      func(uint8)
	}{
		{"starting forward ramp up", pwmMin, pwmMax, forward},
		{"starting forward ramp down", pwmMax, pwmMin, forward},
		{"starting backward ramp up", pwmMin, pwmMax, backward},
		{"starting backward ramp down", pwmMax, pwmMin, backward},
	}

	for {
		logger.Info("waiting for input...")
		// Presses made during the pause do not start a new cycle.
		select {
		case <-pressed:
		default:
		}
		<-pressed
		// Let the contact settle so its bounce is not read as a stop.
		time.Sleep(debounce)
		select {
		case <-pressed:
		default:
		}

		enable.High()
		for _, ph := range phases {
			logger.Info(ph.msg)
			if !ramp.Linear(ph.from, ph.to, rampDuration, rampInterval, tick, ph.set) {
				logger.Warn("stopped by button")
				break
			}
		}
		forward(0)
		backward(0)
		enable.Low()

		logger.Info("pausing")
		time.Sleep(pauseTime)
	}
}

// printErrForever logs msg @ 1hz. It blocks forever.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
