// Package notifier reports debounced state changes of several active-low
// sensors (hall switches, reed contacts, buttons) and mirrors each one onto an
// indicator output.
//
// Each sensor gets its own goroutine that sleeps until an edge interrupt fires,
// waits out the debounce interval and reads the settled level. All watchers
// share one channel of capacity 1 feeding a single consumer goroutine, so a
// watcher blocks rather than drop an event when the consumer falls behind.
//
// Example usage:
//
//	err := notifier.Start(notifier.Config{
//	    Sensors: []notifier.Input{hall0, hall1},
//	    Outputs: []notifier.Output{machine.GP15, machine.GP16},
//	    Logger:  logger,
//	})
package notifier

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// DebounceDelay is the settle time between an edge and the level read.
const DebounceDelay = time.Millisecond

// Capacity of the channel between watchers and the output manager. Watchers
// rely on a full channel blocking them; do not enlarge.
const channelCap = 1

const maxSensors = 256

// Input is a digital sensor line.
type Input interface {
	// Get returns the current level; true is high.
	Get() bool
	// SetInterrupt registers handler to be called on every rising and falling
	// edge. handler runs in interrupt context.
	SetInterrupt(handler func()) error
}

// Output is a digital indicator line. machine.Pin satisfies it.
type Output interface {
	Set(high bool)
}

// Config wires sensors to outputs. Sensor i reports as id i and drives Outputs[i].
type Config struct {
	Sensors []Input
	Outputs []Output
	// Debounce defaults to DebounceDelay.
	Debounce time.Duration
	// Logger receives one status line per event. Nil disables logging.
	Logger *slog.Logger
	// Notify, if set, is called by the output manager after each event has been
	// applied. It runs on the manager goroutine and should not block.
	Notify func(Event)
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Start reports each sensor's resting state, then spawns one watcher goroutine
// per sensor and one output manager goroutine. It returns once they are
// running; they never stop.
//
// The resting state comes from a single read without debounce. A sensor that
// is mid-bounce at power-on may be misreported until its first real event.
func Start(cfg Config) error {
	n := len(cfg.Sensors)
	switch {
	case n == 0:
		return errors.New("no sensors configured")
	case n > maxSensors:
		return errors.New("too many sensors: " + strconv.Itoa(n))
	case len(cfg.Outputs) != n:
		return errors.New("sensor/output count mismatch: " + strconv.Itoa(n) + " sensors, " + strconv.Itoa(len(cfg.Outputs)) + " outputs")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DebounceDelay
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}

	events := make(chan Event, channelCap)

	watchers := make([]*watcher, n)
	for i, in := range cfg.Sensors {
		w, err := newWatcher(uint8(i), in, events, debounce, sleep)
		if err != nil {
			return errors.New("sensor " + strconv.Itoa(i) + ": edge interrupt:" + err.Error())
		}
		watchers[i] = w
	}

	// The interrupt is armed before this read, so an edge racing it still
	// wakes the watcher, which then re-reads the line.
	for i, w := range watchers {
		w.last = stateOf(w.in.Get())
		cfg.Outputs[i].Set(w.last == Released)
		logger.Info("initial state", slog.Int("sensor", i), slog.String("state", w.last.String()))
	}

	m := &manager{
		outputs: cfg.Outputs,
		events:  events,
		log:     logger,
		notify:  cfg.Notify,
	}
	for _, w := range watchers {
		go w.run()
	}
	go m.run()
	logger.Info("tasks initialized", slog.Int("watchers", n))
	return nil
}
