package notifier

import "time"

// watcher turns raw edges on one sensor line into debounced events.
type watcher struct {
	id       uint8
	in       Input
	wake     chan struct{}
	events   chan<- Event
	debounce time.Duration
	sleep    func(time.Duration)
	last     State // last reported state; owned by run once started
}

func newWatcher(id uint8, in Input, events chan<- Event, debounce time.Duration, sleep func(time.Duration)) (*watcher, error) {
	w := &watcher{
		id:       id,
		in:       in,
		wake:     make(chan struct{}, 1),
		events:   events,
		debounce: debounce,
		sleep:    sleep,
	}
	if err := in.SetInterrupt(w.edge); err != nil {
		return nil, err
	}
	return w, nil
}

// edge is called from interrupt context and MUST NOT block.
// Edges arriving while a wake is pending coalesce into it.
func (w *watcher) edge() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// run never returns.
func (w *watcher) run() {
	for {
		<-w.wake
		w.sleep(w.debounce)

		// Bounces during the window are covered by the read below.
		select {
		case <-w.wake:
		default:
		}

		s := stateOf(w.in.Get())
		if s == w.last {
			// Line returned to its reported level within the window.
			continue
		}
		w.last = s
		w.events <- Event{SensorID: w.id, State: s}
	}
}
