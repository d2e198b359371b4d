package notifier

import "log/slog"

// manager is the single consumer of sensor events. It owns every output line.
type manager struct {
	outputs []Output
	events  <-chan Event
	log     *slog.Logger
	notify  func(Event)
}

// run handles events in receipt order until events is closed,
// which never happens outside of tests.
func (m *manager) run() {
	for ev := range m.events {
		m.handle(ev)
	}
}

// handle panics with an index fault if ev.SensorID has no output line.
func (m *manager) handle(ev Event) {
	out := m.outputs[ev.SensorID]
	switch ev.State {
	case Closed:
		out.Set(false)
	default:
		out.Set(true)
	}
	m.log.Info(ev.StatusLine())
	if m.notify != nil {
		m.notify(ev)
	}
}
