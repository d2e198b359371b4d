package notifier

import "strconv"

// State is the debounced level of an active-low sensor line.
type State uint8

const (
	// Released means the line settled high (magnet away, contact open).
	Released State = iota
	// Closed means the line settled low (magnet present, contact grounded).
	Closed
)

// String returns the token used in status lines.
func (s State) String() string {
	if s == Closed {
		return "CLOSED"
	}
	return "OPEN"
}

// stateOf classifies a raw line level using active-low wiring.
func stateOf(level bool) State {
	if level {
		return Released
	}
	return Closed
}

// Event reports that a sensor settled into a new state.
type Event struct {
	SensorID uint8 // Index into the output lines. Never an ownership handle.
	State    State
}

// closedEvent returns the event for sensor id settling low.
func closedEvent(id uint8) Event { return Event{SensorID: id, State: Closed} }

// releasedEvent returns the event for sensor id settling high.
func releasedEvent(id uint8) Event { return Event{SensorID: id, State: Released} }

// StatusLine formats ev as "SENSOR {id}: CLOSED" or "SENSOR {id}: OPEN".
func (ev Event) StatusLine() string {
	return "SENSOR " + strconv.Itoa(int(ev.SensorID)) + ": " + ev.State.String()
}
