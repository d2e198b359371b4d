package notifier

import "testing"

func TestStatusLine(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{closedEvent(0), "SENSOR 0: CLOSED"},
		{releasedEvent(0), "SENSOR 0: OPEN"},
		{closedEvent(255), "SENSOR 255: CLOSED"},
	}
	for _, tt := range tests {
		if got := tt.ev.StatusLine(); got != tt.want {
			t.Errorf("%+v: got %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestActiveLowClassification(t *testing.T) {
	if stateOf(false) != Closed {
		t.Error("low level should classify as Closed")
	}
	if stateOf(true) != Released {
		t.Error("high level should classify as Released")
	}
}
