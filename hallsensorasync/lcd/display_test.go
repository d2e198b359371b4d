package lcd

import "testing"

type fakeDevice struct {
	rows [2]string
	row  uint8
}

func (d *fakeDevice) ClearDisplay()          { d.rows = [2]string{} }
func (d *fakeDevice) SetCursor(_, row uint8) { d.row = row }
func (d *fakeDevice) Print(data []byte)      { d.rows[d.row] += string(data) }

func TestHandlerTruncatesToColumns(t *testing.T) {
	msgs := make(chan Message, 2)
	dev := &fakeDevice{}
	h := NewHandler(dev, msgs)

	Send(msgs, "Disconnected", "Reconnecting to broker")
	Send(msgs, "SENSOR 1", "OPEN")
	close(msgs)
	h.Run()

	if dev.rows[0] != "SENSOR 1" || dev.rows[1] != "OPEN" {
		t.Errorf("display = %q, want last message", dev.rows)
	}

	h.display(Message{Line1: []byte("0123456789abcdefXYZ")})
	if dev.rows[0] != "0123456789abcdef" {
		t.Errorf("line 1 = %q, want 16 columns", dev.rows[0])
	}
}

func TestSendDropsWhenFull(t *testing.T) {
	msgs := make(chan Message, 1)
	if !Send(msgs, "a", "b") {
		t.Fatal("first send dropped")
	}
	if Send(msgs, "c", "d") {
		t.Fatal("second send should have been dropped")
	}
	if got := <-msgs; string(got.Line1) != "a" {
		t.Errorf("queued message = %q, want first", got.Line1)
	}
}
