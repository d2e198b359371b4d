// Package lcd shows two-line status messages on an HD44780 character LCD.
//
// Example usage:
//
//	lcdMessages := make(chan lcd.Message, 4)
//	handler := lcd.NewHandler(&device, lcdMessages)
//	go handler.Run()
//
//	// Never blocks; the message is dropped if the display is behind.
//	lcd.Send(lcdMessages, "SENSOR 0", "CLOSED")
package lcd

import "tinygo.org/x/drivers/hd44780i2c"

// Device is the subset of the HD44780 driver the handler uses.
type Device interface {
	ClearDisplay()
	SetCursor(col, row uint8)
	Print(data []byte)
}

var _ Device = (*hd44780i2c.Device)(nil)

// Message represents a two-line LCD message.
type Message struct {
	Line1 []byte
	Line2 []byte
}

// Send queues a message without blocking. It reports false if the
// channel was full and the message was dropped.
func Send(messages chan<- Message, line1, line2 string) bool {
	select {
	case messages <- Message{Line1: []byte(line1), Line2: []byte(line2)}:
		return true
	default:
		return false
	}
}

// Handler processes LCD messages from a channel.
type Handler struct {
	device   Device
	messages <-chan Message
	columns  int
}

// NewHandler creates a handler for a 16x2 display.
func NewHandler(device Device, messages <-chan Message) *Handler {
	return &Handler{
		device:   device,
		messages: messages,
		columns:  16,
	}
}

// Run processes messages until the channel is closed.
// Run should be called in a separate goroutine.
func (h *Handler) Run() {
	for msg := range h.messages {
		h.display(msg)
	}
}

func (h *Handler) display(msg Message) {
	h.device.ClearDisplay()
	h.device.SetCursor(0, 0)
	h.device.Print(h.fit(msg.Line1))
	h.device.SetCursor(0, 1)
	h.device.Print(h.fit(msg.Line2))
}

// fit truncates in place, no allocation.
func (h *Handler) fit(line []byte) []byte {
	if len(line) > h.columns {
		return line[:h.columns]
	}
	return line
}
