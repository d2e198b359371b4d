package mqtt

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		addr     string
		host     string
		port     string
		wantFail bool
	}{
		{addr: "10.0.0.9:1883", host: "10.0.0.9", port: "1883"},
		{addr: "broker.local:8883", host: "broker.local", port: "8883"},
		{addr: "fe80::1:1883", host: "fe80::1", port: "1883"},
		{addr: "broker.local", wantFail: true},
		{addr: ":1883", wantFail: true},
		{addr: "broker.local:", wantFail: true},
	}
	for _, tt := range tests {
		host, port, err := splitHostPort(tt.addr)
		if tt.wantFail {
			if err == nil {
				t.Errorf("%q: expected error", tt.addr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.addr, err)
			continue
		}
		if host != tt.host || port != tt.port {
			t.Errorf("%q: got (%q, %q), want (%q, %q)", tt.addr, host, port, tt.host, tt.port)
		}
	}
}

func TestParsePort(t *testing.T) {
	tests := map[string]uint16{
		"1883":  1883,
		"65535": 65535,
		"65536": 0,
		"18a3":  0,
		"":      0,
	}
	for in, want := range tests {
		if got := parsePort(in); got != want {
			t.Errorf("parsePort(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTopicReusesBuffer(t *testing.T) {
	c := Client{TopicPrefix: "hall/"}
	if got := string(c.Topic(0)); got != "hall/0" {
		t.Errorf("Topic(0) = %q", got)
	}
	if got := string(c.Topic(12)); got != "hall/12" {
		t.Errorf("Topic(12) = %q", got)
	}
}

func TestSensorStatusPayload(t *testing.T) {
	b, err := json.Marshal(SensorStatus{Sensor: 1, State: "CLOSED", SinceBoot: 1500 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	const want = `{"sensor":1,"state":"CLOSED","since_boot_ns":1500000000}`
	if string(b) != want {
		t.Errorf("payload = %s, want %s", b, want)
	}
}

type fakePinger struct {
	calls   []string
	pingErr error
	nextErr error
}

func (p *fakePinger) StartPing() error {
	p.calls = append(p.calls, "ping")
	return p.pingErr
}

func (p *fakePinger) HandleNext() error {
	p.calls = append(p.calls, "next")
	return p.nextErr
}

func TestKeepAlivePingsThenReadsResponse(t *testing.T) {
	p := &fakePinger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := keepAlive(p, logger); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(p.calls, ","); got != "ping,next" {
		t.Errorf("calls = %s, want ping,next", got)
	}
}

func TestKeepAliveStopsOnPingError(t *testing.T) {
	errDisconnected := errors.New("natiu-mqtt: disconnected")
	p := &fakePinger{pingErr: errDisconnected}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	if err := keepAlive(p, logger); !errors.Is(err, errDisconnected) {
		t.Fatalf("err = %v, want %v", err, errDisconnected)
	}
	if got := strings.Join(p.calls, ","); got != "ping" {
		t.Errorf("calls = %s, want ping only", got)
	}
	if !strings.Contains(logs.String(), "mqtt:ping-failed") {
		t.Errorf("missing ping failure in log:\n%s", logs.String())
	}
}

func TestKeepAliveReportsReadError(t *testing.T) {
	p := &fakePinger{nextErr: io.EOF}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := keepAlive(p, logger); err != io.EOF {
		t.Fatalf("err = %v, want EOF", err)
	}
}
