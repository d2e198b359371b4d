// Package mqtt publishes sensor status changes to an MQTT broker over the
// lneto TCP/IP stack.
package mqtt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"runtime"
	"strconv"
	"time"

	"github.com/harveysanders/picodemos/hallsensorasync/lcd"
	"github.com/soypat/lneto/tcp"
	"github.com/soypat/lneto/x/xnet"
	mqtt "github.com/soypat/natiu-mqtt"
)

const defaultHeartbeat = 30 * time.Second

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// SensorStatus is the JSON payload published for every sensor event.
type SensorStatus struct {
	Sensor    uint8         `json:"sensor"`
	State     string        `json:"state"`         // "CLOSED" or "OPEN"
	SinceBoot time.Duration `json:"since_boot_ns"` // Nanoseconds since boot.
}

type Client struct {
	ID                string
	Timeout           time.Duration
	TCPBufSize        int
	Logger            *slog.Logger
	HeartbeatInterval time.Duration // Defaults to 30s.
	TopicPrefix       string        // Status for sensor N goes to TopicPrefix+"N".
	Username          string        // MQTT broker username (optional)
	Password          string        // MQTT broker password (optional, requires Username)

	topic []byte
}

// Topic returns the publish topic for sensor. The returned slice is reused
// by the next call.
func (c *Client) Topic(sensor uint8) []byte {
	c.topic = append(c.topic[:0], c.TopicPrefix...)
	c.topic = strconv.AppendUint(c.topic, uint64(sensor), 10)
	return c.topic
}

// ConnectAndPublish connects to the MQTT broker at addr and publishes every
// status received on statuses. It reconnects after a dropped connection and
// only returns on a configuration error. Progress is shown on lcdMessages.
// The stack is provided from main.go where WiFi/DHCP are set up.
func (c *Client) ConnectAndPublish(
	stack *xnet.StackAsync,
	addr string,
	statuses <-chan SensorStatus,
	lcdMessages chan<- lcd.Message,
) error {
	const pollTime = 5 * time.Millisecond

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
	heartbeatInterval := c.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeat
	}
	logger.Info("MQTT address: " + addr)

	mqttHost, portStr, err := splitHostPort(addr)
	if err != nil {
		return errors.New("parsing host:port from " + addr + ": " + err.Error())
	}
	port := parsePort(portStr)
	if port == 0 {
		return errors.New("invalid port in " + addr)
	}

	rstack := stack.StackRetrying(pollTime)

	// Try to parse as IP first, otherwise DNS lookup
	var mqttAddr netip.Addr
	if parsedAddr, err := netip.ParseAddr(mqttHost); err == nil {
		mqttAddr = parsedAddr
	} else {
		logger.Info("dns:resolving " + mqttHost)
		addrs, err := rstack.DoLookupIP(mqttHost, 5*time.Second, 3)
		if err != nil {
			return errors.New("dns lookup for " + mqttHost + ": " + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("dns lookup for " + mqttHost + ": no addresses returned")
		}
		mqttAddr = addrs[0]
	}
	logger.Info("resolved IP: " + mqttAddr.String())

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			logger.Info("received message", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(c.ID))
	if c.Username != "" {
		varconn.Username = []byte(c.Username)
		if c.Password != "" {
			varconn.Password = []byte(c.Password)
		}
	}

	mqttClient := mqtt.NewClient(cfg)

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, c.TCPBufSize),
		TxBuf:             make([]byte, c.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errors.New("tcp configure:" + err.Error())
	}

	closeConn := func(reason string) {
		logger.Error("tcpconn:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	serverAddr := netip.AddrPortFrom(mqttAddr, port)

	// Connection loop for TCP+MQTT.
	for {
		localPort := uint16(stack.Prand32()>>17) + 1024
		logger.Info("socket:dialing", slog.Uint64("localPort", uint64(localPort)))
		lcd.Send(lcdMessages, "Connecting...", addr)

		err = rstack.DoDialTCP(&conn, localPort, serverAddr, 10*time.Second, 3)
		if err != nil {
			logger.Error("socket:dial-failed", slog.String("err", err.Error()))
			closeConn("dial failed: " + err.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		logger.Info("tcp:connected", slog.String("state", conn.State().String()))

		// MQTT connect with a deadline on the socket.
		lcd.Send(lcdMessages, "MQTT Connect", "Authenticating")
		conn.SetDeadline(time.Now().Add(c.Timeout))
		err = mqttClient.StartConnect(&conn, &varconn)
		if err != nil {
			logger.Error("mqtt:start-connect-failed", slog.String("reason", err.Error()))
			lcd.Send(lcdMessages, "Connect Failed", err.Error())
			closeConn("connect failed")
			continue
		}
		retries := 50
		for retries > 0 && !mqttClient.IsConnected() {
			time.Sleep(100 * time.Millisecond)
			err = mqttClient.HandleNext()
			if err != nil {
				logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
			}
			retries--
		}
		if !mqttClient.IsConnected() {
			logger.Error("mqtt:connect-failed", slog.Any("reason", mqttClient.Err()))
			lcd.Send(lcdMessages, "Connect Failed", "Timed out")
			closeConn("connect timed out")
			continue
		}

		lcd.Send(lcdMessages, "MQTT Connected", "Watching...")
		c.publishLoop(mqttClient, &conn, stack, statuses, heartbeatInterval, logger)

		logger.Error("mqtt:disconnected", slog.Any("reason", mqttClient.Err()))
		lcd.Send(lcdMessages, "Disconnected", "Reconnecting...")
		closeConn("disconnected")
		runtime.Gosched()
	}
}

// publishLoop publishes statuses until the broker connection drops.
func (c *Client) publishLoop(
	mqttClient *mqtt.Client,
	conn *tcp.Conn,
	stack *xnet.StackAsync,
	statuses <-chan SensorStatus,
	heartbeatInterval time.Duration,
	logger *slog.Logger,
) {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for mqttClient.IsConnected() {
		select {
		case status := <-statuses:
			payload, err := json.Marshal(status)
			if err != nil {
				logger.Error("mqtt:marshal-failed", slog.Any("reason", err))
				continue
			}
			conn.SetDeadline(time.Now().Add(c.Timeout))
			pubVar := mqtt.VariablesPublish{
				TopicName:        c.Topic(status.Sensor),
				PacketIdentifier: uint16(stack.Prand32()),
			}
			err = mqttClient.PublishPayload(pubFlags, pubVar, payload)
			if err != nil {
				logger.Error("mqtt:publish-failed", slog.Any("reason", err))
				continue
			}
			logger.Info("published status",
				slog.String("topic", string(pubVar.TopicName)),
				slog.Uint64("packetID", uint64(pubVar.PacketIdentifier)),
			)
			err = mqttClient.HandleNext()
			if err != nil {
				logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
			}
		case <-heartbeat.C:
			conn.SetDeadline(time.Now().Add(c.Timeout))
			keepAlive(mqttClient, logger)
		default:
			// TinyGo runs goroutines on a single core; yield so the
			// sensor watchers and network poller get to run.
			// https://tinygo.org/docs/guides/tips-n-tricks/
			runtime.Gosched()
		}
	}
}

// pinger is the part of the natiu-mqtt client used to hold a session open.
type pinger interface {
	StartPing() error
	HandleNext() error
}

var _ pinger = (*mqtt.Client)(nil)

// keepAlive sends a PINGREQ and reads the broker's PINGRESP. The broker drops
// a client that sends nothing for 1.5x the connect KeepAlive, and sensors can
// stay quiet for hours.
func keepAlive(p pinger, logger *slog.Logger) error {
	if err := p.StartPing(); err != nil {
		logger.Error("mqtt:ping-failed", slog.String("err", err.Error()))
		return err
	}
	if err := p.HandleNext(); err != nil {
		logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
		return err
	}
	return nil
}

// splitHostPort splits a host:port string into separate host and port components.
// Returns an error if the format is invalid.
func splitHostPort(addr string) (host, port string, err error) {
	// Find the last colon to support IPv6 addresses
	colonIdx := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			colonIdx = i
			break
		}
	}

	if colonIdx == -1 {
		return "", "", errors.New("missing port in address")
	}

	host = addr[:colonIdx]
	port = addr[colonIdx+1:]

	if host == "" {
		return "", "", errors.New("empty host")
	}
	if port == "" {
		return "", "", errors.New("empty port")
	}

	return host, port, nil
}

// parsePort converts a port string to uint16.
// Returns 0 if parsing fails or the value overflows.
func parsePort(portStr string) uint16 {
	var port uint32
	for i := 0; i < len(portStr); i++ {
		if portStr[i] < '0' || portStr[i] > '9' {
			return 0
		}
		port = port*10 + uint32(portStr[i]-'0')
		if port > 65535 {
			return 0
		}
	}
	return uint16(port)
}
