package main

import (
	"errors"
	"log/slog"
	"machine"
	"net/netip"
	"strconv"
	"time"

	"github.com/harveysanders/picodemos/hallsensorasync/cyw43439"
	"github.com/harveysanders/picodemos/hallsensorasync/lcd"
	"github.com/harveysanders/picodemos/hallsensorasync/mqtt"
	"github.com/harveysanders/picodemos/hallsensorasync/notifier"
	"tinygo.org/x/drivers/hd44780i2c"
)

const (
	serverAddrStr = "10.0.0.9:1883"
	hostname      = "tinygo-hall"
)

// Hall switches pull their line to ground when a magnet is present. Sensor N
// is mirrored on LED N.
var (
	sensorPins = [...]machine.Pin{machine.GP14, machine.GP12}
	ledPins    = [...]machine.Pin{machine.GP15, machine.GP16}
)

// sensorPin adapts machine.Pin to notifier.Input with an any-edge interrupt.
type sensorPin struct {
	machine.Pin
}

func (p sensorPin) SetInterrupt(handler func()) error {
	return p.Pin.SetInterrupt(machine.PinToggle, func(machine.Pin) { handler() })
}

func main() {
	start := time.Now()
	// Give the serial monitor a moment to attach.
	time.Sleep(2 * time.Second)
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	lcdMessages := make(chan lcd.Message, 4)
	display, err := configureLCD(machine.I2C0)
	if err != nil {
		logger.Warn("running without status display", slog.String("reason", err.Error()))
	} else {
		go lcd.NewHandler(display, lcdMessages).Run()
	}

	networked := cyw43439.Enabled()
	statuses := make(chan mqtt.SensorStatus, 8)
	if networked {
		go publish(logger, statuses, lcdMessages)
	}

	sensors := make([]notifier.Input, len(sensorPins))
	for i, p := range sensorPins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		sensors[i] = sensorPin{p}
	}
	outputs := make([]notifier.Output, len(ledPins))
	for i, p := range ledPins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		outputs[i] = p
	}

	err = notifier.Start(notifier.Config{
		Sensors: sensors,
		Outputs: outputs,
		Logger:  logger,
		Notify: func(ev notifier.Event) {
			lcd.Send(lcdMessages, "SENSOR "+strconv.Itoa(int(ev.SensorID)), ev.State.String())
			if !networked {
				return
			}
			select {
			case statuses <- mqtt.SensorStatus{
				Sensor:    ev.SensorID,
				State:     ev.State.String(),
				SinceBoot: time.Since(start),
			}:
			default:
				logger.Warn("mqtt:status-dropped", slog.Int("sensor", int(ev.SensorID)))
			}
		},
	})
	if err != nil {
		printErrForever(logger, "start sensor notifier", slog.String("reason", err.Error()))
	}

	select {}
}

// publish joins WiFi and forwards sensor statuses to the MQTT broker.
// It blocks forever.
func publish(logger *slog.Logger, statuses <-chan mqtt.SensorStatus, lcdMessages chan<- lcd.Message) {
	lcd.Send(lcdMessages, "WiFi", "Joining...")
	stack, err := cyw43439.Connect(cyw43439.Config{
		Hostname: hostname,
		Logger:   logger,
	})
	if err != nil {
		printErrForever(logger, "wifi connect", slog.String("reason", err.Error()))
	}
	go stack.Run()

	if err := stack.SetupDHCP(netip.Addr{}); err != nil {
		printErrForever(logger, "dhcp", slog.String("reason", err.Error()))
	}

	c := mqtt.Client{
		ID:                hostname,
		Logger:            logger,
		Timeout:           5 * time.Second,
		TCPBufSize:        2030, // MTU - ethhdr - iphdr - tcphdr
		HeartbeatInterval: 30 * time.Second,
		TopicPrefix:       "hall/",
	}
	err = c.ConnectAndPublish(stack.LnetoStack(), serverAddrStr, statuses, lcdMessages)
	if err != nil {
		printErrForever(logger, "connect to MQTT broker", slog.String("reason", err.Error()))
	}
}

// configureLCD configures the I2C bus and looks for an HD44780 backpack on
// the common addresses (0x27, 0x3F).
func configureLCD(i2c *machine.I2C) (*hd44780i2c.Device, error) {
	err := i2c.Configure(machine.I2CConfig{
		SDA: machine.GP4,
		SCL: machine.GP5,
	})
	if err != nil {
		return nil, errors.New("configure I2C:" + err.Error())
	}

	var probe [1]byte
	for _, a := range []uint8{0x27, 0x3F} {
		if i2c.Tx(uint16(a), nil, probe[:]) != nil {
			continue
		}
		dev := hd44780i2c.New(i2c, a)
		dev.Configure(hd44780i2c.Config{
			Width:  16,
			Height: 2,
		})
		dev.ClearDisplay()
		return &dev, nil
	}
	return nil, errors.New("LCD not found on addresses: 0x27, 0x3f")
}

// printErrForever logs msg @ 1hz, in case the serial monitor attaches
// after the first report. It blocks forever.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
