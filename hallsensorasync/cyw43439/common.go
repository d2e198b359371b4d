// Package cyw43439 brings up WiFi on a Pico W and exposes the lneto network
// stack that carries the sensor status publisher.
//
// Credentials are baked in at build time:
//
//	tinygo flash -target=pico-w -ldflags \
//	  "-X github.com/harveysanders/picodemos/hallsensorasync/cyw43439.ssid=MyNet \
//	   -X github.com/harveysanders/picodemos/hallsensorasync/cyw43439.pass=secret" \
//	  ./hallsensorasync
//
// With no SSID the demo runs without networking.
//
// Adapted from the examples in the soypat/cyw43439 repository:
// https://github.com/soypat/cyw43439/tree/main/examples/common
package cyw43439

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"runtime"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"
)

const mtu = cyw43439.MTU

var (
	ssid string
	pass string
)

// Enabled reports whether an SSID was set via linker flags.
func Enabled() bool { return ssid != "" }

// Config configures the WiFi device and lneto stack.
type Config struct {
	// Hostname is used for DHCP requests. Required.
	Hostname string
	// RequestedAddr is offered in the DHCP request and used as a static
	// address if DHCP does not complete. Zero means none.
	RequestedAddr netip.Addr
	// JoinRetryDelay is the wait between failed join attempts. Defaults to 5s.
	JoinRetryDelay time.Duration
	Logger         *slog.Logger
}

// Stack wraps the lneto StackAsync and the CYW43439 device.
type Stack struct {
	s       xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	sendbuf []byte
}

// Connect initialises the CYW43439, joins the network named by the linker
// flags (retrying until it succeeds) and resets the lneto stack with the
// radio's MAC. The stack has no address yet: call Run in its own goroutine,
// then SetupDHCP.
func Connect(cfg Config) (*Stack, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("empty hostname")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
	retryDelay := cfg.JoinRetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)
	logger.Info("initializing pico W device...")
	if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
		return nil, errors.New("wifi init failed:" + err.Error())
	}
	logger.Info("cyw43439:Init", slog.Duration("duration", time.Since(start)))

	logger.Info("joining network", slog.String("ssid", ssid), slog.Bool("open", pass == ""))
	for {
		err := dev.JoinWPA2(ssid, pass)
		if err == nil {
			break
		}
		logger.Error("wifi join failed", slog.String("err", err.Error()))
		time.Sleep(retryDelay)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("get hardware address:" + err.Error())
	}
	logger.Info("wifi joined", slog.String("mac", net.HardwareAddr(mac[:]).String()))

	stack := &Stack{
		dev:     dev,
		log:     logger,
		sendbuf: make([]byte, mtu),
	}
	err = stack.s.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     1,
		RandSeed:        time.Since(start).Nanoseconds(),
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset:" + err.Error())
	}
	dev.RecvEthHandle(func(pkt []byte) error {
		return stack.s.Demux(pkt, 0)
	})
	return stack, nil
}

// Run polls the device forever, moving packets between the radio and the
// stack. DHCP and every TCP operation depend on it running.
func (s *Stack) Run() {
	for {
		send, recv, _ := s.recvAndSend()
		if send == 0 && recv == 0 {
			time.Sleep(5 * time.Millisecond)
		} else {
			runtime.Gosched()
		}
	}
}

// SetupDHCP requests an address. If DHCP fails and requested is set, it is
// assigned as a static address instead.
func (s *Stack) SetupDHCP(requested netip.Addr) error {
	if !requested.IsValid() {
		requested = netip.AddrFrom4([4]byte{})
	}
	if !requested.Is4() {
		return errors.New("only dhcpv4 supported")
	}

	const pollTime = 50 * time.Millisecond
	rstack := s.s.StackRetrying(pollTime)

	s.log.Info("DHCP:starting")
	results, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if !requested.IsUnspecified() {
			s.log.Info("DHCP did not complete, assigning static IP", slog.String("ip", requested.String()))
			s.s.SetIPAddr(requested)
			return nil
		}
		return errors.New("dhcp failed:" + err.Error())
	}
	if err = s.s.AssimilateDHCPResults(results); err != nil {
		return errors.New("assimilate dhcp:" + err.Error())
	}

	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return errors.New("resolve gateway:" + err.Error())
	}
	s.s.SetGateway6(gatewayHW)

	s.log.Info("DHCP complete",
		slog.String("ourIP", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	return nil
}

func (s *Stack) recvAndSend() (send, recv int, err error) {
	gotPacket, errRecv := s.dev.PollOne()
	if gotPacket {
		recv = 1
	}
	if errRecv != nil {
		s.log.Error("RecvAndSend:PollOne", slog.String("err", errRecv.Error()))
	}

	send, err = s.s.Encapsulate(s.sendbuf, -1, 0)
	if err != nil {
		s.log.Error("RecvAndSend:Encapsulate", slog.Int("plen", send), slog.String("err", err.Error()))
	} else {
		err = errRecv
	}
	if send == 0 {
		return send, recv, err
	}

	err = s.dev.SendEth(s.sendbuf[:send])
	if err != nil {
		s.log.Error("RecvAndSend:SendEth", slog.Int("plen", send), slog.String("err", err.Error()))
	}
	return send, recv, err
}

// LnetoStack returns the underlying lneto StackAsync for TCP and DNS.
func (s *Stack) LnetoStack() *xnet.StackAsync {
	return &s.s
}
