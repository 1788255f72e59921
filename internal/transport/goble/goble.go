// Package goble implements pkg/lwp3/transport.Transport and Dialer on top
// of github.com/go-ble/ble, narrowed to the single LWP3 hub service and
// characteristic every supported hub exposes.
package goble

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/sirupsen/logrus"

	"github.com/srg/lwp3hub/pkg/lwp3/transport"
)

// LWP3 GATT service/characteristic UUIDs, shared by every LWP3 hub.
const (
	ServiceUUID        = "000016231212efde1623785feabcd123"
	CharacteristicUUID = "000016241212efde1623785feabcd123"
)

// DeviceFactory creates the platform ble.Device; overridable in tests.
var DeviceFactory = func() (ble.Device, error) {
	return darwin.NewDevice()
}

// Shared BLE adapter state. go-ble binds one Device per process, so every
// Dialer in the process reuses it; a reset tears it down and re-initializes
// the controller only while no connection is live, so resetting for a
// first hub can't drop a second one that's already connected.
var (
	adapterMu   sync.Mutex
	adapter     ble.Device
	activeConns int
)

func acquireAdapter(reset bool) (ble.Device, error) {
	adapterMu.Lock()
	defer adapterMu.Unlock()
	if adapter != nil && reset && activeConns == 0 {
		_ = adapter.Stop()
		adapter = nil
	}
	if adapter == nil {
		dev, err := DeviceFactory()
		if err != nil {
			return nil, err
		}
		ble.SetDefaultDevice(dev)
		adapter = dev
	}
	return adapter, nil
}

func adapterConnected() {
	adapterMu.Lock()
	activeConns++
	adapterMu.Unlock()
}

func adapterDisconnected() {
	adapterMu.Lock()
	if activeConns > 0 {
		activeConns--
	}
	adapterMu.Unlock()
}

// NormalizeError maps go-ble's string-typed errors onto the transport
// package's structured ConnectionError values.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if err == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not connected"), strings.Contains(msg, "disconnected"):
		return fmt.Errorf("%w: %v", transport.ErrNotConnected, err)
	case strings.Contains(msg, "already connected"):
		return fmt.Errorf("%w: %v", transport.ErrAlreadyConnected, err)
	default:
		return err
	}
}

// Dialer scans for and connects to a single LWP3 hub.
type Dialer struct {
	Logger *logrus.Logger
}

// NewDialer builds a Dialer; logger defaults to logrus' standard logger.
func NewDialer(logger *logrus.Logger) *Dialer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dialer{Logger: logger}
}

func (d *Dialer) matches(adv ble.Advertisement, opts transport.ConnectOptions) bool {
	addr := strings.ToUpper(adv.Addr().String())
	for _, p := range opts.ProhibitedAddrs {
		if strings.ToUpper(p) == addr {
			return false
		}
	}
	if opts.Address != "" && strings.ToUpper(opts.Address) != addr {
		return false
	}
	if opts.Name != "" {
		name := adv.LocalName()
		if opts.Partial {
			if !strings.HasPrefix(name, opts.Name) {
				return false
			}
		} else if name != opts.Name {
			return false
		}
	}
	return true
}

// Connect scans until a hub matching opts is found, then dials it and
// discovers the LWP3 characteristic.
func (d *Dialer) Connect(ctx context.Context, opts transport.ConnectOptions) (transport.Transport, error) {
	if _, err := acquireAdapter(opts.Reset); err != nil {
		return nil, fmt.Errorf("transport: creating BLE device: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var found ble.Advertisement
	err := ble.Scan(scanCtx, false, func(adv ble.Advertisement) {
		if found == nil && d.matches(adv, opts) {
			found = adv
			cancel()
		}
	}, nil)
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return nil, NormalizeError(err)
	}
	if found == nil {
		return nil, transport.ErrNoDeviceFound
	}

	addr := found.Addr().String()
	name := found.LocalName()

	dialTimeout := opts.ConnectTimeout
	if dialTimeout == 0 {
		dialTimeout = timeout
	}
	dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
	defer dialCancel()
	client, err := ble.Dial(dialCtx, ble.NewAddr(addr))
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", addr, NormalizeError(err))
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		_ = client.CancelConnection()
		return nil, fmt.Errorf("transport: discovering profile: %w", err)
	}

	var char *ble.Characteristic
	for _, svc := range profile.Services {
		if normalize(svc.UUID.String()) != ServiceUUID {
			continue
		}
		for _, c := range svc.Characteristics {
			if normalize(c.UUID.String()) == CharacteristicUUID {
				char = c
				break
			}
		}
	}
	if char == nil {
		_ = client.CancelConnection()
		return nil, fmt.Errorf("transport: hub %s does not expose the LWP3 characteristic", addr)
	}

	t := &bleTransport{
		client: client,
		char:   char,
		name:   name,
		addr:   addr,
		logger: d.Logger,
	}
	t.connected.Store(true)
	adapterConnected()
	return t, nil
}

func normalize(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}

type bleTransport struct {
	client ble.Client
	char   *ble.Characteristic
	name   string
	addr   string
	logger *logrus.Logger

	mu        sync.Mutex
	connected atomic.Bool
}

func (t *bleTransport) Write(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected.Load() {
		return transport.ErrNotConnected
	}
	if err := t.client.WriteCharacteristic(t.char, frame, false); err != nil {
		return NormalizeError(err)
	}
	return nil
}

func (t *bleTransport) EnableNotifications(ctx context.Context, handler func(frame []byte)) error {
	if !t.connected.Load() {
		return transport.ErrNotConnected
	}
	return NormalizeError(t.client.Subscribe(t.char, false, func(data []byte) {
		buf := make([]byte, len(data))
		copy(buf, data)
		handler(buf)
	}))
}

func (t *bleTransport) Disconnect() error {
	if !t.connected.CompareAndSwap(true, false) {
		return nil
	}
	adapterDisconnected()
	if t.logger != nil {
		t.logger.WithField("address", t.addr).Info("lwp3: disconnecting hub")
	}
	return t.client.CancelConnection()
}

func (t *bleTransport) IsConnected() bool { return t.connected.Load() }

func (t *bleTransport) Name() string { return t.name }

func (t *bleTransport) Address() string { return t.addr }
