// Package transport defines the link layer a hub session runs on top of:
// a single bidirectional GATT characteristic carrying whole LWP3 frames,
// independent of which BLE stack backs it.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ConnectionState mirrors the narrow set of connection failure modes the
// hub session needs to distinguish.
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
	PeerDisconnected ConnectionState = "peer_disconnected"
)

// ConnectionError reports a connection-state problem. Its Is method lets
// callers compare by State via errors.Is without caring about Msg.
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
	ErrPeerDisconnected = &ConnectionError{State: PeerDisconnected}

	ErrNoDeviceFound = errors.New("transport: no matching device found")
	ErrTimeout       = errors.New("transport: operation timed out")
)

// Advertisement is the subset of a BLE advertisement the connect contract
// filters on: local name, address and RSSI.
type Advertisement interface {
	LocalName() string
	Address() string
	RSSI() int
}

// ConnectOptions narrows a scan down to the single hub to pair with.
type ConnectOptions struct {
	// Name, if set, must equal (or be a prefix of, per Partial) the
	// advertised local name.
	Name string
	// Partial allows Name to match as a prefix instead of exact equality.
	Partial bool
	// Address, if set, must equal the advertised MAC (case-insensitive).
	Address string
	// ProhibitedAddrs excludes hubs already claimed by another session in
	// this process, so a second `Connect` doesn't reattach to a hub
	// that's already in use.
	ProhibitedAddrs []string
	// Timeout bounds the scan phase of a connect attempt.
	Timeout time.Duration
	// ConnectTimeout bounds the GATT dial once a matching advertisement
	// is found; zero falls back to Timeout.
	ConnectTimeout time.Duration
	// Reset asks the transport to re-initialize the BLE controller
	// before scanning, dropping any stale bonded state. Honored only
	// while no other connection is active, so resetting for one hub
	// never severs another that's already connected.
	Reset bool
}

// Transport is one connected hub's link: a single write-oriented
// characteristic and a single notify-oriented characteristic, modeled as
// one whole-frame pipe in each direction.
type Transport interface {
	// Write sends a single encoded frame to the hub.
	Write(ctx context.Context, frame []byte) error

	// EnableNotifications arms inbound frame delivery; handler is called
	// once per received frame, off the caller's goroutine.
	EnableNotifications(ctx context.Context, handler func(frame []byte)) error

	// Disconnect tears down the link. Idempotent.
	Disconnect() error

	// IsConnected reports whether the link is currently usable.
	IsConnected() bool

	// Name is the hub's advertised local name, cached at connect time.
	Name() string

	// Address is the hub's BLE MAC address.
	Address() string
}

// Dialer discovers and connects to a single hub matching opts.
type Dialer interface {
	Connect(ctx context.Context, opts ConnectOptions) (Transport, error)
}
