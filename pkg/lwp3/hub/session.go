// Package hub implements the LWP3 hub session: frame I/O
// over a transport, the synchronous request/reply rendezvous, notify-path
// dispatch to registered handlers, and the cached hub identity/telemetry.
package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/peripheral"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
	"github.com/srg/lwp3hub/pkg/lwp3/registry"
	"github.com/srg/lwp3hub/pkg/lwp3/transport"
)

// Identity is the set of properties cached once at construction.
type Identity struct {
	AdvertiseName string
	PrimaryMAC    string
	SecondaryMAC  string
	SystemTypeID  byte
	Manufacturer  string
	FirmwareVer   string
	HardwareVer   string
}

// Telemetry is the passively-updated subset of identity.
type Telemetry struct {
	RSSI    int8
	Battery byte
}

type pendingRequest struct {
	msg   proto.Downstream
	reply chan pendingResult
}

type pendingResult struct {
	msg proto.Message
	err error
}

// RequestTimeout is the default bound on every synchronous send; the
// baseline protocol has no built-in timeout, so this implementation adds
// one. Override per hub with WithRequestTimeout.
const RequestTimeout = 2 * time.Second

// WaitForDevicesTimeout is the default bound on how long construction
// waits for the model's internal ports to attach.
// Override per hub with WithDeviceReadyTimeout.
const WaitForDevicesTimeout = 10 * time.Second

const waitForDevicesPoll = 100 * time.Millisecond

// Option adjusts a Hub at construction time.
type Option func(*Hub)

// WithRequestTimeout overrides the synchronous request/reply timeout,
// typically from config.Config.RequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// WithDeviceReadyTimeout overrides how long New waits for the model's
// internal ports to attach, typically from config.Config.DeviceTimeout.
func WithDeviceReadyTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.deviceTimeout = d
		}
	}
}

// Hub is one connected LWP3 session.
type Hub struct {
	tr     transport.Transport
	logger *logrus.Logger
	model  Model

	identity  Identity
	telemetry Telemetry
	telMu     sync.RWMutex

	names    *portNameMap
	registry *registry.Registry
	button   *peripheral.Button
	reasm    *proto.Reassembler

	sendMu  sync.Mutex
	pending *pendingRequest

	handlersMu sync.RWMutex
	handlers   map[proto.Kind][]func(proto.Message)

	requestTimeout time.Duration
	deviceTimeout  time.Duration

	disconnected chan struct{}
	closeOnce    sync.Once
}

// New constructs a Hub bound to tr, caches identity properties, and
// blocks (bounded) until the model's internal ports have attached.
// table/fallback resolve attach events to typed peripherals.
func New(ctx context.Context, tr transport.Transport, logger *logrus.Logger, model Model, table map[proto.DeviceType]registry.Constructor, fallback registry.Constructor, opts ...Option) (*Hub, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if table == nil {
		table = defaultDeviceTable()
	}
	if fallback == nil {
		fallback = wrap(peripheral.NewRawPeripheral)
	}
	h := &Hub{
		tr:             tr,
		logger:         logger,
		model:          model,
		names:          newPortNameMap(model),
		handlers:       make(map[proto.Kind][]func(proto.Message)),
		requestTimeout: RequestTimeout,
		deviceTimeout:  WaitForDevicesTimeout,
		disconnected:   make(chan struct{}),
		reasm:          proto.NewReassembler(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registry = registry.New(h, h, table, fallback)
	h.button = peripheral.NewButton(h)
	h.registerBuiltinHandlers()

	if err := tr.EnableNotifications(ctx, h.onNotify); err != nil {
		return nil, fmt.Errorf("hub: enabling notifications: %w", err)
	}

	if err := h.requestIdentity(ctx); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.deviceTimeout)
	defer cancel()
	h.WaitForDevices(waitCtx)

	h.ReportStatus()
	return h, nil
}

func (h *Hub) requestIdentity(ctx context.Context) error {
	type prop struct {
		id  proto.Property
		set func([]byte)
	}
	props := []prop{
		{proto.PropertyAdvertiseName, func(b []byte) { h.identity.AdvertiseName = string(b) }},
		{proto.PropertyPrimaryMAC, func(b []byte) { h.identity.PrimaryMAC = bytesutil.MAC(b) }},
		{proto.PropertySecondaryMAC, func(b []byte) { h.identity.SecondaryMAC = bytesutil.MAC(b) }},
		{proto.PropertySystemTypeID, func(b []byte) {
			if len(b) > 0 {
				h.identity.SystemTypeID = b[0]
			}
		}},
		{proto.PropertyManufacturer, func(b []byte) { h.identity.Manufacturer = string(b) }},
		{proto.PropertyFWVersion, func(b []byte) {
			if v, err := bytesutil.Version(b); err == nil {
				h.identity.FirmwareVer = v
			}
		}},
		{proto.PropertyHWVersion, func(b []byte) {
			if v, err := bytesutil.Version(b); err == nil {
				h.identity.HardwareVer = v
			}
		}},
	}

	for _, p := range props {
		reply, err := h.Send(ctx, proto.NewHubProperties(p.id, proto.OpUpdateRequest))
		if err != nil {
			h.logger.WithError(err).WithField("property", p.id).Warn("lwp3: identity property request failed")
			continue
		}
		if hp, ok := reply.(*proto.HubProperties); ok {
			h.telMu.Lock()
			p.set(hp.Parameters)
			h.telMu.Unlock()
		}
	}

	// Request the initial RSSI/battery readings, then enable passive
	// updates; the HubProperties handler caches both the one-shot replies
	// and every later UPSTREAM_UPDATE.
	for _, p := range []proto.Property{proto.PropertyRSSI, proto.PropertyBatteryVoltage} {
		if _, err := h.Send(ctx, proto.NewHubProperties(p, proto.OpUpdateRequest)); err != nil {
			h.logger.WithError(err).WithField("property", p).Warn("lwp3: telemetry property request failed")
		}
		if _, err := h.Send(ctx, proto.NewHubProperties(p, proto.OpUpdateEnable)); err != nil {
			h.logger.WithError(err).WithField("property", p).Warn("lwp3: enabling telemetry updates failed")
		}
	}
	return nil
}

// Send implements peripheral.Session: the synchronous request/reply
// rendezvous. If msg.NeedsReply() is false, it writes and returns.
func (h *Hub) Send(ctx context.Context, msg proto.Downstream) (proto.Message, error) {
	frame, err := proto.EncodeFrame(byte(msg.Kind()), msg.Encode())
	if err != nil {
		return nil, fmt.Errorf("hub: encoding %s: %w", msg.Kind(), err)
	}

	if !msg.NeedsReply() {
		if err := h.tr.Write(ctx, frame); err != nil {
			return nil, h.wrapTransportErr(err)
		}
		return nil, nil
	}

	h.sendMu.Lock()
	if h.pending != nil {
		h.sendMu.Unlock()
		return nil, NewInvalidState("a synchronous request is already outstanding")
	}
	pr := &pendingRequest{msg: msg, reply: make(chan pendingResult, 1)}
	h.pending = pr
	h.sendMu.Unlock()

	if err := h.tr.Write(ctx, frame); err != nil {
		h.clearPending(pr)
		return nil, h.wrapTransportErr(err)
	}

	select {
	case res := <-pr.reply:
		return res.msg, res.err
	case <-time.After(h.requestTimeout):
		h.clearPending(pr)
		return nil, ErrTimedOut
	case <-ctx.Done():
		h.clearPending(pr)
		return nil, ctx.Err()
	case <-h.disconnected:
		// The reply that acknowledged the disconnect may have been
		// settled in the same notify pass that closed the session;
		// prefer it over the blanket disconnect error.
		select {
		case res := <-pr.reply:
			return res.msg, res.err
		default:
		}
		h.clearPending(pr)
		return nil, ErrPeerDisconnected
	}
}

func (h *Hub) clearPending(pr *pendingRequest) {
	h.sendMu.Lock()
	if h.pending == pr {
		h.pending = nil
	}
	h.sendMu.Unlock()
}

func (h *Hub) wrapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("hub: transport write failed: %w", err)
}

// onNotify is the transport notify callback: it feeds the raw
// notification payload through the frame reassembler (a single frame may
// span more than one GATT notification, or a notification may carry more
// than one frame) and processes every whole frame that comes out.
func (h *Hub) onNotify(data []byte) {
	frames, err := h.reasm.Feed(data)
	if err != nil {
		h.logger.WithError(err).Warn("lwp3: frame reassembly failed")
		return
	}
	for _, frame := range frames {
		h.onFrame(frame)
	}
}

// onFrame decodes a single whole frame, settles any pending synchronous
// request it answers, and dispatches it to registered handlers.
// Must never block on user callbacks.
func (h *Hub) onFrame(frame []byte) {
	msgType, body, err := proto.DecodeFrame(frame)
	if err != nil {
		h.logger.WithError(err).Warn("lwp3: dropping malformed frame")
		return
	}
	msg, err := proto.Decode(msgType, body)
	if err != nil {
		h.logger.WithError(err).WithField("type", msgType).Warn("lwp3: dropping undecodable frame")
		return
	}

	h.sendMu.Lock()
	if pr := h.pending; pr != nil {
		if ge, ok := msg.(*proto.GenericError); ok {
			h.pending = nil
			pr.reply <- pendingResult{err: ge.AsPeerError()}
		} else if pr.msg.IsReply(msg) {
			h.pending = nil
			pr.reply <- pendingResult{msg: msg}
		}
	}
	h.sendMu.Unlock()

	h.dispatch(msg)
}

func (h *Hub) dispatch(msg proto.Message) {
	h.handlersMu.RLock()
	fns := append([]func(proto.Message){}, h.handlers[msg.Kind()]...)
	h.handlersMu.RUnlock()
	for _, fn := range fns {
		fn(msg)
	}
}

// AddMessageHandler registers fn to run, in addition to the built-in
// handlers, whenever a message of the given kind is dispatched.
func (h *Hub) AddMessageHandler(kind proto.Kind, fn func(proto.Message)) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	h.handlers[kind] = append(h.handlers[kind], fn)
}

func (h *Hub) registerBuiltinHandlers() {
	h.AddMessageHandler(proto.KindHubAttachedIO, func(m proto.Message) {
		if io, ok := m.(*proto.HubAttachedIO); ok {
			h.registry.HandleAttachedIO(io)
		}
	})
	h.AddMessageHandler(proto.KindPortValueSingle, func(m proto.Message) {
		if v, ok := m.(*proto.PortValueSingle); ok {
			if dev, ok := h.registry.Get(v.Port); ok {
				dev.Base().EnqueueValue(v.Value)
			}
		}
	})
	h.AddMessageHandler(proto.KindPortValueCombined, func(m proto.Message) {
		if v, ok := m.(*proto.PortValueCombined); ok {
			if dev, ok := h.registry.Get(v.Port); ok {
				dev.Base().EnqueueValue(v.Value)
			}
		}
	})
	h.AddMessageHandler(proto.KindGenericError, func(m proto.Message) {
		if ge, ok := m.(*proto.GenericError); ok {
			h.logger.WithError(ge.AsPeerError()).Warn("lwp3: peer reported error")
		}
	})
	h.AddMessageHandler(proto.KindHubAction, func(m proto.Message) {
		a, ok := m.(*proto.HubAction)
		if !ok {
			return
		}
		if a.Value == proto.ActionUpstreamShutdown || a.Value == proto.ActionUpstreamDisconnect {
			h.closeOnce.Do(func() { close(h.disconnected) })
			_ = h.tr.Disconnect()
		}
	})
	h.AddMessageHandler(proto.KindHubProperties, func(m proto.Message) {
		hp, ok := m.(*proto.HubProperties)
		if !ok || hp.Operation != proto.OpUpstreamUpdate {
			return
		}
		h.telMu.Lock()
		defer h.telMu.Unlock()
		switch hp.PropertyID {
		case proto.PropertyRSSI:
			if len(hp.Parameters) > 0 {
				h.telemetry.RSSI = int8(hp.Parameters[0])
			}
		case proto.PropertyBatteryVoltage:
			if len(hp.Parameters) > 0 {
				h.telemetry.Battery = hp.Parameters[0]
			}
		case proto.PropertyAdvertiseName:
			h.identity.AdvertiseName = string(hp.Parameters)
		}
	})
}

// Logger implements peripheral.Session.
func (h *Hub) Logger() *logrus.Logger { return h.logger }

// SystemType implements peripheral.Session.
func (h *Hub) SystemType() byte { return h.model.SystemTypeID }

// Identity returns a snapshot of the cached identity fields.
func (h *Hub) Identity() Identity {
	h.telMu.RLock()
	defer h.telMu.RUnlock()
	return h.identity
}

// Telemetry returns a snapshot of the cached RSSI/battery fields.
func (h *Hub) Telemetry() Telemetry {
	h.telMu.RLock()
	defer h.telMu.RUnlock()
	return h.telemetry
}

// RegisterVirtualName implements registry.NameRegistrar.
func (h *Hub) RegisterVirtualName(virtual, a, b byte) { h.names.addVirtual(virtual, a, b) }

// UnregisterPortName implements registry.NameRegistrar.
func (h *Hub) UnregisterPortName(port byte) { h.names.delete(port) }

// Button returns the hub's physical push-button pseudo-peripheral.
func (h *Hub) Button() *peripheral.Button { return h.button }

// GetDeviceByPortName resolves a symbolic port name ("A", "AB", ...) to
// its currently attached peripheral.
func (h *Hub) GetDeviceByPortName(name string) (peripheral.Device, bool) {
	port, ok := h.names.portByName(name)
	if !ok {
		return nil, false
	}
	return h.registry.Get(port)
}

// GetDevicesByType returns every attached peripheral of the given
// device-type id.
func (h *Hub) GetDevicesByType(t proto.DeviceType) []peripheral.Device {
	return h.registry.ByType(t)
}

// WaitForDevices polls until every internal port
// declared by the model has an attached peripheral, or ctx expires.
func (h *Hub) WaitForDevices(ctx context.Context) {
	ticker := time.NewTicker(waitForDevicesPoll)
	defer ticker.Stop()
	for {
		if h.allInternalPortsReady() {
			return
		}
		select {
		case <-ctx.Done():
			h.logger.Warn("lwp3: timed out waiting for internal ports to attach")
			return
		case <-ticker.C:
		}
	}
}

func (h *Hub) allInternalPortsReady() bool {
	for _, port := range h.model.InternalPorts {
		if _, ok := h.registry.Get(port); !ok {
			return false
		}
	}
	return true
}

// ReportStatus logs a colorized summary of hub identity and attachment
// state.
func (h *Hub) ReportStatus() {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	id := h.Identity()
	h.logger.Infof("%s: %s (%s), fw=%s hw=%s, %d peripherals attached",
		bold(h.model.Name), id.AdvertiseName, green(id.PrimaryMAC),
		id.FirmwareVer, id.HardwareVer, h.registry.Len())
}

// CheckHubType reports whether the cached system-type id matches the
// model this Hub was constructed with.
func (h *Hub) CheckHubType() bool {
	return h.Identity().SystemTypeID == h.model.SystemTypeID
}

// Disconnect quiesces telemetry, asks the hub to disconnect, waits for
// the upstream ack, and drops the transport.
func (h *Hub) Disconnect(ctx context.Context) error {
	_, _ = h.Send(ctx, proto.NewHubProperties(proto.PropertyRSSI, proto.OpUpdateDisable))
	_, _ = h.Send(ctx, proto.NewHubProperties(proto.PropertyBatteryVoltage, proto.OpUpdateDisable))

	_, err := h.Send(ctx, proto.NewHubAction(proto.ActionDisconnect))
	h.closeOnce.Do(func() { close(h.disconnected) })
	if derr := h.tr.Disconnect(); derr != nil && err == nil {
		err = derr
	}
	return err
}

// SwitchOff powers the hub down.
func (h *Hub) SwitchOff(ctx context.Context) error {
	_, err := h.Send(ctx, proto.NewHubAction(proto.ActionSwitchOff))
	h.closeOnce.Do(func() { close(h.disconnected) })
	return err
}
