// Package peripheral implements the per-port state machine shared by
// every attached LWP3 device: mode configuration, the single-slot value
// queue and its worker, subscriber fan-out, and output command dispatch.
// Device-specific decoders and command builders live alongside, one file
// per device family, and compose a *Peripheral rather than subclass it.
package peripheral

import (
	"context"
	"fmt"
	"sync"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// Device is implemented by every peripheral variant (each embeds
// *Peripheral, which promotes Base()). The registry stores peripherals
// as Device so it never needs to know the concrete variant type.
type Device interface {
	Base() *Peripheral
}

// Session is the slice of the hub session a peripheral needs: synchronous
// send with reply rendezvous, and a logger. Implemented by *hub.Hub; kept
// as an interface here so this package never imports hub (hub imports
// this package to hold attached peripherals).
type Session interface {
	Send(ctx context.Context, msg proto.Downstream) (proto.Message, error)
	Logger() *logrus.Logger
	AddMessageHandler(kind proto.Kind, fn func(proto.Message))
	// SystemType returns the cached HubProperties(SYSTEM_TYPE_ID) byte,
	// used by VoltageSensor/CurrentSensor to pick the right scaling table.
	SystemType() byte
}

// Decoder turns a raw PortValueSingle/Combined payload into the
// peripheral's mode-specific typed tuple.
type Decoder func(mode byte, raw []byte) ([]interface{}, error)

// Callback receives a decoded value tuple; argument count and types
// depend on the peripheral's active mode.
type Callback func(values ...interface{})

type formatState int

const (
	formatUnset formatState = iota
	formatAwaitingAck
	formatActive
)

// PortMode is the cached (mode, delta, enabled) triple.
type PortMode struct {
	Mode    byte
	Delta   uint32
	Enabled bool
}

// Peripheral is the common state every attached LWP3 device shares.
// Device variants embed it and add mode constants, a Decoder, and
// command methods built on SendOutput/WriteDirectMode/SendCmd.
type Peripheral struct {
	sess       Session
	port       byte
	deviceType proto.DeviceType
	virtual    bool
	portA      byte
	portB      byte
	buffered   bool
	decode     Decoder

	mu       sync.Mutex
	formatSt formatState
	current  PortMode

	subMu   sync.Mutex
	nextSub int
	subs    *orderedmap.OrderedMap[int, Callback]

	queue  mpmc.RichOverlappedRingBuffer[[]byte]
	notify chan struct{}
	done   chan struct{}
}

// New constructs a peripheral bound to port and wires its worker
// goroutine. decode is typically set by the concrete variant's
// constructor via SetDecoder before New returns control to the caller.
func New(sess Session, port byte, deviceType proto.DeviceType) *Peripheral {
	p := &Peripheral{
		sess:       sess,
		port:       port,
		deviceType: deviceType,
		subs:       orderedmap.New[int, Callback](),
		// Two ring slots; EnqueueValue's IsEmpty guard keeps at most one
		// value queued.
		queue:      mpmc.NewOverlappedRingBuffer[[]byte](2),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	go p.worker()
	return p
}

// NewVirtual constructs a peripheral addressed by a composed port id,
// recording the two physical ports it groups.
func NewVirtual(sess Session, port byte, deviceType proto.DeviceType, a, b byte) *Peripheral {
	p := New(sess, port, deviceType)
	p.virtual = true
	p.portA, p.portB = a, b
	return p
}

// Base satisfies the registry's Device interface: every variant embeds
// *Peripheral, so this is promoted automatically.
func (p *Peripheral) Base() *Peripheral { return p }

func (p *Peripheral) Port() byte                { return p.port }
func (p *Peripheral) DeviceType() proto.DeviceType { return p.deviceType }
func (p *Peripheral) IsVirtual() bool            { return p.virtual }
func (p *Peripheral) ComposingPorts() (byte, byte) { return p.portA, p.portB }

// SetDecoder installs the peripheral-specific mode decoder. Called once
// by the variant constructor.
func (p *Peripheral) SetDecoder(d Decoder) { p.decode = d }

// SetBuffered toggles whether outgoing PortOutput commands queue behind
// an in-flight one instead of requesting immediate feedback.
func (p *Peripheral) SetBuffered(buffered bool) { p.buffered = buffered }

// Close stops the peripheral's worker. Called by the registry on detach.
func (p *Peripheral) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// outputSubcommand returns subcmd, offset by +1 for virtual ports per
// the LWP3 "grouped" command convention.
func (p *Peripheral) outputSubcommand(subcmd byte) byte {
	if p.virtual {
		return subcmd + 1
	}
	return subcmd
}

// SendOutput issues a PortOutput command with the given subcommand and
// params, exactly as passed. It blocks for the PortOutputFeedback unless
// the peripheral is in buffered mode.
func (p *Peripheral) SendOutput(ctx context.Context, subcmd byte, params []byte) error {
	cmd := proto.NewPortOutput(p.port, proto.PortOutputSubCommand(subcmd), params)
	cmd.Buffered = p.buffered
	cmd.Feedback = !p.buffered
	reply, err := p.sess.Send(ctx, cmd)
	if err != nil {
		return err
	}
	if fb, ok := reply.(*proto.PortOutputFeedback); ok {
		if st, found := fb.Status(p.port); found && st.Discarded() {
			return ErrOutputDiscarded
		}
	}
	return nil
}

// WriteDirectMode composes a WRITE_DIRECT_MODE_DATA (0x51) output: mode
// byte followed by params. The grouped +1 offset never applies here; any
// grouping is expressed inside the mode-specific payload instead.
func (p *Peripheral) WriteDirectMode(ctx context.Context, mode byte, params []byte) error {
	body := append([]byte{mode}, params...)
	return p.SendOutput(ctx, byte(proto.SubCmdWriteDirectModeData), body)
}

// SendCmd composes a raw output subcommand, offset by +1 for virtual
// ports per the grouped command convention.
func (p *Peripheral) SendCmd(ctx context.Context, subcmd byte, params []byte) error {
	return p.SendOutput(ctx, p.outputSubcommand(subcmd), params)
}

// SetPortMode sets (mode, enabled, delta), no-op if already current.
// It blocks until PortInputFormatSingle acknowledges.
func (p *Peripheral) SetPortMode(ctx context.Context, mode byte, enabled bool, delta uint32) error {
	p.mu.Lock()
	if p.formatSt == formatActive && p.current.Mode == mode && p.current.Enabled == enabled && p.current.Delta == delta {
		p.mu.Unlock()
		return nil
	}
	p.formatSt = formatAwaitingAck
	p.mu.Unlock()

	setup := proto.NewPortInputFormatSetupSingle(p.port, mode, delta, enabled)
	reply, err := p.sess.Send(ctx, setup)
	if err != nil {
		p.mu.Lock()
		p.formatSt = formatUnset
		p.mu.Unlock()
		return err
	}
	ack, ok := reply.(*proto.PortInputFormatSingle)
	if !ok {
		p.mu.Lock()
		p.formatSt = formatUnset
		p.mu.Unlock()
		return fmt.Errorf("peripheral: unexpected reply %T to port mode setup", reply)
	}

	p.mu.Lock()
	p.formatSt = formatActive
	p.current = PortMode{Mode: ack.Mode, Delta: ack.UpdateDelta, Enabled: ack.UpdatesEnabled}
	p.mu.Unlock()
	return nil
}

// CurrentMode returns the cached port-mode state.
func (p *Peripheral) CurrentMode() PortMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers cb for mode updates at the given delta. Fails with
// InvalidState if a different mode already has subscribers.
func (p *Peripheral) Subscribe(ctx context.Context, cb Callback, mode byte, delta uint32) (int, error) {
	p.subMu.Lock()
	if p.subs.Len() > 0 {
		cur := p.CurrentMode()
		if cur.Mode != mode {
			p.subMu.Unlock()
			return 0, invalidStateModeConflict(cur.Mode, mode)
		}
	}
	p.subMu.Unlock()

	if err := p.SetPortMode(ctx, mode, true, delta); err != nil {
		return 0, err
	}

	p.subMu.Lock()
	defer p.subMu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs.Set(id, cb)
	return id, nil
}

// Unsubscribe removes the subscriber with the given id. If no
// subscribers remain, the port mode is disabled to quiet the device.
func (p *Peripheral) Unsubscribe(ctx context.Context, id int) error {
	p.subMu.Lock()
	p.subs.Delete(id)
	empty := p.subs.Len() == 0
	p.subMu.Unlock()

	if empty {
		cur := p.CurrentMode()
		return p.SetPortMode(ctx, cur.Mode, false, cur.Delta)
	}
	return nil
}

// EnqueueValue delivers a raw value payload to the peripheral's
// single-slot queue, dropping the newest on overflow.
// Called from the hub's notify-handling goroutine; must never block.
//
// The underlying ring buffer's native overflow behavior overwrites the
// oldest queued entry; the IsEmpty check below keeps this a true
// drop-newest slot instead by refusing to enqueue at all once occupied,
// so EnqueueM is only ever called against an empty buffer and never
// actually overwrites anything.
func (p *Peripheral) EnqueueValue(raw []byte) {
	if !p.queue.IsEmpty() {
		// Worker is still processing the prior value; discard this one.
		return
	}
	if _, err := p.queue.EnqueueM(raw); err != nil {
		return
	}
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *Peripheral) worker() {
	for {
		select {
		case <-p.done:
			return
		case <-p.notify:
			for !p.queue.IsEmpty() {
				raw, err := p.queue.Dequeue()
				if err != nil {
					break
				}
				p.dispatch(raw)
			}
		}
	}
}

func (p *Peripheral) dispatch(raw []byte) {
	if p.decode == nil {
		return
	}
	mode := p.CurrentMode().Mode
	values, err := p.decode(mode, raw)
	if err != nil {
		if p.sess != nil && p.sess.Logger() != nil {
			p.sess.Logger().WithError(err).WithField("port", p.port).Warn("lwp3: peripheral decode failed")
		}
		return
	}

	p.subMu.Lock()
	snapshot := make([]Callback, 0, p.subs.Len())
	for pair := p.subs.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, pair.Value)
	}
	p.subMu.Unlock()

	for _, cb := range snapshot {
		p.safeInvoke(cb, values)
	}
}

func (p *Peripheral) safeInvoke(cb Callback, values []interface{}) {
	defer func() {
		if r := recover(); r != nil && p.sess != nil && p.sess.Logger() != nil {
			p.sess.Logger().WithField("port", p.port).Errorf("lwp3: subscriber callback panicked: %v", r)
		}
	}()
	cb(values...)
}

// GetSensorData optionally sets mode then issues a one-shot
// PortInfoRequest(PORT_VALUE) and decodes the result.
func (p *Peripheral) GetSensorData(ctx context.Context, mode *byte) ([]interface{}, error) {
	if mode != nil {
		if err := p.SetPortMode(ctx, *mode, p.CurrentMode().Enabled, p.CurrentMode().Delta); err != nil {
			return nil, err
		}
	}
	req := proto.NewPortInfoRequest(p.port, proto.InfoPortValue)
	reply, err := p.sess.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var raw []byte
	switch v := reply.(type) {
	case *proto.PortValueSingle:
		raw = v.Value
	case *proto.PortValueCombined:
		raw = v.Value
	default:
		return nil, fmt.Errorf("peripheral: unexpected reply %T to port value request", reply)
	}
	return p.decode(p.CurrentMode().Mode, raw)
}

// ModeDescription is one facet of a mode as reported by
// PortModeInfoRequest/PortModeInfo.
type ModeDescription struct {
	Mode       byte
	Name       string
	RawRange   *proto.RangeValue
	PctRange   *proto.RangeValue
	SIRange    *proto.RangeValue
	Units      string
	Mapping    *proto.MappingValue
	MotorBias  byte
	ValueFmt   *proto.ValueFormat
}

// DescribePossibleModes enumerates every mode the port reports and every
// facet LWP3 defines for it. A failure probing any facet other than Name
// is tolerated and leaves that facet nil; a Name failure aborts
// enumeration for that mode.
func (p *Peripheral) DescribePossibleModes(ctx context.Context) ([]ModeDescription, [][]int, error) {
	modeInfo, err := p.sess.Send(ctx, proto.NewPortInfoRequest(p.port, proto.InfoModeInfo))
	if err != nil {
		return nil, nil, err
	}
	pi, ok := modeInfo.(*proto.PortInfo)
	if !ok {
		return nil, nil, fmt.Errorf("peripheral: unexpected reply %T to mode-info request", modeInfo)
	}

	var combos [][]int
	if pi.IsCombinable() {
		if combInfo, err := p.sess.Send(ctx, proto.NewPortInfoRequest(p.port, proto.InfoModeCombinations)); err == nil {
			if ci, ok := combInfo.(*proto.PortInfo); ok {
				combos = ci.PossibleModeCombinations
			}
		}
	}

	all := uniqueInts(pi.InputModes, pi.OutputModes)
	descs := make([]ModeDescription, 0, len(all))
	for _, mode := range all {
		d, err := p.describeMode(ctx, byte(mode))
		if err != nil {
			continue
		}
		descs = append(descs, d)
	}
	return descs, combos, nil
}

func (p *Peripheral) describeMode(ctx context.Context, mode byte) (ModeDescription, error) {
	d := ModeDescription{Mode: mode}

	name, err := p.queryModeInfo(ctx, mode, proto.ModeInfoName)
	if err != nil {
		return d, err
	}
	d.Name = name.Name

	for _, kind := range []proto.PortModeInfoKind{
		proto.ModeInfoRawRange, proto.ModeInfoPctRange, proto.ModeInfoSIRange,
		proto.ModeInfoUnits, proto.ModeInfoMapping, proto.ModeInfoMotorBias, proto.ModeInfoValueFormat,
	} {
		info, err := p.queryModeInfo(ctx, mode, kind)
		if err != nil {
			continue
		}
		switch kind {
		case proto.ModeInfoRawRange:
			d.RawRange = info.Range
		case proto.ModeInfoPctRange:
			d.PctRange = info.Range
		case proto.ModeInfoSIRange:
			d.SIRange = info.Range
		case proto.ModeInfoUnits:
			d.Units = info.Units
		case proto.ModeInfoMapping:
			d.Mapping = info.Mapping
		case proto.ModeInfoMotorBias:
			d.MotorBias = info.MotorBias
		case proto.ModeInfoValueFormat:
			d.ValueFmt = info.ValueFmt
		}
	}
	return d, nil
}

func (p *Peripheral) queryModeInfo(ctx context.Context, mode byte, kind proto.PortModeInfoKind) (*proto.PortModeInfo, error) {
	reply, err := p.sess.Send(ctx, proto.NewPortModeInfoRequest(p.port, mode, kind))
	if err != nil {
		return nil, err
	}
	pmi, ok := reply.(*proto.PortModeInfo)
	if !ok {
		return nil, fmt.Errorf("peripheral: unexpected reply %T to mode-info request", reply)
	}
	return pmi, nil
}

func uniqueInts(lists ...[]int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// ErrInvalidState is returned when a command is rejected because of the
// peripheral's current subscription/mode state.
var ErrInvalidState = fmt.Errorf("peripheral: invalid state")

// ErrOutputDiscarded is returned when the hub reports it threw away an
// output command instead of executing it.
var ErrOutputDiscarded = fmt.Errorf("peripheral: output command discarded")

// ErrInvalidArgument is returned when a command method rejects an argument
// outright rather than clamping or coercing it,
// e.g. an unrecognized LED color index.
var ErrInvalidArgument = fmt.Errorf("peripheral: invalid argument")

func invalidStateModeConflict(current, requested byte) error {
	return fmt.Errorf("%w: mode %d has active subscribers, cannot subscribe at mode %d", ErrInvalidState, current, requested)
}
