package hub

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// fakeTransport answers every synchronous request a Hub sends during
// construction and teardown, and single-mode port input format setups,
// by synthesizing the matching upstream reply,
// simulating firmware behavior closely enough to drive the rendezvous
// logic without a real BLE link.
type fakeTransport struct {
	mu         sync.Mutex
	handler    func([]byte)
	writes     [][]byte
	props      map[proto.Property][]byte
	name, addr string
	connected  bool
	silent     bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		props: map[proto.Property][]byte{
			proto.PropertyAdvertiseName: []byte("Test Hub"),
			proto.PropertyPrimaryMAC:    {0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			proto.PropertySystemTypeID:  {SystemTypeMoveHub},
			proto.PropertyFWVersion:     {0x34, 0x12, 0x07, 0x10},
		},
		name:      "Test Hub",
		addr:      "00:11:22:33:44:55",
		connected: true,
	}
}

func (ft *fakeTransport) Write(ctx context.Context, frame []byte) error {
	ft.mu.Lock()
	ft.writes = append(ft.writes, frame)
	handler := ft.handler
	silent := ft.silent
	ft.mu.Unlock()
	if silent {
		return nil
	}

	msgType, body, err := proto.DecodeFrame(frame)
	if err != nil {
		return nil
	}
	if proto.Kind(msgType) == proto.KindPortInputFormatSetupSingle {
		// The setup kind has no decoder; its body (port, mode, delta u32
		// LE, enabled) has the same layout as the PortInputFormatSingle
		// ack, so the body is echoed back under the ack's kind.
		if handler != nil {
			if ack, err := proto.EncodeFrame(byte(proto.KindPortInputFormatSingle), body); err == nil {
				handler(ack)
			}
		}
		return nil
	}
	msg, err := proto.Decode(msgType, body)
	if err != nil || handler == nil {
		return nil
	}

	switch m := msg.(type) {
	case *proto.HubProperties:
		if !m.NeedsReply() {
			return nil
		}
		params := ft.props[m.PropertyID]
		reply := &proto.HubProperties{PropertyID: m.PropertyID, Operation: proto.OpUpstreamUpdate, Parameters: params}
		ft.deliver(handler, reply)
	case *proto.HubAction:
		if !m.NeedsReply() {
			return nil
		}
		var ack proto.Action
		switch m.Value {
		case proto.ActionDisconnect:
			ack = proto.ActionUpstreamDisconnect
		case proto.ActionSwitchOff:
			ack = proto.ActionUpstreamShutdown
		}
		ft.deliver(handler, &proto.HubAction{Value: ack})
	}
	return nil
}

func (ft *fakeTransport) deliver(handler func([]byte), msg proto.Downstream) {
	frame, err := proto.EncodeFrame(byte(msg.Kind()), msg.Encode())
	if err != nil {
		return
	}
	handler(frame)
}

func (ft *fakeTransport) EnableNotifications(ctx context.Context, handler func([]byte)) error {
	ft.mu.Lock()
	ft.handler = handler
	ft.mu.Unlock()
	return nil
}

func (ft *fakeTransport) Disconnect() error { ft.connected = false; return nil }
func (ft *fakeTransport) IsConnected() bool { return ft.connected }
func (ft *fakeTransport) Name() string      { return ft.name }
func (ft *fakeTransport) Address() string   { return ft.addr }

// encodeHubAttachedIO builds the raw frame for an attach/detach
// notification; HubAttachedIO is upstream-only and has no Encode method
// of its own, so tests that need to simulate one build the wire body
// directly from decodeHubAttachedIO's documented layout.
func encodeHubAttachedIO(port byte, event proto.AttachEvent, devType proto.DeviceType) []byte {
	body := []byte{
		port, byte(event),
		byte(devType), byte(devType >> 8),
		0, 0, 1, 0, // hardware version BCD
		0, 0, 1, 0, // software version BCD
	}
	frame, _ := proto.EncodeFrame(byte(proto.KindHubAttachedIO), body)
	return frame
}

// encodePortValueSingle builds the raw frame for a single-mode port value
// notification; PortValueSingle is likewise upstream-only.
func encodePortValueSingle(port byte, value []byte) []byte {
	body := append([]byte{port}, value...)
	frame, _ := proto.EncodeFrame(byte(proto.KindPortValueSingle), body)
	return frame
}

// emptyPortsModel mirrors MoveHub but declares no internal ports, so
// New's WaitForDevices returns immediately instead of polling.
var emptyPortsModel = Model{
	Name:         "Test Hub Model",
	SystemTypeID: SystemTypeMoveHub,
	PortNames:    map[string]byte{"A": 0x00, "B": 0x01},
}

func newTestHub(t *testing.T) (*Hub, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := New(ctx, ft, logger, emptyPortsModel, nil, nil)
	require.NoError(t, err)
	return h, ft
}

func TestHub_New_CachesIdentity(t *testing.T) {
	h, _ := newTestHub(t)

	id := h.Identity()
	assert.Equal(t, "Test Hub", id.AdvertiseName)
	assert.Equal(t, "00:11:22:33:44:55", id.PrimaryMAC)
	assert.Equal(t, SystemTypeMoveHub, id.SystemTypeID)
}

// New's identity probe issues HubProperties(FW_VERSION, UPD_REQUEST)
// synchronously via Send and decodes the UPSTREAM_UPDATE reply's BCD
// parameters into a version string.
func TestHub_New_DecodesFirmwareVersionFromUpstreamUpdate(t *testing.T) {
	h, ft := newTestHub(t)

	id := h.Identity()
	assert.Equal(t, "1.0.07.1234", id.FirmwareVer)

	var sawRequest bool
	for _, w := range ft.writes {
		msgType, body, err := proto.DecodeFrame(w)
		require.NoError(t, err)
		msg, err := proto.Decode(msgType, body)
		require.NoError(t, err)
		hp, ok := msg.(*proto.HubProperties)
		if ok && hp.PropertyID == proto.PropertyFWVersion && hp.Operation == proto.OpUpdateRequest {
			sawRequest = true
		}
	}
	assert.True(t, sawRequest, "expected a FW_VERSION UPD_REQUEST to have been sent")
}

func TestHub_CheckHubType(t *testing.T) {
	h, _ := newTestHub(t)
	assert.True(t, h.CheckHubType())
}

func TestHub_AttachedIODispatchesToRegistry(t *testing.T) {
	h, ft := newTestHub(t)

	ft.handler(encodeHubAttachedIO(0x00, proto.EventAttached, proto.DevTechnicLargeLinearMotor))

	dev, ok := h.GetDeviceByPortName("A")
	require.True(t, ok)
	assert.Equal(t, proto.DevTechnicLargeLinearMotor, dev.Base().DeviceType())
}

func TestHub_PortValueRoutesToPeripheralQueue(t *testing.T) {
	h, ft := newTestHub(t)

	ft.handler(encodeHubAttachedIO(0x00, proto.EventAttached, proto.DevTechnicLargeLinearMotor))

	dev, ok := h.GetDeviceByPortName("A")
	require.True(t, ok)

	got := make(chan byte, 1)
	dev.Base().SetDecoder(func(mode byte, raw []byte) ([]interface{}, error) {
		return []interface{}{raw[0]}, nil
	})
	id, err := dev.Base().Subscribe(context.Background(), func(values ...interface{}) {
		got <- values[0].(byte)
	}, 0, 1)
	_ = id
	require.NoError(t, err)

	ft.handler(encodePortValueSingle(0x00, []byte{7}))

	select {
	case v := <-got:
		assert.Equal(t, byte(7), v)
	case <-time.After(time.Second):
		t.Fatal("port value never reached subscriber")
	}
}

func TestHub_AddMessageHandlerReceivesDispatch(t *testing.T) {
	h, ft := newTestHub(t)

	seen := make(chan *proto.HubAlert, 1)
	h.AddMessageHandler(proto.KindHubAlert, func(m proto.Message) {
		if a, ok := m.(*proto.HubAlert); ok {
			seen <- a
		}
	})

	alertBody := []byte{byte(proto.AlertLowVoltage), byte(proto.AlertOpUpdate), 0x00}
	frame, _ := proto.EncodeFrame(byte(proto.KindHubAlert), alertBody)
	ft.handler(frame)

	select {
	case a := <-seen:
		assert.Equal(t, proto.AlertLowVoltage, a.Type)
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestHub_Disconnect(t *testing.T) {
	h, ft := newTestHub(t)

	err := h.Disconnect(context.Background())
	require.NoError(t, err)
	assert.False(t, ft.connected)
}

func TestHub_SendTimesOutWithConfiguredRequestTimeout(t *testing.T) {
	ft := newFakeTransport()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h, err := New(context.Background(), ft, logger, emptyPortsModel, nil, nil,
		WithRequestTimeout(50*time.Millisecond))
	require.NoError(t, err)

	ft.mu.Lock()
	ft.silent = true
	ft.mu.Unlock()

	_, err = h.Send(context.Background(), proto.NewHubProperties(proto.PropertyBatteryType, proto.OpUpdateRequest))
	assert.ErrorIs(t, err, ErrTimedOut)
}

func TestHub_SendReturnsErrorWhenNoReplyArrivesBeforeContextDeadline(t *testing.T) {
	h, ft := newTestHub(t)
	ft.mu.Lock()
	ft.silent = true // stop answering: Send must fall back to ctx.Done()
	ft.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Send(ctx, proto.NewHubProperties(proto.PropertyBatteryType, proto.OpUpdateRequest))
	assert.Error(t, err)
}
