package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPropertiesEncodeDecode(t *testing.T) {
	m := NewHubProperties(PropertyAdvertiseName, OpUpdateRequest)
	assert.True(t, m.NeedsReply())
	encoded := m.Encode()

	decoded, err := Decode(byte(KindHubProperties), encoded)
	require.NoError(t, err)
	hp, ok := decoded.(*HubProperties)
	require.True(t, ok)
	assert.Equal(t, PropertyAdvertiseName, hp.PropertyID)
	assert.Equal(t, OpUpdateRequest, hp.Operation)

	reply := &HubProperties{PropertyID: PropertyAdvertiseName, Operation: OpUpstreamUpdate}
	assert.True(t, m.IsReply(reply))
	assert.False(t, m.IsReply(&HubProperties{PropertyID: PropertyBatteryVoltage, Operation: OpUpstreamUpdate}))
}

func TestHubActionReplyMatching(t *testing.T) {
	disc := NewHubAction(ActionDisconnect)
	assert.True(t, disc.NeedsReply())
	assert.True(t, disc.IsReply(&HubAction{Value: ActionUpstreamDisconnect}))
	assert.False(t, disc.IsReply(&HubAction{Value: ActionUpstreamShutdown}))

	off := NewHubAction(ActionSwitchOff)
	assert.True(t, off.IsReply(&HubAction{Value: ActionUpstreamShutdown}))

	busy := NewHubAction(ActionBusyIndicationOn)
	assert.False(t, busy.NeedsReply())
}

func TestHubAlertDecode(t *testing.T) {
	decoded, err := Decode(byte(KindHubAlert), []byte{byte(AlertLowVoltage), byte(AlertOpUpdate), 0x00})
	require.NoError(t, err)
	a, ok := decoded.(*HubAlert)
	require.True(t, ok)
	assert.True(t, a.IsOK())
	assert.Equal(t, "low voltage", a.Type.String())

	req := NewHubAlert(AlertLowVoltage, AlertOpRequest)
	assert.True(t, req.IsReply(a))
}

func TestHubAttachedIOAttached(t *testing.T) {
	body := []byte{
		0x00, byte(EventAttached),
		0x2E, 0x00, // device type LE u16 = TechnicLargeLinearMotor
		0x00, 0x00, 0x10, 0x00, // hardware version BCD
		0x00, 0x00, 0x10, 0x00, // software version BCD
	}
	decoded, err := Decode(byte(KindHubAttachedIO), body)
	require.NoError(t, err)
	io, ok := decoded.(*HubAttachedIO)
	require.True(t, ok)
	assert.Equal(t, DevTechnicLargeLinearMotor, io.DeviceType)
	assert.Equal(t, EventAttached, io.Event)
}

func TestHubAttachedIOVirtual(t *testing.T) {
	body := []byte{
		0x10, byte(EventAttachedVirtual),
		0x2E, 0x00, // device type LE u16
		0x00, 0x01, // composing physical ports
	}
	decoded, err := Decode(byte(KindHubAttachedIO), body)
	require.NoError(t, err)
	io := decoded.(*HubAttachedIO)
	assert.Equal(t, DevTechnicLargeLinearMotor, io.DeviceType)
	assert.Equal(t, byte(0x00), io.PortA)
	assert.Equal(t, byte(0x01), io.PortB)
}

func TestHubAttachedIODetached(t *testing.T) {
	decoded, err := Decode(byte(KindHubAttachedIO), []byte{0x01, byte(EventDetached)})
	require.NoError(t, err)
	io := decoded.(*HubAttachedIO)
	assert.Equal(t, byte(0x01), io.Port)
}

func TestGenericErrorAsPeerError(t *testing.T) {
	decoded, err := Decode(byte(KindGenericError), []byte{0x81, byte(ErrorInvalidParams)})
	require.NoError(t, err)
	ge := decoded.(*GenericError)
	pe := ge.AsPeerError()
	assert.Equal(t, ErrorInvalidParams, pe.Code)
	assert.Contains(t, pe.Error(), "0x81")
}

func TestPortInfoModeInfo(t *testing.T) {
	body := []byte{0x00, byte(InfoModeInfo), CapOutput | CapInput, 0x03, 0x03, 0x00, 0x02, 0x00}
	decoded, err := Decode(byte(KindPortInfo), body)
	require.NoError(t, err)
	pi := decoded.(*PortInfo)
	assert.True(t, pi.IsOutput())
	assert.True(t, pi.IsInput())
	assert.False(t, pi.IsCombinable())
	assert.Equal(t, []int{0, 1}, pi.InputModes)
	assert.Equal(t, []int{1}, pi.OutputModes)
}

func TestPortModeInfoName(t *testing.T) {
	body := append([]byte{0x00, 0x00, byte(ModeInfoName)}, []byte("POWER\x00")...)
	decoded, err := Decode(byte(KindPortModeInfo), body)
	require.NoError(t, err)
	pmi := decoded.(*PortModeInfo)
	assert.Equal(t, "POWER", pmi.Name)
}

func TestPortValueCombinedDatasets(t *testing.T) {
	decoded, err := Decode(byte(KindPortValueCombined), []byte{0x00, 0b00000101, 0x00, 0xAA, 0xBB})
	require.NoError(t, err)
	pvc := decoded.(*PortValueCombined)
	assert.Equal(t, []int{0, 2}, pvc.ConfiguredModeDatasets)
}

func TestPortOutputFeedbackMultiPort(t *testing.T) {
	decoded, err := Decode(byte(KindPortOutputFeedback), []byte{0x00, 0x02, 0x01, 0x08})
	require.NoError(t, err)
	pof := decoded.(*PortOutputFeedback)
	s0, ok := pof.Status(0x00)
	require.True(t, ok)
	assert.True(t, s0.Completed())
	s1, ok := pof.Status(0x01)
	require.True(t, ok)
	assert.True(t, s1.Idle())
}

func TestPortOutputIsReply(t *testing.T) {
	cmd := NewPortOutput(0x00, SubCmdWriteDirect, []byte{0x64})
	assert.True(t, cmd.NeedsReply())
	feedback := &PortOutputFeedback{Ports: []byte{0x00}, Statuses: []PortOutputFeedbackStatus{FeedbackCompleted}}
	assert.True(t, cmd.IsReply(feedback))
}

func TestVirtualPortSetupEncode(t *testing.T) {
	conn := NewVirtualPortConnect(0x00, 0x01)
	assert.Equal(t, []byte{byte(VirtualPortConnect), 0x00, 0x01}, conn.Encode())
	disc := NewVirtualPortDisconnect(0x10)
	assert.Equal(t, []byte{byte(VirtualPortDisconnect), 0x10}, disc.Encode())
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(0xFF, nil)
	assert.ErrorIs(t, err, ErrInvalidFrame)
}
