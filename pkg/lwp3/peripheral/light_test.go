package peripheral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// SetIndexedColor(COLOR_YELLOW) must emit exactly two frames,
// in order: a PortInputFormatSetupSingle enabling
// mode 0 at delta 1 with updates disabled, then a PortOutput carrying the
// WRITE_DIRECT_MODE_DATA payload `00 07`.
func TestLEDRGB_SetIndexedColorEmitsSetupThenOutput(t *testing.T) {
	sess := newFakeSession()
	sess.reply = &proto.PortInputFormatSingle{Port: 0x32, Mode: 0, UpdateDelta: 1, UpdatesEnabled: false}
	led := NewLEDRGB(sess, 0x32, proto.DevRGBLight, false, 0, 0)

	// SetPortMode's ack must reflect mode 0 before the PortOutput goes
	// out, so install it before the disabled-update ack too: both
	// replies are identical here since the mode doesn't change.
	require.NoError(t, led.SetIndexedColor(context.Background(), ColorYellow))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	require.Len(t, sess.requests, 2)

	setup, ok := sess.requests[0].(*proto.PortInputFormatSetupSingle)
	require.True(t, ok)
	assert.Equal(t, byte(0x32), setup.Port)
	assert.Equal(t, byte(0), setup.Mode)
	assert.Equal(t, uint32(1), setup.UpdateDelta)
	assert.False(t, setup.UpdateEnabled)

	out, ok := sess.requests[1].(*proto.PortOutput)
	require.True(t, ok)
	assert.Equal(t, byte(0x32), out.Port)
	assert.Equal(t, byte(proto.SubCmdWriteDirectModeData), byte(out.SubCommand))
	assert.Equal(t, []byte{0x00, 0x07}, out.Params)
	assert.False(t, out.Buffered)
	assert.True(t, out.Feedback)
}

// ColorNone coerces to ColorBlack rather than being rejected.
func TestLEDRGB_SetIndexedColorCoercesNone(t *testing.T) {
	sess := newFakeSession()
	sess.reply = &proto.PortInputFormatSingle{Port: 0, Mode: 0, UpdateDelta: 1, UpdatesEnabled: false}
	led := NewLEDRGB(sess, 0, proto.DevRGBLight, false, 0, 0)

	require.NoError(t, led.SetIndexedColor(context.Background(), ColorNone))

	sess.mu.Lock()
	out := sess.requests[len(sess.requests)-1].(*proto.PortOutput)
	sess.mu.Unlock()
	assert.Equal(t, []byte{0x00, byte(ColorBlack)}, out.Params)
}

// An unrecognized color index is rejected outright.
func TestLEDRGB_SetIndexedColorRejectsUnknown(t *testing.T) {
	sess := newFakeSession()
	led := NewLEDRGB(sess, 0, proto.DevRGBLight, false, 0, 0)

	err := led.SetIndexedColor(context.Background(), 0x42)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLEDRGB_DecodeRGBOrIndex(t *testing.T) {
	led := NewLEDRGB(newFakeSession(), 0, proto.DevRGBLight, false, 0, 0)

	vals, err := led.decode(modeRGBValue, []byte{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{byte(10), byte(20), byte(30)}, vals)

	vals, err = led.decode(modeRGBIndex, []byte{ColorGreen})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{byte(ColorGreen)}, vals)
}
