package peripheral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

func lastPortOutput(t *testing.T, sess *fakeSession) *proto.PortOutput {
	t.Helper()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	require.NotEmpty(t, sess.requests)
	out, ok := sess.requests[len(sess.requests)-1].(*proto.PortOutput)
	require.True(t, ok, "expected last request to be a PortOutput, got %T", sess.requests[len(sess.requests)-1])
	return out
}

// RotateByAngle(-90, 50) must emit subcmd 0x0B with params matching the
// protocol layout: degrees(u32 LE), speed(i8), max_power, end_state, profile.
func TestTachoMotor_RotateByAngleByteLayout(t *testing.T) {
	sess := newFakeSession()
	sess.setReply(&proto.PortOutputFeedback{Ports: []byte{0}, Statuses: []proto.PortOutputFeedbackStatus{proto.FeedbackCompleted}})
	m := newTachoMotor(sess, 0, proto.DevMediumLinearMotor, false, 0, 0)

	err := m.RotateByAngle(context.Background(), -90, 50, nil, 100, EndStateBrake, 0b11)
	require.NoError(t, err)

	out := lastPortOutput(t, sess)
	assert.Equal(t, byte(subcmdStartSpeedForDeg), byte(out.SubCommand))
	assert.Equal(t, []byte{0x5A, 0x00, 0x00, 0x00, 0xCE, 0x64, 0x7F, 0x03}, out.Params)
}

// Absolute target angles normalize to [-180, 180], preserving the sign of
// inputs that are an exact multiple of 360 away from the boundary rather
// than collapsing to one canonical residue.
func TestAbsMotor_GotoAbsolutePositionNormalizesAngle(t *testing.T) {
	sess := newFakeSession()
	sess.setReply(&proto.PortOutputFeedback{Ports: []byte{0}, Statuses: []proto.PortOutputFeedbackStatus{proto.FeedbackCompleted}})
	m := newAbsMotor(sess, 0, proto.DevTechnicLargeAngularMotor, false, 0, 0)

	require.NoError(t, m.GotoAbsolutePosition(context.Background(), 540, nil, 50, 100, EndStateBrake, 0b11))
	out := lastPortOutput(t, sess)
	assert.Equal(t, int32(180), int32FromLE(out.Params[0:4]))

	require.NoError(t, m.GotoAbsolutePosition(context.Background(), -540, nil, 50, 100, EndStateBrake, 0b11))
	out = lastPortOutput(t, sess)
	assert.Equal(t, int32(-180), int32FromLE(out.Params[0:4]))
}

func int32FromLE(b []byte) int32 {
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[int]int{
		540:  180,
		-540: -180,
		0:    0,
		180:  180,
		-180: -180,
		90:   90,
		-270: 90,
		270:  -90,
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeAngle(in), "normalizeAngle(%d)", in)
	}
}

func TestRoundToNearest90(t *testing.T) {
	cases := map[int]int{
		0:   0,
		44:  0,
		46:  90,
		134: 90,
		136: -180,
		-44: 0,
		-46: -90,
	}
	for in, want := range cases {
		assert.Equal(t, want, roundToNearest90(in), "roundToNearest90(%d)", in)
	}
}

// mapSpeed passes the END_STATE sentinels through unclamped but clamps
// ordinary speeds to [-100,100].
func TestMapSpeed(t *testing.T) {
	assert.Equal(t, int8(EndStateBrake), mapSpeed(int(EndStateBrake)))
	assert.Equal(t, int8(EndStateHold), mapSpeed(int(EndStateHold)))
	assert.Equal(t, int8(100), mapSpeed(150))
	assert.Equal(t, int8(-100), mapSpeed(-150))
	assert.Equal(t, int8(50), mapSpeed(50))
}

// A virtual BasicMotor.SetPower with only a primary argument expands to
// both ports at the same power, using the grouped subcommand.
func TestBasicMotor_VirtualSetPowerExpandsToGroupedPair(t *testing.T) {
	sess := newFakeSession()
	sess.setReply(&proto.PortOutputFeedback{Ports: []byte{10}, Statuses: []proto.PortOutputFeedbackStatus{proto.FeedbackCompleted}})
	m := newBasicMotor(sess, 10, proto.DevSystemTrainMotor, true, 0, 1)

	require.NoError(t, m.SetPower(context.Background(), 42, nil))

	out := lastPortOutput(t, sess)
	assert.Equal(t, byte(proto.SubCmdWriteDirectModeData), byte(out.SubCommand))
	assert.Equal(t, byte(subcmdStartPowerGrouped), out.Params[0])
	assert.Equal(t, []byte{byte(subcmdStartPowerGrouped), 42, 42}, out.Params)
}
