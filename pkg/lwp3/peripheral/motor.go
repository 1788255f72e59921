package peripheral

import (
	"context"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// End states accepted by every motor output command.
const (
	EndStateFloat byte = 0
	EndStateHold  byte = 126
	EndStateBrake byte = 127
)

const (
	subcmdStartPower         = 0x00
	subcmdStartPowerGrouped  = 0x03
	subcmdSetAccTime         = 0x05
	subcmdSetDecTime         = 0x06
	subcmdStartSpeed         = 0x07
	subcmdStartSpeed2        = 0x08
	subcmdStartSpeedForTime  = 0x09
	subcmdStartSpeedForTime2 = 0x0A
	subcmdStartSpeedForDeg   = 0x0B
	subcmdStartSpeedForDeg2  = 0x0C
	subcmdGotoAbsPosition    = 0x0D
	subcmdGotoAbsPosition2   = 0x0E
	subcmdPresetEncoder      = 0x14
)

// Tacho sensor modes, shared by TachoMotor and AbsMotor.
const (
	SensorPower  byte = 0x00
	SensorSpeed  byte = 0x01
	SensorAngle  byte = 0x02
	SensorAbsPos byte = 0x03
)

// BasicMotor is the power-only motor family (train/simple motors): no
// tacho feedback, just SetPower.
type BasicMotor struct {
	*Peripheral
}

func newBasicMotor(sess Session, port byte, devType proto.DeviceType, virtual bool, a, b byte) *BasicMotor {
	var base *Peripheral
	if virtual {
		base = NewVirtual(sess, port, devType, a, b)
	} else {
		base = New(sess, port, devType)
	}
	return &BasicMotor{Peripheral: base}
}

// NewSimpleMediumLinearMotor builds the WeDo-family medium motor.
func NewSimpleMediumLinearMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *BasicMotor {
	return newBasicMotor(sess, port, proto.DevSimpleMediumLinearMotor, virtual, a, b)
}

// NewSystemTrainMotor builds a Powered Up train motor.
func NewSystemTrainMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *BasicMotor {
	return newBasicMotor(sess, port, proto.DevSystemTrainMotor, virtual, a, b)
}

// NewDuploTrainBaseMotor builds a Duplo train base motor.
func NewDuploTrainBaseMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *BasicMotor {
	return newBasicMotor(sess, port, proto.DevDuploTrainBaseMotor, virtual, a, b)
}

func mapSpeed(speed int) int8 {
	switch byte(speed) {
	case EndStateBrake, EndStateHold:
		return int8(speed)
	}
	if speed < -100 {
		speed = -100
	}
	if speed > 100 {
		speed = 100
	}
	return int8(speed)
}

func (m *BasicMotor) writeDirectMode(ctx context.Context, subcmd byte, params []byte) error {
	return m.WriteDirectMode(ctx, subcmd, params)
}

func (m *BasicMotor) sendCmd(ctx context.Context, subcmd byte, params []byte) error {
	return m.SendCmd(ctx, subcmd, params)
}

// SetPower drives the motor(s) at the given power level; -100..100, or
// EndStateBrake/EndStateHold.
func (m *BasicMotor) SetPower(ctx context.Context, primary int, secondary *int) error {
	var sec *int8
	if m.IsVirtual() && secondary == nil {
		secondary = &primary
	}
	params := []byte{byte(mapSpeed(primary))}
	if secondary != nil {
		v := mapSpeed(*secondary)
		sec = &v
		params = append(params, byte(v))
	}
	subcmd := byte(subcmdStartPower)
	if sec != nil {
		subcmd = subcmdStartPowerGrouped
	}
	return m.writeDirectMode(ctx, subcmd, params)
}

// Stop sets power to zero.
func (m *BasicMotor) Stop(ctx context.Context) error { return m.SetPower(ctx, 0, nil) }

// Brake applies the braking end state (EndStateBrake).
func (m *BasicMotor) Brake(ctx context.Context) error { return m.SetPower(ctx, int(EndStateBrake), nil) }

// TachoMotor adds rotation-sensor feedback and speed/angle output
// commands on top of BasicMotor.
type TachoMotor struct {
	*BasicMotor
}

func newTachoMotor(sess Session, port byte, devType proto.DeviceType, virtual bool, a, b byte) *TachoMotor {
	t := &TachoMotor{BasicMotor: newBasicMotor(sess, port, devType, virtual, a, b)}
	t.SetDecoder(t.decode)
	return t
}

// NewMediumLinearMotor builds a Powered Up medium linear motor.
func NewMediumLinearMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TachoMotor {
	return newTachoMotor(sess, port, proto.DevMediumLinearMotor, virtual, a, b)
}

// NewMoveHubMediumLinearMotor builds the Move Hub's built-in motor.
func NewMoveHubMediumLinearMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TachoMotor {
	return newTachoMotor(sess, port, proto.DevMoveHubMediumLinearMotor, virtual, a, b)
}

func (t *TachoMotor) decode(mode byte, raw []byte) ([]interface{}, error) {
	switch mode {
	case SensorAngle:
		v, err := bytesutil.I32(raw, 0)
		if err != nil {
			return nil, err
		}
		return []interface{}{int(v)}, nil
	case SensorSpeed:
		if len(raw) < 1 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{int(int8(raw[0]))}, nil
	default:
		return nil, nil
	}
}

// SetAccelerationProfile sets how long (seconds) the motor takes to ramp
// 0 to 100% power.
func (t *TachoMotor) SetAccelerationProfile(ctx context.Context, seconds float64, profile byte) error {
	params := bytesutil.PutU16(nil, uint16(seconds*1000))
	params = bytesutil.PutU8(params, profile)
	return t.sendCmd(ctx, subcmdSetAccTime, params)
}

// SetDecelerationProfile sets how long (seconds) the motor takes to ramp
// down to a stop.
func (t *TachoMotor) SetDecelerationProfile(ctx context.Context, seconds float64, profile byte) error {
	params := bytesutil.PutU16(nil, uint16(seconds*1000))
	params = bytesutil.PutU8(params, profile)
	return t.sendCmd(ctx, subcmdSetDecTime, params)
}

// SetSpeed starts (or holds) the motor(s) at the given speed without
// exceeding maxPower.
func (t *TachoMotor) SetSpeed(ctx context.Context, primary int, secondary *int, maxPower byte, profile byte) error {
	if t.IsVirtual() && secondary == nil {
		secondary = &primary
	}
	subcmd := byte(subcmdStartSpeed)
	params := []byte{byte(mapSpeed(primary))}
	if secondary != nil {
		subcmd = subcmdStartSpeed2
		params = append(params, byte(mapSpeed(*secondary)))
	}
	params = append(params, maxPower, profile)
	return t.sendCmd(ctx, subcmd, params)
}

// RunForTime runs the motor(s) for seconds at the given speed, then
// settles to endState.
func (t *TachoMotor) RunForTime(ctx context.Context, seconds float64, primary int, secondary *int, maxPower, endState, profile byte) error {
	if t.IsVirtual() && secondary == nil {
		secondary = &primary
	}
	subcmd := byte(subcmdStartSpeedForTime)
	params := bytesutil.PutU16(nil, uint16(seconds*1000))
	params = append(params, byte(mapSpeed(primary)))
	if secondary != nil {
		subcmd = subcmdStartSpeedForTime2
		params = append(params, byte(mapSpeed(*secondary)))
	}
	params = append(params, maxPower, endState, profile)
	return t.sendCmd(ctx, subcmd, params)
}

// RotateByAngle rotates the motor(s) by degrees at the given speed;
// negative degrees reverse direction.
func (t *TachoMotor) RotateByAngle(ctx context.Context, degrees int, primary int, secondary *int, maxPower, endState, profile byte) error {
	if t.IsVirtual() && secondary == nil {
		secondary = &primary
	}
	if degrees < 0 {
		degrees = -degrees
		primary = -primary
		if secondary != nil {
			neg := -*secondary
			secondary = &neg
		}
	}
	subcmd := byte(subcmdStartSpeedForDeg)
	params := bytesutil.PutU32(nil, uint32(degrees))
	params = append(params, byte(mapSpeed(primary)))
	if secondary != nil {
		subcmd = subcmdStartSpeedForDeg2
		params = append(params, byte(mapSpeed(*secondary)))
	}
	params = append(params, maxPower, endState, profile)
	return t.sendCmd(ctx, subcmd, params)
}

// Stop runs the motor for zero seconds, bringing it to an immediate
// controlled stop.
func (t *TachoMotor) Stop(ctx context.Context) error {
	return t.RunForTime(ctx, 0, 100, nil, 100, EndStateBrake, 0b11)
}

// AbsMotor adds absolute-position awareness (Technic angular motors):
// goto-position and encoder-preset commands, plus SENSOR_ABSOLUTE
// decoding.
type AbsMotor struct {
	*TachoMotor
}

func newAbsMotor(sess Session, port byte, devType proto.DeviceType, virtual bool, a, b byte) *AbsMotor {
	m := &AbsMotor{TachoMotor: newTachoMotor(sess, port, devType, virtual, a, b)}
	m.SetDecoder(m.decode)
	return m
}

// NewTechnicMediumAngularMotor builds a Spike Prime medium angular motor.
func NewTechnicMediumAngularMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *AbsMotor {
	return newAbsMotor(sess, port, proto.DevTechnicMediumAngularMotor, virtual, a, b)
}

// NewTechnicLargeAngularMotor builds a Spike Prime large angular motor.
func NewTechnicLargeAngularMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *AbsMotor {
	return newAbsMotor(sess, port, proto.DevTechnicLargeAngularMotor, virtual, a, b)
}

// NewTechnicLargeLinearMotor builds a Control+ large linear motor.
func NewTechnicLargeLinearMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *AbsMotor {
	return newAbsMotor(sess, port, proto.DevTechnicLargeLinearMotor, virtual, a, b)
}

// NewTechnicXLargeLinearMotor builds a Control+ XL linear motor.
func NewTechnicXLargeLinearMotor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *AbsMotor {
	return newAbsMotor(sess, port, proto.DevTechnicXLargeLinearMotor, virtual, a, b)
}

func (m *AbsMotor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode == SensorAbsPos {
		v, err := bytesutil.I16(raw, 0)
		if err != nil {
			return nil, err
		}
		return []interface{}{int(v)}, nil
	}
	return m.TachoMotor.decode(mode, raw)
}

// normalizeAngle wraps degrees into [-180, 180], matching the protocol's
// shortest-path convention for absolute goto commands: only as many full
// turns are removed as needed to bring the value back in range, so
// angles that are an exact multiple of 360 apart from 180 keep the sign
// of the original input (540 -> 180, -540 -> -180) rather than
// collapsing to a single canonical residue.
func normalizeAngle(angle int) int {
	for angle > 180 {
		angle -= 360
	}
	for angle < -180 {
		angle += 360
	}
	return angle
}

// roundToNearest90 snaps angle to the nearest cardinal orientation,
// matching the four-corner tilt convention used by goto_abs_position
// callers that only care about quadrant.
func roundToNearest90(angle int) int {
	angle = normalizeAngle(angle)
	switch {
	case angle < -135:
		return -180
	case angle < -45:
		return -90
	case angle < 45:
		return 0
	case angle < 135:
		return 90
	default:
		return -180
	}
}

// GotoAbsolutePosition rotates the motor(s) to an absolute angle.
func (m *AbsMotor) GotoAbsolutePosition(ctx context.Context, degrees int, secondary *int, speed int, maxPower, endState, profile byte) error {
	if m.IsVirtual() && secondary == nil {
		secondary = &degrees
	}
	subcmd := byte(subcmdGotoAbsPosition)
	params := bytesutil.PutU32(nil, uint32(int32(normalizeAngle(degrees))))
	if secondary != nil {
		subcmd = subcmdGotoAbsPosition2
		params = append(params, bytesutil.PutU32(nil, uint32(int32(normalizeAngle(*secondary))))...)
	}
	params = append(params, byte(mapSpeed(speed)), maxPower, endState, profile)
	return m.sendCmd(ctx, subcmd, params)
}

// PresetEncoder resets the motor's absolute-angle origin to degrees.
func (m *AbsMotor) PresetEncoder(ctx context.Context, degrees int, secondary *int, onlyIndividual bool) error {
	if m.IsVirtual() && secondary == nil {
		secondary = &degrees
	}
	if onlyIndividual && secondary != nil {
		params := bytesutil.PutU32(nil, uint32(int32(degrees)))
		params = append(params, bytesutil.PutU32(nil, uint32(int32(*secondary)))...)
		return m.sendCmd(ctx, subcmdPresetEncoder, params)
	}
	return m.writeDirectMode(ctx, SensorAngle, bytesutil.PutU32(nil, uint32(int32(degrees))))
}
