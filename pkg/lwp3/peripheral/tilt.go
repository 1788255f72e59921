package peripheral

import (
	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// GenericTiltSensor modes, shared by every WeDo/Boost-family tilt sensor.
const (
	TiltMode2AxisAngle  byte = 0x00
	TiltMode2AxisSimple byte = 0x01
	TiltMode3AxisSimple byte = 0x02
	TiltModeImpactCount byte = 0x03
	TiltMode3AxisAccel  byte = 0x04
	TiltModeOrientCF    byte = 0x05
	TiltModeImpactCF    byte = 0x06
	TiltModeCalibration byte = 0x07
)

// Three-axis ("tri") and two-axis ("duo") simple-orientation states.
const (
	TriBack  byte = 0x00
	TriUp    byte = 0x01
	TriDown  byte = 0x02
	TriLeft  byte = 0x03
	TriRight byte = 0x04
	TriFront byte = 0x05

	DuoHoriz byte = 0x00
	DuoDown  byte = 0x03
	DuoLeft  byte = 0x05
	DuoRight byte = 0x07
	DuoUp    byte = 0x09
)

// GenericTiltSensor is the WeDo2/Boost-era tilt sensor shared decode
// logic; TiltSensor and MoveHubTiltSensor only differ by device type.
type GenericTiltSensor struct {
	*Peripheral
}

func newGenericTiltSensor(sess Session, port byte, devType proto.DeviceType) *GenericTiltSensor {
	t := &GenericTiltSensor{Peripheral: New(sess, port, devType)}
	t.SetDecoder(t.decode)
	return t
}

// NewTiltSensor builds the standalone Boost tilt sensor.
func NewTiltSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *GenericTiltSensor {
	return newGenericTiltSensor(sess, port, proto.DevTilt)
}

// NewMoveHubTiltSensor builds the Move Hub's built-in tilt sensor.
func NewMoveHubTiltSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *GenericTiltSensor {
	return newGenericTiltSensor(sess, port, proto.DevMoveHubTilt)
}

func (t *GenericTiltSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	switch mode {
	case TiltMode2AxisAngle:
		if len(raw) < 2 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{int(int8(raw[0])), int(int8(raw[1]))}, nil
	case TiltMode3AxisSimple, TiltMode2AxisSimple, TiltModeOrientCF, TiltModeImpactCF:
		if len(raw) < 1 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{raw[0]}, nil
	case TiltModeImpactCount:
		v, err := bytesutil.U32(raw, 0)
		if err != nil {
			return nil, err
		}
		return []interface{}{int(v)}, nil
	case TiltMode3AxisAccel:
		if len(raw) < 3 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{int(int8(raw[0])), int(int8(raw[1])), int(int8(raw[2]))}, nil
	case TiltModeCalibration:
		if len(raw) < 3 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{raw[0], raw[1], raw[2]}, nil
	default:
		return nil, nil
	}
}
