package peripheral

import (
	"math"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// TechnicHubAccelerometerSensor reports the Technic/Control+ hub's
// built-in 3-axis accelerometer, in milli-g.
type TechnicHubAccelerometerSensor struct {
	*Peripheral
}

const modeAccel byte = 0x00

// NewTechnicHubAccelerometerSensor builds the Technic Hub's built-in
// accelerometer peripheral.
func NewTechnicHubAccelerometerSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicHubAccelerometerSensor {
	s := &TechnicHubAccelerometerSensor{Peripheral: New(sess, port, proto.DevTechnicHubAccelerometer)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicHubAccelerometerSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != modeAccel {
		return nil, nil
	}
	x, y, z, err := decodeXYZI16(raw)
	if err != nil {
		return nil, err
	}
	mg := func(v int16) int { return int(math.Round(float64(v) / 4.096)) }
	return []interface{}{mg(x), mg(y), mg(z)}, nil
}

// TechnicHubGyroSensor reports the hub's built-in 3-axis gyro, in
// degrees per second.
type TechnicHubGyroSensor struct {
	*Peripheral
}

const modeGyro byte = 0x00

// NewTechnicHubGyroSensor builds the Technic Hub's built-in gyro
// peripheral.
func NewTechnicHubGyroSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicHubGyroSensor {
	s := &TechnicHubGyroSensor{Peripheral: New(sess, port, proto.DevTechnicHubGyroSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicHubGyroSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != modeGyro {
		return nil, nil
	}
	x, y, z, err := decodeXYZI16(raw)
	if err != nil {
		return nil, err
	}
	scale := func(v int16) int { return int(math.Round(float64(v) * 7.0 / 400.0)) }
	return []interface{}{scale(x), scale(y), scale(z)}, nil
}

// TechnicHubTiltSensor reports the hub's built-in raw tilt axes, unlike
// GenericTiltSensor's discretized orientation states.
type TechnicHubTiltSensor struct {
	*Peripheral
}

const modeTiltRaw byte = 0x00

// NewTechnicHubTiltSensor builds the Technic Hub's built-in tilt
// peripheral.
func NewTechnicHubTiltSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicHubTiltSensor {
	s := &TechnicHubTiltSensor{Peripheral: New(sess, port, proto.DevTechnicHubTiltSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicHubTiltSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != modeTiltRaw {
		return nil, nil
	}
	x, y, z, err := decodeXYZI16(raw)
	if err != nil {
		return nil, err
	}
	return []interface{}{-int(x), int(y), int(z)}, nil
}

// TechnicHubTemperatureSensor reports the hub's internal temperature in
// tenths of a degree Celsius.
type TechnicHubTemperatureSensor struct {
	*Peripheral
}

const modeTemperature byte = 0x00

// NewTechnicHubTemperatureSensor builds the Technic Hub's built-in
// temperature peripheral.
func NewTechnicHubTemperatureSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicHubTemperatureSensor {
	s := &TechnicHubTemperatureSensor{Peripheral: New(sess, port, proto.DevTechnicHubTemperatureSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicHubTemperatureSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != modeTemperature {
		return nil, nil
	}
	v, err := bytesutil.I16(raw, 0)
	if err != nil {
		return nil, err
	}
	return []interface{}{float64(v) * 0.1}, nil
}

// TechnicHubGestureSensor is the Technic/Control+ hub's built-in gesture
// sensor. What the one-byte reading actually encodes is undocumented;
// the raw value is surfaced as-is.
// TODO: confirm what gesture values the hub firmware actually emits.
type TechnicHubGestureSensor struct {
	*Peripheral
}

const modeGesture byte = 0x00

// NewTechnicHubGestureSensor builds the Technic Hub's built-in gesture
// peripheral.
func NewTechnicHubGestureSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicHubGestureSensor {
	s := &TechnicHubGestureSensor{Peripheral: New(sess, port, proto.DevTechnicMediumHubGestSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicHubGestureSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != modeGesture {
		return nil, nil
	}
	if len(raw) < 1 {
		return nil, proto.ErrInvalidFrame
	}
	return []interface{}{raw[0]}, nil
}

func decodeXYZI16(raw []byte) (x, y, z int16, err error) {
	if x, err = bytesutil.I16(raw, 0); err != nil {
		return
	}
	if y, err = bytesutil.I16(raw, 2); err != nil {
		return
	}
	z, err = bytesutil.I16(raw, 4)
	return
}
