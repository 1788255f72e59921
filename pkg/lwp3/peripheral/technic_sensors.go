package peripheral

import (
	"context"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// TechnicColorSensor modes.
const (
	TechColorMode        byte = 0x00
	TechReflectivityMode byte = 0x01
	TechAmbientLightMode byte = 0x02
)

// TechnicColorSensor is the Spike Prime color sensor.
type TechnicColorSensor struct {
	*Peripheral
}

// NewTechnicColorSensor builds the Spike Prime color sensor.
func NewTechnicColorSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicColorSensor {
	s := &TechnicColorSensor{Peripheral: New(sess, port, proto.DevTechnicColorSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicColorSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if len(raw) < 1 {
		return nil, proto.ErrInvalidFrame
	}
	switch mode {
	case TechColorMode:
		if raw[0] <= 10 {
			return []interface{}{int(raw[0])}, nil
		}
		return nil, nil
	case TechReflectivityMode, TechAmbientLightMode:
		return []interface{}{int(raw[0])}, nil
	default:
		return nil, nil
	}
}

// TechnicDistanceSensor modes.
const (
	TechDistanceMode     byte = 0x00
	TechFastDistanceMode byte = 0x01
	techSetBrightness    byte = 0x05
)

// TechnicDistanceSensor is the Spike Prime distance sensor.
type TechnicDistanceSensor struct {
	*Peripheral
}

// NewTechnicDistanceSensor builds the Spike Prime distance sensor.
func NewTechnicDistanceSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicDistanceSensor {
	s := &TechnicDistanceSensor{Peripheral: New(sess, port, proto.DevTechnicDistanceSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicDistanceSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	switch mode {
	case TechDistanceMode, TechFastDistanceMode:
		v, err := bytesutil.U16(raw, 0)
		if err != nil {
			return nil, err
		}
		return []interface{}{int(v)}, nil
	default:
		return nil, nil
	}
}

// SetBrightness sets the brightness of the sensor's four "eye" LEDs.
func (s *TechnicDistanceSensor) SetBrightness(ctx context.Context, topLeft, topRight, bottomLeft, bottomRight byte) error {
	if err := s.SetPortMode(ctx, techSetBrightness, false, 1); err != nil {
		return err
	}
	params := []byte{topLeft, topRight, bottomLeft, bottomRight}
	return s.WriteDirectMode(ctx, techSetBrightness, params)
}

// TechnicForceSensor modes.
const (
	TechForceMode   byte = 0x00
	TechTouchedMode byte = 0x01
	TechTappedMode  byte = 0x02
)

// TechnicForceSensor is the Spike Prime force/touch sensor.
type TechnicForceSensor struct {
	*Peripheral
}

// NewTechnicForceSensor builds the Spike Prime force sensor.
func NewTechnicForceSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *TechnicForceSensor {
	s := &TechnicForceSensor{Peripheral: New(sess, port, proto.DevTechnicForceSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *TechnicForceSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if len(raw) < 1 {
		return nil, proto.ErrInvalidFrame
	}
	switch mode {
	case TechForceMode:
		return []interface{}{int(raw[0])}, nil
	case TechTouchedMode:
		return []interface{}{raw[0] != 0}, nil
	case TechTappedMode:
		return []interface{}{int(raw[0])}, nil
	default:
		return nil, nil
	}
}

// MotionSensor is the WeDo2/Boost PIR-style motion/distance sensor.
type MotionSensor struct {
	*Peripheral
}

const motionModeDistance byte = 0x00

// NewMotionSensor builds the motion sensor.
func NewMotionSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *MotionSensor {
	s := &MotionSensor{Peripheral: New(sess, port, proto.DevMotionSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *MotionSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != motionModeDistance {
		return nil, nil
	}
	if len(raw) < 2 {
		return nil, proto.ErrInvalidFrame
	}
	distance := int(raw[0])
	if raw[1] == 1 {
		distance += 255
	}
	return []interface{}{distance * 10}, nil
}
