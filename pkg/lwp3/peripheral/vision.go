package peripheral

import (
	"context"
	"fmt"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// VisionSensor modes.
const (
	VisionColorIndex         byte = 0x00
	VisionDistanceInches     byte = 0x01
	VisionCount2Inch         byte = 0x02
	VisionDistanceReflected  byte = 0x03
	VisionAmbientLight       byte = 0x04
	VisionSetColor           byte = 0x05
	VisionColorRGB           byte = 0x06
	VisionSetIRTx            byte = 0x07
	VisionColorDistanceFloat byte = 0x08 // not advertised in the device's own mode info
	VisionDebug              byte = 0x09
	VisionCalibrate          byte = 0x0A
)

// VisionSensor is the Boost color/distance sensor.
type VisionSensor struct {
	*Peripheral
}

// NewVisionSensor builds the color/distance sensor peripheral.
func NewVisionSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *VisionSensor {
	s := &VisionSensor{Peripheral: New(sess, port, proto.DevVisionSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *VisionSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	switch mode {
	case VisionColorIndex, VisionDistanceInches:
		if len(raw) < 1 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{int(raw[0])}, nil
	case VisionColorDistanceFloat:
		if len(raw) < 4 {
			return nil, proto.ErrInvalidFrame
		}
		color := int(raw[0])
		distance := float64(raw[1])
		if partial := raw[3]; partial != 0 {
			distance += 1.0 / float64(partial)
		}
		return []interface{}{color, distance}, nil
	case VisionDistanceReflected:
		if len(raw) < 1 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{float64(raw[0]) / 100.0}, nil
	case VisionAmbientLight:
		if len(raw) < 1 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{float64(raw[0]) / 100.0}, nil
	case VisionCount2Inch:
		v, err := bytesutil.U32(raw, 0)
		if err != nil {
			return nil, err
		}
		return []interface{}{int(v)}, nil
	case VisionColorRGB:
		r, err := bytesutil.U16(raw, 0)
		if err != nil {
			return nil, err
		}
		g, err := bytesutil.U16(raw, 2)
		if err != nil {
			return nil, err
		}
		b, err := bytesutil.U16(raw, 4)
		if err != nil {
			return nil, err
		}
		scale := func(v uint16) int { return int(255 * float64(v) / 1023.0) }
		return []interface{}{scale(r), scale(g), scale(b)}, nil
	case VisionDebug:
		v1, err := bytesutil.U16(raw, 0)
		if err != nil {
			return nil, err
		}
		v2, err := bytesutil.U16(raw, 2)
		if err != nil {
			return nil, err
		}
		return []interface{}{10 * float64(v1) / 1023.0, 10 * float64(v2) / 1023.0}, nil
	case VisionCalibrate:
		out := make([]interface{}, 0, 8)
		for i := 0; i < 8; i++ {
			v, err := bytesutil.U16(raw, i*2)
			if err != nil {
				return nil, err
			}
			out = append(out, int(v))
		}
		return out, nil
	default:
		return nil, nil
	}
}

// SetColorMode requests indexed color reports and sets the sensor's
// output LED to that color.
func (s *VisionSensor) SetColorMode(ctx context.Context, color byte) error {
	if color == ColorNone {
		color = ColorBlack
	}
	if _, ok := colorNames[color]; !ok {
		return fmt.Errorf("%w: color 0x%02x is not a known LED color", ErrInvalidArgument, color)
	}
	if err := s.SetPortMode(ctx, VisionSetColor, false, 1); err != nil {
		return err
	}
	return s.WriteDirectMode(ctx, VisionSetColor, []byte{color})
}

// SetIRTx modulates the sensor's built-in IR transmitter, 0.0-1.0.
func (s *VisionSensor) SetIRTx(ctx context.Context, level float64) error {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	if err := s.SetPortMode(ctx, VisionSetIRTx, false, 1); err != nil {
		return err
	}
	params := bytesutil.PutU16(nil, uint16(level*65535))
	return s.WriteDirectMode(ctx, VisionSetIRTx, params)
}
