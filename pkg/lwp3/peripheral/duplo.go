package peripheral

import (
	"context"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// DuploTrainColorSensor modes.
const (
	DuploColorMode        byte = 0x00
	DuploReflectivityMode byte = 0x02
	DuploRGBMode          byte = 0x03
)

// DuploTrainColorSensor is the Duplo train base's color/reflectivity
// sensor.
type DuploTrainColorSensor struct {
	*Peripheral
}

// NewDuploTrainColorSensor builds the Duplo train color sensor.
func NewDuploTrainColorSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *DuploTrainColorSensor {
	s := &DuploTrainColorSensor{Peripheral: New(sess, port, proto.DevDuploTrainBaseColorSensor)}
	s.SetDecoder(s.decode)
	return s
}

func (s *DuploTrainColorSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	switch mode {
	case DuploColorMode, DuploReflectivityMode:
		if len(raw) < 1 {
			return nil, proto.ErrInvalidFrame
		}
		return []interface{}{int(raw[0])}, nil
	case DuploRGBMode:
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
		return []interface{}{int(r), int(g), int(b)}, nil
	default:
		return nil, nil
	}
}

// DuploTrainBaseSpeaker plays canned sounds or tones.
type DuploTrainBaseSpeaker struct {
	*Peripheral
}

const (
	duploModeSound byte = 0x01
	duploModeTone  byte = 0x02
)

// NewDuploTrainBaseSpeaker builds the Duplo train base speaker.
func NewDuploTrainBaseSpeaker(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *DuploTrainBaseSpeaker {
	return &DuploTrainBaseSpeaker{Peripheral: New(sess, port, proto.DevDuploTrainBaseSpeaker)}
}

// PlaySound plays one of the base's built-in sound effects.
func (s *DuploTrainBaseSpeaker) PlaySound(ctx context.Context, sound byte) error {
	if err := s.SetPortMode(ctx, duploModeSound, false, 1); err != nil {
		return err
	}
	return s.WriteDirectMode(ctx, duploModeSound, []byte{sound})
}

// PlayTone plays one of the base's built-in tones.
func (s *DuploTrainBaseSpeaker) PlayTone(ctx context.Context, tone byte) error {
	if err := s.SetPortMode(ctx, duploModeTone, false, 1); err != nil {
		return err
	}
	return s.WriteDirectMode(ctx, duploModeTone, []byte{tone})
}

// DuploTrainBaseSpeedometer reports signed speed changes.
type DuploTrainBaseSpeedometer struct {
	*Peripheral
}

const duploModeSpeed byte = 0x00

// NewDuploTrainBaseSpeedometer builds the Duplo train base speedometer.
func NewDuploTrainBaseSpeedometer(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *DuploTrainBaseSpeedometer {
	s := &DuploTrainBaseSpeedometer{Peripheral: New(sess, port, proto.DevDuploTrainBaseSpeedometer)}
	s.SetDecoder(s.decode)
	return s
}

func (s *DuploTrainBaseSpeedometer) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != duploModeSpeed {
		return nil, nil
	}
	v, err := bytesutil.I16(raw, 0)
	if err != nil {
		return nil, err
	}
	return []interface{}{int(v)}, nil
}
