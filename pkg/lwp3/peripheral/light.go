package peripheral

import (
	"context"
	"fmt"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// Indexed colors accepted by LEDRGB.SetIndexedColor.
const (
	ColorBlack     byte = 0x00
	ColorPink      byte = 0x01
	ColorPurple    byte = 0x02
	ColorBlue      byte = 0x03
	ColorLightBlue byte = 0x04
	ColorCyan      byte = 0x05
	ColorGreen     byte = 0x06
	ColorYellow    byte = 0x07
	ColorOrange    byte = 0x08
	ColorRed       byte = 0x09
	ColorWhite     byte = 0x0A
	ColorNone      byte = 0xFF
)

var colorNames = map[byte]string{
	ColorBlack: "BLACK", ColorPink: "PINK", ColorPurple: "PURPLE", ColorBlue: "BLUE",
	ColorLightBlue: "LIGHTBLUE", ColorCyan: "CYAN", ColorGreen: "GREEN", ColorYellow: "YELLOW",
	ColorOrange: "ORANGE", ColorRed: "RED", ColorWhite: "WHITE", ColorNone: "NONE",
}

// LEDLight is a single-channel brightness light.
type LEDLight struct {
	*Peripheral
}

const modeBrightness byte = 0x00

// NewLEDLight builds an LEDLight peripheral; not virtual-groupable.
func NewLEDLight(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *LEDLight {
	return &LEDLight{Peripheral: New(sess, port, proto.DevLEDLight)}
}

// SetBrightness drives the light to the given brightness, 0-100.
func (l *LEDLight) SetBrightness(ctx context.Context, brightness byte) error {
	if err := l.SetPortMode(ctx, modeBrightness, false, 1); err != nil {
		return err
	}
	return l.WriteDirectMode(ctx, modeBrightness, []byte{brightness})
}

// LEDRGB is the hub's status light: indexed color or direct RGB.
type LEDRGB struct {
	*Peripheral
}

const (
	modeRGBIndex byte = 0x00
	modeRGBValue byte = 0x01
)

// NewLEDRGB builds the hub LED peripheral.
func NewLEDRGB(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *LEDRGB {
	l := &LEDRGB{Peripheral: New(sess, port, proto.DevRGBLight)}
	l.SetDecoder(l.decode)
	return l
}

// SetIndexedColor sets one of the fixed LEGO color indices.
func (l *LEDRGB) SetIndexedColor(ctx context.Context, color byte) error {
	if color == ColorNone {
		color = ColorBlack
	}
	if _, ok := colorNames[color]; !ok {
		return fmt.Errorf("%w: color 0x%02x is not a known LED color", ErrInvalidArgument, color)
	}
	if err := l.SetPortMode(ctx, modeRGBIndex, false, 1); err != nil {
		return err
	}
	return l.WriteDirectMode(ctx, modeRGBIndex, []byte{color})
}

// SetColor drives the LED directly with an RGB triple.
func (l *LEDRGB) SetColor(ctx context.Context, r, g, b byte) error {
	if err := l.SetPortMode(ctx, modeRGBValue, false, 1); err != nil {
		return err
	}
	return l.WriteDirectMode(ctx, modeRGBValue, []byte{r, g, b})
}

func (l *LEDRGB) decode(mode byte, raw []byte) ([]interface{}, error) {
	if len(raw) == 3 {
		return []interface{}{raw[0], raw[1], raw[2]}, nil
	}
	if len(raw) >= 1 {
		return []interface{}{raw[0]}, nil
	}
	return nil, proto.ErrInvalidFrame
}
