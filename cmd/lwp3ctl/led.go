package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srg/lwp3hub/pkg/lwp3/peripheral"
)

var ledCmd = &cobra.Command{
	Use:   "led <port> <brightness|color|r,g,b>",
	Short: "Drive an LEDLight's brightness or an LEDRGB's color",
	Long: `For a single-channel LEDLight, the value is a brightness 0-100.
For the hub's LEDRGB status light, the value is either a named LEGO
color (red, green, blue, ...) or an "r,g,b" triple, each 0-255.`,
	Args: cobra.ExactArgs(2),
	RunE: runLED,
}

var namedColors = map[string]byte{
	"black": peripheral.ColorBlack, "pink": peripheral.ColorPink, "purple": peripheral.ColorPurple,
	"blue": peripheral.ColorBlue, "lightblue": peripheral.ColorLightBlue, "cyan": peripheral.ColorCyan,
	"green": peripheral.ColorGreen, "yellow": peripheral.ColorYellow, "orange": peripheral.ColorOrange,
	"red": peripheral.ColorRed, "white": peripheral.ColorWhite, "none": peripheral.ColorNone,
}

func runLED(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	portName, value := args[0], args[1]

	h, _, err := dialHub(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = h.Disconnect(ctx) }()

	dev, ok := h.GetDeviceByPortName(portName)
	if !ok {
		return fmt.Errorf("port %q: %w", portName, ErrNoPortName)
	}

	switch l := dev.(type) {
	case *peripheral.LEDLight:
		brightness, err := strconv.Atoi(value)
		if err != nil || brightness < 0 || brightness > 100 {
			return fmt.Errorf("invalid brightness %q: must be 0-100", value)
		}
		return l.SetBrightness(ctx, byte(brightness))
	case *peripheral.LEDRGB:
		return setRGB(ctx, l, value)
	default:
		return fmt.Errorf("port %q: %w", portName, ErrWrongPeripheralType)
	}
}

func setRGB(ctx context.Context, l *peripheral.LEDRGB, value string) error {
	if color, ok := namedColors[strings.ToLower(value)]; ok {
		return l.SetIndexedColor(ctx, color)
	}

	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return fmt.Errorf("invalid color %q: must be a named color or \"r,g,b\"", value)
	}
	var rgb [3]byte
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return fmt.Errorf("invalid color component %q: must be 0-255", p)
		}
		rgb[i] = byte(v)
	}
	return l.SetColor(ctx, rgb[0], rgb[1], rgb[2])
}
