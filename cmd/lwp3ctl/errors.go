package main

import "errors"

// Command-level errors.
var (
	// ErrNoPortName indicates a motor/led/monitor command was given a
	// port name the connected hub doesn't currently recognize.
	ErrNoPortName = errors.New("no peripheral attached at that port")
	// ErrWrongPeripheralType indicates the peripheral at the requested
	// port exists but doesn't implement the command's expected surface
	// (e.g. "led" pointed at a motor port).
	ErrWrongPeripheralType = errors.New("peripheral at that port does not support this command")
)

// FormatUserError strips internal wrapping noise a CLI user doesn't need
// and returns a single-line message suitable for stderr.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
