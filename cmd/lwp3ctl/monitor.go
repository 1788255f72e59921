package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Stream a sensor's live readings until a key is pressed",
	Long: `Subscribe to the peripheral attached at <port> in its default
mode and print every decoded value as it arrives. Press any key to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runMonitor,
}

var monitorMode uint8

func init() {
	monitorCmd.Flags().Uint8Var(&monitorMode, "mode", 0, "Mode to subscribe at")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	portName := args[0]
	h, _, err := dialHub(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = h.Disconnect(ctx) }()

	dev, ok := h.GetDeviceByPortName(portName)
	if !ok {
		return fmt.Errorf("port %q: %w", portName, ErrNoPortName)
	}
	base := dev.Base()

	id, err := base.Subscribe(ctx, func(values ...interface{}) {
		fmt.Printf("%s: %v\n", portName, values)
	}, byte(monitorMode), 1)
	if err != nil {
		return fmt.Errorf("subscribing to port %q: %w", portName, err)
	}
	defer func() { _ = base.Unsubscribe(ctx, id) }()

	return waitForKeypress(ctx)
}

// waitForKeypress blocks until stdin is a key press or ctx is done,
// putting the terminal into raw mode so a single byte is enough (no
// Enter required) and restoring cooked mode before returning.
func waitForKeypress(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		<-ctx.Done()
		return nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		<-ctx.Done()
		return nil
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 1)
		_, _ = os.Stdin.Read(buf)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}
