// Command lwp3ctl is a thin CLI over pkg/lwp3: scan for hubs, connect to
// one, and drive its motors/lights or watch its sensors from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "lwp3ctl",
	Short: "LEGO Wireless Protocol 3.0 hub control CLI",
	Long: `lwp3ctl drives LEGO Powered Up / Control+ hubs over Bluetooth LE:

- Scan for advertising hubs
- Connect and report identity, battery and attached peripherals
- Drive motors and lights
- Monitor a sensor's live readings from the terminal

It's built on the same LWP3 session, registry and peripheral packages any
Go program embedding hub control would use.`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(motorCmd)
	rootCmd.AddCommand(ledCmd)
	rootCmd.AddCommand(monitorCmd)

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("name", "", "Connect to the hub advertising this local name")
	rootCmd.PersistentFlags().Bool("name-prefix", false, "Match --name as a prefix instead of exact equality")
	rootCmd.PersistentFlags().String("address", "", "Connect to the hub at this BLE address")
	rootCmd.PersistentFlags().String("hub-model", "movehub", "Hub model policy to enforce: movehub, technichub")
	rootCmd.PersistentFlags().Duration("scan-timeout", 0, "Override the configured scan timeout")
	rootCmd.PersistentFlags().Bool("reset", false, "Reset the BLE controller before scanning (skipped while another connection is active)")
}
