package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/lwp3hub/internal/transport/goble"
	"github.com/srg/lwp3hub/pkg/lwp3/config"
	"github.com/srg/lwp3hub/pkg/lwp3/hub"
	"github.com/srg/lwp3hub/pkg/lwp3/transport"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a hub and report its identity",
	Long: `Scan for a hub matching --name/--address, connect, wait for its
internal peripherals to attach, and print a status summary before
disconnecting.`,
	RunE: runConnect,
}

func modelFor(name string) (hub.Model, error) {
	switch name {
	case "movehub", "":
		return hub.MoveHub, nil
	case "technichub":
		return hub.TechnicHub, nil
	default:
		return hub.Model{}, fmt.Errorf("unknown hub model %q (must be movehub or technichub)", name)
	}
}

// dialHub resolves config and flags, scans/connects a transport, and
// builds a *hub.Hub bound to the requested model policy. The caller is
// responsible for calling h.Disconnect.
func dialHub(ctx context.Context, cmd *cobra.Command) (*hub.Hub, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger()

	modelName, _ := cmd.Flags().GetString("hub-model")
	model, err := modelFor(modelName)
	if err != nil {
		return nil, nil, err
	}

	name, _ := cmd.Flags().GetString("name")
	partial, _ := cmd.Flags().GetBool("name-prefix")
	address, _ := cmd.Flags().GetString("address")
	reset, _ := cmd.Flags().GetBool("reset")

	dialer := goble.NewDialer(logger)
	tr, err := dialer.Connect(ctx, transport.ConnectOptions{
		Name:            name,
		Partial:         partial,
		Address:         address,
		ProhibitedAddrs: cfg.ProhibitedAddrs,
		Timeout:         cfg.ScanTimeout,
		ConnectTimeout:  cfg.ConnectTimeout,
		Reset:           reset,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to hub: %w", err)
	}

	h, err := hub.New(ctx, tr, logger, model, nil, nil,
		hub.WithRequestTimeout(cfg.RequestTimeout),
		hub.WithDeviceReadyTimeout(cfg.DeviceTimeout))
	if err != nil {
		_ = tr.Disconnect()
		return nil, nil, fmt.Errorf("establishing hub session: %w", err)
	}

	if !h.CheckHubType() {
		logger.Warnf("lwp3ctl: connected hub's system type does not match --hub-model=%s", modelName)
	}

	return h, cfg, nil
}

func runConnect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	h, _, err := dialHub(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = h.Disconnect(ctx) }()

	h.ReportStatus()
	return nil
}
