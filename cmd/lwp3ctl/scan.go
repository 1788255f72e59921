package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/spf13/cobra"

	"github.com/srg/lwp3hub/internal/transport/goble"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for advertising LWP3 hubs",
	Long: `Scan for nearby Bluetooth LE devices advertising the LWP3 hub
service and print their name, address and signal strength.`,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanAll      bool
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration (0 for indefinite)")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Show every BLE advertisement, not only LWP3 hubs")
}

type scanHit struct {
	name    string
	address string
	rssi    int
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	cmd.SilenceUsage = true

	dev, err := darwin.NewDevice()
	if err != nil {
		return fmt.Errorf("creating BLE device: %w", err)
	}
	ble.SetDefaultDevice(dev)

	baseCtx := cmd.Context()
	if scanDuration > 0 {
		var cancel context.CancelFunc
		baseCtx, cancel = context.WithTimeout(baseCtx, scanDuration)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer signal.Stop(sigCh)

	var mu sync.Mutex
	seen := map[string]scanHit{}

	logger.Infof("lwp3ctl: scanning for %s (Ctrl+C to stop)", describeDuration(scanDuration))
	err = ble.Scan(ctx, true, func(adv ble.Advertisement) {
		if !scanAll && !advertisesLWP3(adv) {
			return
		}
		mu.Lock()
		seen[adv.Addr().String()] = scanHit{
			name:    adv.LocalName(),
			address: adv.Addr().String(),
			rssi:    adv.RSSI(),
		}
		mu.Unlock()
	}, nil)
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return fmt.Errorf("scanning: %w", err)
	}

	mu.Lock()
	hits := make([]scanHit, 0, len(seen))
	for _, h := range seen {
		hits = append(hits, h)
	}
	mu.Unlock()
	sort.Slice(hits, func(i, j int) bool { return hits[i].rssi > hits[j].rssi })

	printScanResults(hits)
	return nil
}

func describeDuration(d time.Duration) string {
	if d <= 0 {
		return "indefinitely"
	}
	return d.String()
}

func advertisesLWP3(adv ble.Advertisement) bool {
	for _, u := range adv.Services() {
		if strings.EqualFold(strings.ReplaceAll(u.String(), "-", ""), goble.ServiceUUID) {
			return true
		}
	}
	return false
}

func printScanResults(hits []scanHit) {
	if len(hits) == 0 {
		fmt.Println("no devices found")
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, bold("NAME")+"\t"+bold("ADDRESS")+"\t"+bold("RSSI"))
	for _, h := range hits {
		name := h.name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", name, h.address, h.rssi)
	}
	_ = w.Flush()
}
