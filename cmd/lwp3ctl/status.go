package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/lwp3hub/pkg/lwp3/hub"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connect and print a detailed attachment table",
	RunE:  runStatus,
}

// knownDeviceTypes is the set of device-type ids this CLI bothers to
// list by name in the attachment table; anything else prints its raw id.
var knownDeviceTypes = map[proto.DeviceType]string{
	proto.DevLEDLight:                    "LED Light",
	proto.DevRGBLight:                    "LED RGB",
	proto.DevVoltage:                     "Voltage Sensor",
	proto.DevCurrent:                     "Current Sensor",
	proto.DevTilt:                        "Tilt Sensor",
	proto.DevMoveHubTilt:                 "Move Hub Tilt Sensor",
	proto.DevMotionSensor:                "Motion Sensor",
	proto.DevVisionSensor:                "Vision Sensor",
	proto.DevMediumLinearMotor:           "Medium Linear Motor",
	proto.DevMoveHubMediumLinearMotor:    "Move Hub Medium Motor",
	proto.DevTechnicLargeLinearMotor:     "Technic Large Motor",
	proto.DevTechnicXLargeLinearMotor:    "Technic XL Motor",
	proto.DevTechnicMediumAngularMotor:   "Technic Medium Angular Motor",
	proto.DevTechnicLargeAngularMotor:    "Technic Large Angular Motor",
	proto.DevRemoteControlButton:         "Remote Button",
	proto.DevTechnicMediumHubGestSensor:  "Gesture Sensor",
	proto.DevTechnicHubAccelerometer:     "Accelerometer",
	proto.DevTechnicHubGyroSensor:        "Gyro Sensor",
	proto.DevTechnicHubTiltSensor:        "Tilt Sensor",
	proto.DevTechnicHubTemperatureSensor: "Temperature Sensor",
	proto.DevTechnicColorSensor:          "Color Sensor",
	proto.DevTechnicDistanceSensor:       "Distance Sensor",
	proto.DevTechnicForceSensor:          "Force Sensor",
}

func deviceTypeName(t proto.DeviceType) string {
	if name, ok := knownDeviceTypes[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", uint16(t))
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	h, _, err := dialHub(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = h.Disconnect(ctx) }()

	printStatus(h)
	return nil
}

func printStatus(h *hub.Hub) {
	id := h.Identity()
	tel := h.Telemetry()
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Printf("%s  %s\n", bold(id.AdvertiseName), green(id.PrimaryMAC))
	fmt.Printf("  firmware %s, hardware %s, battery %d%%, rssi %d dBm\n",
		id.FirmwareVer, id.HardwareVer, tel.Battery, tel.RSSI)

	type row struct {
		port    byte
		name    string
		virtual bool
	}
	var rows []row
	for _, t := range allKnownDeviceTypes() {
		for _, dev := range h.GetDevicesByType(t) {
			b := dev.Base()
			rows = append(rows, row{b.Port(), deviceTypeName(b.DeviceType()), b.IsVirtual()})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].port < rows[j].port })

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, bold("PORT")+"\t"+bold("TYPE")+"\t"+bold("VIRTUAL"))
	for _, r := range rows {
		fmt.Fprintf(w, "0x%02x\t%s\t%v\n", r.port, r.name, r.virtual)
	}
	_ = w.Flush()
}

func allKnownDeviceTypes() []proto.DeviceType {
	types := make([]proto.DeviceType, 0, len(knownDeviceTypes))
	for t := range knownDeviceTypes {
		types = append(types, t)
	}
	return types
}
