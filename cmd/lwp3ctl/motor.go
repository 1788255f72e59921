package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/lwp3hub/pkg/lwp3/peripheral"
)

var motorCmd = &cobra.Command{
	Use:   "motor <port> <power>",
	Short: "Drive a motor at a constant power, or for a fixed time/angle",
	Long: `Set a motor's power (-100..100). With --time, run at that power
for the given duration and then brake. With --degrees, rotate by that
many degrees and then brake. Both require the port to resolve to a
tachometer-equipped motor.`,
	Args: cobra.ExactArgs(2),
	RunE: runMotor,
}

var (
	motorTime    float64
	motorDegrees int
	motorMax     byte
)

func init() {
	motorCmd.Flags().Float64Var(&motorTime, "time", 0, "Run for this many seconds, then brake")
	motorCmd.Flags().IntVar(&motorDegrees, "degrees", 0, "Rotate by this many degrees, then brake")
	motorCmd.Flags().Uint8Var(&motorMax, "max-power", 100, "Max power percentage for timed/angle moves")
}

func runMotor(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	portName := args[0]
	var power int
	if _, err := fmt.Sscanf(args[1], "%d", &power); err != nil {
		return fmt.Errorf("invalid power %q: %w", args[1], err)
	}

	h, _, err := dialHub(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = h.Disconnect(ctx) }()

	dev, ok := h.GetDeviceByPortName(portName)
	if !ok {
		return fmt.Errorf("port %q: %w", portName, ErrNoPortName)
	}

	tacho, basic, err := asMotor(dev)
	if err != nil {
		return fmt.Errorf("port %q: %w", portName, err)
	}

	const noProfile = 0

	switch {
	case motorTime > 0 && tacho != nil:
		return tacho.RunForTime(ctx, motorTime, power, nil, motorMax, peripheral.EndStateBrake, noProfile)
	case motorDegrees != 0 && tacho != nil:
		return tacho.RotateByAngle(ctx, motorDegrees, power, nil, motorMax, peripheral.EndStateBrake, noProfile)
	case (motorTime > 0 || motorDegrees != 0) && tacho == nil:
		return fmt.Errorf("port %q: %w (timed/angle moves need tacho feedback)", portName, ErrWrongPeripheralType)
	default:
		return basic.SetPower(ctx, power, nil)
	}
}

// asMotor resolves dev to the most capable motor interface available:
// a *TachoMotor (possibly embedded in an *AbsMotor) plus the
// *BasicMotor every motor variant embeds for plain SetPower.
func asMotor(dev peripheral.Device) (*peripheral.TachoMotor, *peripheral.BasicMotor, error) {
	switch m := dev.(type) {
	case *peripheral.AbsMotor:
		return m.TachoMotor, m.TachoMotor.BasicMotor, nil
	case *peripheral.TachoMotor:
		return m, m.BasicMotor, nil
	case *peripheral.BasicMotor:
		return nil, m, nil
	default:
		return nil, nil, ErrWrongPeripheralType
	}
}
