package hub

import (
	"github.com/srg/lwp3hub/pkg/lwp3/peripheral"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
	"github.com/srg/lwp3hub/pkg/lwp3/registry"
)

// wrap adapts a peripheral constructor whose return type is a concrete
// *T (so callers of that constructor get a typed pointer, no type
// assertion needed) into the registry.Constructor shape, which must
// return the peripheral.Device interface.
func wrap[T peripheral.Device](ctor func(peripheral.Session, byte, proto.DeviceType, bool, byte, byte) T) registry.Constructor {
	return func(sess peripheral.Session, port byte, devType proto.DeviceType, virtual bool, a, b byte) peripheral.Device {
		return ctor(sess, port, devType, virtual, a, b)
	}
}

// defaultDeviceTable is the device-type id -> constructor dispatch used
// by every Hub unless overridden.
func defaultDeviceTable() map[proto.DeviceType]registry.Constructor {
	return map[proto.DeviceType]registry.Constructor{
		proto.DevSimpleMediumLinearMotor:     wrap(peripheral.NewSimpleMediumLinearMotor),
		proto.DevSystemTrainMotor:            wrap(peripheral.NewSystemTrainMotor),
		proto.DevLEDLight:                    wrap(peripheral.NewLEDLight),
		proto.DevVoltage:                     wrap(peripheral.NewVoltageSensor),
		proto.DevCurrent:                     wrap(peripheral.NewCurrentSensor),
		proto.DevRGBLight:                    wrap(peripheral.NewLEDRGB),
		proto.DevTilt:                        wrap(peripheral.NewTiltSensor),
		proto.DevMotionSensor:                wrap(peripheral.NewMotionSensor),
		proto.DevVisionSensor:                wrap(peripheral.NewVisionSensor),
		proto.DevMediumLinearMotor:           wrap(peripheral.NewMediumLinearMotor),
		proto.DevMoveHubMediumLinearMotor:    wrap(peripheral.NewMoveHubMediumLinearMotor),
		proto.DevMoveHubTilt:                 wrap(peripheral.NewMoveHubTiltSensor),
		proto.DevDuploTrainBaseMotor:         wrap(peripheral.NewDuploTrainBaseMotor),
		proto.DevDuploTrainBaseSpeaker:       wrap(peripheral.NewDuploTrainBaseSpeaker),
		proto.DevDuploTrainBaseColorSensor:   wrap(peripheral.NewDuploTrainColorSensor),
		proto.DevDuploTrainBaseSpeedometer:   wrap(peripheral.NewDuploTrainBaseSpeedometer),
		proto.DevTechnicLargeLinearMotor:     wrap(peripheral.NewTechnicLargeLinearMotor),
		proto.DevTechnicXLargeLinearMotor:    wrap(peripheral.NewTechnicXLargeLinearMotor),
		proto.DevTechnicMediumAngularMotor:   wrap(peripheral.NewTechnicMediumAngularMotor),
		proto.DevTechnicLargeAngularMotor:    wrap(peripheral.NewTechnicLargeAngularMotor),
		proto.DevRemoteControlButton:         wrap(peripheral.NewRemoteControlButton),
		proto.DevTechnicMediumHubGestSensor:  wrap(peripheral.NewTechnicHubGestureSensor),
		proto.DevTechnicHubAccelerometer:     wrap(peripheral.NewTechnicHubAccelerometerSensor),
		proto.DevTechnicHubGyroSensor:        wrap(peripheral.NewTechnicHubGyroSensor),
		proto.DevTechnicHubTiltSensor:        wrap(peripheral.NewTechnicHubTiltSensor),
		proto.DevTechnicHubTemperatureSensor: wrap(peripheral.NewTechnicHubTemperatureSensor),
		proto.DevTechnicColorSensor:          wrap(peripheral.NewTechnicColorSensor),
		proto.DevTechnicDistanceSensor:       wrap(peripheral.NewTechnicDistanceSensor),
		proto.DevTechnicForceSensor:          wrap(peripheral.NewTechnicForceSensor),
	}
}
