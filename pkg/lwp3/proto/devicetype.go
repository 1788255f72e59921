package proto

// DeviceType is the 16-bit LWP3 IO type id reported in HubAttachedIO.
type DeviceType uint16

const (
	DevUnknown                       DeviceType = 0x0000
	DevSimpleMediumLinearMotor       DeviceType = 0x0001
	DevSystemTrainMotor              DeviceType = 0x0002
	DevLEDLight                      DeviceType = 0x0008
	DevVoltage                       DeviceType = 0x0014
	DevCurrent                       DeviceType = 0x0015
	DevPiezoSound                    DeviceType = 0x0016
	DevRGBLight                      DeviceType = 0x0017 // hub LED
	DevTilt                          DeviceType = 0x0022
	DevMotionSensor                  DeviceType = 0x0023
	DevVisionSensor                  DeviceType = 0x0025 // color/distance sensor
	DevMediumLinearMotor             DeviceType = 0x0026
	DevMoveHubMediumLinearMotor      DeviceType = 0x0027
	DevMoveHubTilt                   DeviceType = 0x0028
	DevDuploTrainBaseMotor           DeviceType = 0x0029
	DevDuploTrainBaseSpeaker         DeviceType = 0x002A
	DevDuploTrainBaseColorSensor     DeviceType = 0x002B
	DevDuploTrainBaseSpeedometer     DeviceType = 0x002C
	DevTechnicLargeLinearMotor       DeviceType = 0x002E
	DevTechnicXLargeLinearMotor      DeviceType = 0x002F
	DevTechnicMediumAngularMotor     DeviceType = 0x0030
	DevTechnicLargeAngularMotor      DeviceType = 0x0031
	DevTechnicMediumHubGestSensor    DeviceType = 0x0036
	DevRemoteControlButton           DeviceType = 0x0037
	DevRemoteControlRSSI             DeviceType = 0x0038
	DevTechnicHubAccelerometer       DeviceType = 0x0039
	DevTechnicHubGyroSensor          DeviceType = 0x003A
	DevTechnicHubTiltSensor          DeviceType = 0x003B
	DevTechnicHubTemperatureSensor   DeviceType = 0x003C
	DevTechnicColorSensor            DeviceType = 0x003D
	DevTechnicDistanceSensor         DeviceType = 0x003E
	DevTechnicForceSensor            DeviceType = 0x003F
)

// AttachEvent is the HubAttachedIO event byte.
type AttachEvent byte

const (
	EventDetached        AttachEvent = 0x00
	EventAttached        AttachEvent = 0x01
	EventAttachedVirtual AttachEvent = 0x02
)

// HubAttachedIO reports a peripheral attaching to, or detaching from, a port.
type HubAttachedIO struct {
	base
	Port  byte
	Event AttachEvent

	// Attached
	DeviceType      DeviceType
	HardwareVersion []byte // 4-byte BCD block, see bytesutil.Version
	SoftwareVersion []byte

	// AttachedVirtual
	PortA, PortB byte
}

func (m *HubAttachedIO) Kind() Kind { return KindHubAttachedIO }

func decodeHubAttachedIO(body []byte) (Message, error) {
	if len(body) < 2 {
		return nil, ErrInvalidFrame
	}
	m := &HubAttachedIO{base: newBase(), Port: body[0], Event: AttachEvent(body[1])}
	switch m.Event {
	case EventAttached:
		// device type u16, then hardware and software revisions as
		// 4-byte BCD blocks.
		if len(body) < 12 {
			return nil, ErrInvalidFrame
		}
		m.DeviceType = DeviceType(uint16(body[2]) | uint16(body[3])<<8)
		m.HardwareVersion = append([]byte(nil), body[4:8]...)
		m.SoftwareVersion = append([]byte(nil), body[8:12]...)
	case EventAttachedVirtual:
		// device type u16, then the two composing physical port ids.
		if len(body) < 6 {
			return nil, ErrInvalidFrame
		}
		m.DeviceType = DeviceType(uint16(body[2]) | uint16(body[3])<<8)
		m.PortA = body[4]
		m.PortB = body[5]
	case EventDetached:
		// nothing more to decode
	}
	return m, nil
}
