package peripheral

import "github.com/srg/lwp3hub/pkg/lwp3/proto"

// System-type ids used to pick a voltage/current scaling table. These
// mirror hub.SystemTypeMoveHub/SystemTypeTechnicHub; duplicated here
// rather than imported to keep peripheral free of a dependency on hub.
const (
	systemTypeMoveHub    byte = 0x40
	systemTypeTechnicHub byte = 0x80
)

var maxVoltageVal = map[byte]float64{
	systemTypeMoveHub:    9.615,
	systemTypeTechnicHub: 9.615,
}

var maxVoltageRaw = map[byte]float64{
	systemTypeMoveHub:    3893,
	systemTypeTechnicHub: 4095,
}

var maxCurrentVal = map[byte]float64{
	systemTypeTechnicHub: 4175,
}

var maxCurrentRaw = map[byte]float64{
	systemTypeTechnicHub: 4095,
}

const defaultMaxRaw = 4095

// VoltageSensor reports the hub's internal battery voltage.
type VoltageSensor struct {
	*Peripheral
}

// NewVoltageSensor builds the internal voltage sensor.
func NewVoltageSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *VoltageSensor {
	s := &VoltageSensor{Peripheral: New(sess, port, proto.DevVoltage)}
	s.SetDecoder(s.decode)
	return s
}

func (s *VoltageSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	v, err := rawU16(raw)
	if err != nil {
		return nil, err
	}
	t := s.sess.SystemType()
	maxV, ok := maxVoltageVal[t]
	if !ok {
		maxV = 9.615
	}
	maxR, ok := maxVoltageRaw[t]
	if !ok {
		maxR = defaultMaxRaw
	}
	return []interface{}{maxV * float64(v) / maxR}, nil
}

// CurrentSensor reports the hub's internal battery current draw, in
// milliamps.
type CurrentSensor struct {
	*Peripheral
}

// NewCurrentSensor builds the internal current sensor.
func NewCurrentSensor(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *CurrentSensor {
	s := &CurrentSensor{Peripheral: New(sess, port, proto.DevCurrent)}
	s.SetDecoder(s.decode)
	return s
}

func (s *CurrentSensor) decode(mode byte, raw []byte) ([]interface{}, error) {
	v, err := rawU16(raw)
	if err != nil {
		return nil, err
	}
	t := s.sess.SystemType()
	maxV, ok := maxCurrentVal[t]
	if !ok {
		maxV = 2444
	}
	maxR, ok := maxCurrentRaw[t]
	if !ok {
		maxR = defaultMaxRaw
	}
	return []interface{}{maxV * float64(v) / maxR}, nil
}

func rawU16(raw []byte) (uint16, error) {
	if len(raw) < 2 {
		return 0, proto.ErrInvalidFrame
	}
	return uint16(raw[0]) | uint16(raw[1])<<8, nil
}
