package proto

import "fmt"

// AlertType identifies the condition a HubAlert reports.
type AlertType byte

const (
	AlertLowVoltage  AlertType = 0x01
	AlertHighCurrent AlertType = 0x02
	AlertLowSignal   AlertType = 0x03
	AlertOverPower   AlertType = 0x04
)

func (t AlertType) String() string {
	switch t {
	case AlertLowVoltage:
		return "low voltage"
	case AlertHighCurrent:
		return "high current"
	case AlertLowSignal:
		return "low signal"
	case AlertOverPower:
		return "over power"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(t))
	}
}

// AlertOperation is the HubAlert operation byte.
type AlertOperation byte

const (
	AlertOpEnable  AlertOperation = 0x01
	AlertOpDisable AlertOperation = 0x02
	AlertOpRequest AlertOperation = 0x03
	AlertOpUpdate  AlertOperation = 0x04
)

// HubAlert is both downstream (enable/disable/request) and upstream (update).
type HubAlert struct {
	base
	Type      AlertType
	Operation AlertOperation
	Status    byte
}

func NewHubAlert(t AlertType, op AlertOperation) *HubAlert {
	return &HubAlert{base: newBase(), Type: t, Operation: op}
}

func (m *HubAlert) Kind() Kind { return KindHubAlert }

func (m *HubAlert) Encode() []byte { return []byte{byte(m.Type), byte(m.Operation)} }

func (m *HubAlert) NeedsReply() bool { return m.Operation == AlertOpRequest }

func (m *HubAlert) IsReply(upstream Message) bool {
	u, ok := upstream.(*HubAlert)
	if !ok {
		return false
	}
	return u.Operation == AlertOpUpdate && u.Type == m.Type
}

// IsOK reports whether the alert's status byte is the "ok" value.
func (m *HubAlert) IsOK() bool { return m.Status == 0 }

func decodeHubAlert(body []byte) (Message, error) {
	if len(body) < 3 {
		return nil, ErrInvalidFrame
	}
	return &HubAlert{
		base:      newBase(),
		Type:      AlertType(body[0]),
		Operation: AlertOperation(body[1]),
		Status:    body[2],
	}, nil
}
