package proto

import "github.com/srg/lwp3hub/pkg/lwp3/bytesutil"

// Property is a LWP3 hub-property id.
type Property byte

const (
	PropertyAdvertiseName    Property = 0x01
	PropertyButton           Property = 0x02
	PropertyFWVersion        Property = 0x03
	PropertyHWVersion        Property = 0x04
	PropertyRSSI             Property = 0x05
	PropertyBatteryVoltage   Property = 0x06
	PropertyBatteryType      Property = 0x07
	PropertyManufacturer     Property = 0x08
	PropertyRadioFWVersion   Property = 0x09
	PropertyWirelessProtocol Property = 0x0A
	PropertySystemTypeID     Property = 0x0B
	PropertyHWNetworkID      Property = 0x0C
	PropertyPrimaryMAC       Property = 0x0D
	PropertySecondaryMAC     Property = 0x0E
	PropertyHWNetworkFamily  Property = 0x0F
)

// PropertyOperation is the HubProperties operation byte.
type PropertyOperation byte

const (
	OpSet             PropertyOperation = 0x01
	OpUpdateEnable    PropertyOperation = 0x02
	OpUpdateDisable   PropertyOperation = 0x03
	OpReset           PropertyOperation = 0x04
	OpUpdateRequest   PropertyOperation = 0x05
	OpUpstreamUpdate  PropertyOperation = 0x06
)

// Button state values reported via HubProperties(BUTTON).
const (
	ButtonReleased byte = 0x00
	ButtonUp       byte = 0x01
	ButtonPressed  byte = 0x02
	ButtonStop     byte = 0x7F
	ButtonDown     byte = 0xFF
)

// HubProperties is both a downstream command and the matching upstream
// reply/notification.
type HubProperties struct {
	base
	PropertyID Property
	Operation  PropertyOperation
	Parameters []byte
}

// NewHubProperties builds a downstream HubProperties message.
func NewHubProperties(prop Property, op PropertyOperation, params ...byte) *HubProperties {
	return &HubProperties{base: newBase(), PropertyID: prop, Operation: op, Parameters: params}
}

func (m *HubProperties) Kind() Kind { return KindHubProperties }

func (m *HubProperties) Encode() []byte {
	body := make([]byte, 0, 2+len(m.Parameters))
	body = bytesutil.PutU8(body, byte(m.PropertyID))
	body = bytesutil.PutU8(body, byte(m.Operation))
	body = append(body, m.Parameters...)
	return body
}

// NeedsReply: UPD_REQUEST and UPD_ENABLE expect an upstream reply.
func (m *HubProperties) NeedsReply() bool {
	return m.Operation == OpUpdateRequest || m.Operation == OpUpdateEnable
}

func (m *HubProperties) IsReply(upstream Message) bool {
	u, ok := upstream.(*HubProperties)
	if !ok {
		return false
	}
	return u.Operation == OpUpstreamUpdate && u.PropertyID == m.PropertyID
}

func decodeHubProperties(body []byte) (Message, error) {
	if len(body) < 2 {
		return nil, ErrInvalidFrame
	}
	return &HubProperties{
		base:       newBase(),
		PropertyID: Property(body[0]),
		Operation:  PropertyOperation(body[1]),
		Parameters: append([]byte(nil), body[2:]...),
	}, nil
}
