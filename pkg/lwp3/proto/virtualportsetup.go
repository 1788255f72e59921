package proto

// VirtualPortCommand selects connect vs disconnect for VirtualPortSetup.
type VirtualPortCommand byte

const (
	VirtualPortDisconnect VirtualPortCommand = 0x00
	VirtualPortConnect    VirtualPortCommand = 0x01
)

// VirtualPortSetup combines two physical ports into one virtual port (or
// tears the pairing back down). There is no upstream reply to this
// message; the pairing instead surfaces as a HubAttachedIO "attached
// virtual" event on the newly allocated virtual port id.
type VirtualPortSetup struct {
	base
	Command VirtualPortCommand

	// Disconnect
	Port byte

	// Connect
	PortA, PortB byte
}

// NewVirtualPortDisconnect builds a command tearing down a virtual port.
func NewVirtualPortDisconnect(port byte) *VirtualPortSetup {
	return &VirtualPortSetup{base: newBase(), Command: VirtualPortDisconnect, Port: port}
}

// NewVirtualPortConnect builds a command pairing two physical ports.
func NewVirtualPortConnect(portA, portB byte) *VirtualPortSetup {
	return &VirtualPortSetup{base: newBase(), Command: VirtualPortConnect, PortA: portA, PortB: portB}
}

func (m *VirtualPortSetup) Kind() Kind { return KindVirtualPortSetup }

func (m *VirtualPortSetup) Encode() []byte {
	if m.Command == VirtualPortDisconnect {
		return []byte{byte(m.Command), m.Port}
	}
	return []byte{byte(m.Command), m.PortA, m.PortB}
}

func (m *VirtualPortSetup) NeedsReply() bool { return false }

func (m *VirtualPortSetup) IsReply(Message) bool { return false }
