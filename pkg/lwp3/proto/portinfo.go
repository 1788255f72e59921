package proto

import "github.com/srg/lwp3hub/pkg/lwp3/bytesutil"

// PortInfoKind selects the sub-payload of a PortInfoRequest/PortInfo pair.
type PortInfoKind byte

const (
	InfoPortValue        PortInfoKind = 0x00
	InfoModeInfo         PortInfoKind = 0x01
	InfoModeCombinations PortInfoKind = 0x02
)

// Port capability bits reported in PortInfo's INFO_MODE_INFO payload.
const (
	CapOutput         byte = 0b00000001
	CapInput          byte = 0b00000010
	CapCombinable     byte = 0b00000100
	CapSynchronizable byte = 0b00001000
)

// PortInfoRequest asks the hub to report port value, mode-info or the
// set of legal mode combinations for a port.
type PortInfoRequest struct {
	base
	Port     byte
	InfoType PortInfoKind
}

func NewPortInfoRequest(port byte, infoType PortInfoKind) *PortInfoRequest {
	return &PortInfoRequest{base: newBase(), Port: port, InfoType: infoType}
}

func (m *PortInfoRequest) Kind() Kind { return KindPortInfoRequest }

func (m *PortInfoRequest) Encode() []byte { return []byte{m.Port, byte(m.InfoType)} }

func (m *PortInfoRequest) NeedsReply() bool { return true }

func (m *PortInfoRequest) IsReply(upstream Message) bool {
	if m.InfoType == InfoPortValue {
		switch u := upstream.(type) {
		case *PortValueSingle:
			return u.Port == m.Port
		case *PortValueCombined:
			return u.Port == m.Port
		}
		return false
	}
	u, ok := upstream.(*PortInfo)
	return ok && u.Port == m.Port
}

// PortInfo is the upstream reply to PortInfoRequest.
type PortInfo struct {
	base
	Port         byte
	InfoType     PortInfoKind
	Capabilities byte
	TotalModes   byte
	InputModes   []int
	OutputModes  []int

	// INFO_MODE_COMBINATIONS only.
	PossibleModeCombinations [][]int
}

func (m *PortInfo) Kind() Kind { return KindPortInfo }

func (m *PortInfo) IsOutput() bool         { return m.Capabilities&CapOutput != 0 }
func (m *PortInfo) IsInput() bool          { return m.Capabilities&CapInput != 0 }
func (m *PortInfo) IsCombinable() bool     { return m.Capabilities&CapCombinable != 0 }
func (m *PortInfo) IsSynchronizable() bool { return m.Capabilities&CapSynchronizable != 0 }

func bitsList(v uint16) []int {
	var bits []int
	for i := 0; i < 16; i++ {
		if v&(1<<uint(i)) != 0 {
			bits = append(bits, i)
		}
	}
	return bits
}

func decodePortInfo(body []byte) (Message, error) {
	if len(body) < 2 {
		return nil, ErrInvalidFrame
	}
	m := &PortInfo{base: newBase(), Port: body[0], InfoType: PortInfoKind(body[1])}
	rest := body[2:]
	if m.InfoType == InfoModeInfo {
		if len(rest) < 6 {
			return nil, ErrInvalidFrame
		}
		m.Capabilities = rest[0]
		m.TotalModes = rest[1]
		in, err := bytesutil.U16(rest, 2)
		if err != nil {
			return nil, err
		}
		out, err := bytesutil.U16(rest, 4)
		if err != nil {
			return nil, err
		}
		m.InputModes = bitsList(in)
		m.OutputModes = bitsList(out)
		return m, nil
	}
	for len(rest) >= 2 {
		val, err := bytesutil.U16(rest, 0)
		if err != nil {
			return nil, err
		}
		m.PossibleModeCombinations = append(m.PossibleModeCombinations, bitsList(val))
		rest = rest[2:]
		if val == 0 {
			break
		}
	}
	return m, nil
}
