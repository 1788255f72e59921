package proto

import (
	"bytes"
	"fmt"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
)

// PortModeInfoKind selects which facet of a mode PortModeInfoRequest asks for.
type PortModeInfoKind byte

const (
	ModeInfoName           PortModeInfoKind = 0x00
	ModeInfoRawRange       PortModeInfoKind = 0x01
	ModeInfoPctRange       PortModeInfoKind = 0x02
	ModeInfoSIRange        PortModeInfoKind = 0x03
	ModeInfoUnits          PortModeInfoKind = 0x04
	ModeInfoMapping        PortModeInfoKind = 0x05
	ModeInfoMotorBias      PortModeInfoKind = 0x07
	ModeInfoCapabilityBits PortModeInfoKind = 0x08
	ModeInfoValueFormat    PortModeInfoKind = 0x80
)

var modeInfoNames = map[PortModeInfoKind]string{
	ModeInfoName:           "Name",
	ModeInfoRawRange:       "Raw range",
	ModeInfoPctRange:       "Percent range",
	ModeInfoSIRange:        "SI value range",
	ModeInfoUnits:          "Units",
	ModeInfoMapping:        "Mapping",
	ModeInfoMotorBias:      "Motor bias",
	ModeInfoCapabilityBits: "Capabilities",
	ModeInfoValueFormat:    "Value encoding",
}

func (k PortModeInfoKind) String() string {
	if s, ok := modeInfoNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown(0x%02X)", byte(k))
}

// mappingFlags decodes a single INFO_MAPPING bitfield byte into its
// human-readable flag names, indexed by bit position.
var mappingFlags = map[int]string{
	7: "Supports NULL value",
	6: "Supports Functional Mapping 2.0+",
	5: "N/A",
	4: "Absolute [min..max]",
	3: "Relative [-1..1]",
	2: "Discrete [0, 1, 2, 3]",
	1: "N/A",
	0: "N/A",
}

var datasetTypes = map[byte]string{
	0b00: "8 bit",
	0b01: "16 bit",
	0b10: "32 bit",
	0b11: "FLOAT",
}

// PortModeInfoRequest asks the hub to describe one facet of one port/mode.
type PortModeInfoRequest struct {
	base
	Port     byte
	Mode     byte
	InfoType PortModeInfoKind
}

func NewPortModeInfoRequest(port, mode byte, infoType PortModeInfoKind) *PortModeInfoRequest {
	return &PortModeInfoRequest{base: newBase(), Port: port, Mode: mode, InfoType: infoType}
}

func (m *PortModeInfoRequest) Kind() Kind { return KindPortModeInfoRequest }

func (m *PortModeInfoRequest) Encode() []byte { return []byte{m.Port, m.Mode, byte(m.InfoType)} }

func (m *PortModeInfoRequest) NeedsReply() bool { return true }

func (m *PortModeInfoRequest) IsReply(upstream Message) bool {
	u, ok := upstream.(*PortModeInfo)
	return ok && u.Port == m.Port && u.Mode == m.Mode && u.InfoType == m.InfoType
}

// RangeValue is a [min, max] pair used by the raw/percent/SI range facets.
type RangeValue struct {
	Min, Max float32
}

// MappingValue is the decoded pair of input/output mapping flag lists.
type MappingValue struct {
	Input  []string
	Output []string
}

// ValueFormat is the decoded INFO_VALUE_FORMAT facet.
type ValueFormat struct {
	Datasets     byte
	Type         string
	TotalFigures byte
	Decimals     byte
}

// PortModeInfo is the upstream reply to PortModeInfoRequest. Exactly one of
// the typed fields is populated, selected by InfoType.
type PortModeInfo struct {
	base
	Port     byte
	Mode     byte
	InfoType PortModeInfoKind

	Name       string
	Range      *RangeValue
	Units      string
	Mapping    *MappingValue
	MotorBias  byte
	ValueFmt   *ValueFormat
	RawPayload []byte
}

func (m *PortModeInfo) Kind() Kind { return KindPortModeInfo }

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func decodePortModeInfo(body []byte) (Message, error) {
	if len(body) < 3 {
		return nil, ErrInvalidFrame
	}
	m := &PortModeInfo{base: newBase(), Port: body[0], Mode: body[1], InfoType: PortModeInfoKind(body[2])}
	rest := body[3:]
	switch m.InfoType {
	case ModeInfoName:
		m.Name = cString(rest)
	case ModeInfoUnits:
		m.Units = cString(rest)
	case ModeInfoRawRange, ModeInfoPctRange, ModeInfoSIRange:
		lo, err := bytesutil.F32(rest, 0)
		if err != nil {
			return nil, err
		}
		hi, err := bytesutil.F32(rest, 4)
		if err != nil {
			return nil, err
		}
		m.Range = &RangeValue{Min: lo, Max: hi}
	case ModeInfoMapping:
		if len(rest) < 2 {
			return nil, ErrInvalidFrame
		}
		m.Mapping = &MappingValue{Input: mappingFlagNames(rest[0]), Output: mappingFlagNames(rest[1])}
	case ModeInfoMotorBias:
		if len(rest) < 1 {
			return nil, ErrInvalidFrame
		}
		m.MotorBias = rest[0]
	case ModeInfoValueFormat:
		if len(rest) < 4 {
			return nil, ErrInvalidFrame
		}
		m.ValueFmt = &ValueFormat{
			Datasets:     rest[0],
			Type:         datasetTypes[rest[1]],
			TotalFigures: rest[2],
			Decimals:     rest[3],
		}
	default:
		m.RawPayload = append([]byte(nil), rest...)
	}
	return m, nil
}

func mappingFlagNames(bits byte) []string {
	var names []string
	for _, i := range bitsList(uint16(bits)) {
		names = append(names, mappingFlags[i])
	}
	return names
}
