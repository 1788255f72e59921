package proto

import "github.com/srg/lwp3hub/pkg/lwp3/bytesutil"

// PortValueSingle carries a single port's raw mode-0 reading. The actual
// value encoding (u8/i8/u16/.../f32) is mode-dependent and left to the
// peripheral layer, which knows each mode's value format.
type PortValueSingle struct {
	base
	Port  byte
	Value []byte
}

func (m *PortValueSingle) Kind() Kind { return KindPortValueSingle }

func decodePortValueSingle(body []byte) (Message, error) {
	if len(body) < 1 {
		return nil, ErrInvalidFrame
	}
	return &PortValueSingle{base: newBase(), Port: body[0], Value: append([]byte(nil), body[1:]...)}, nil
}

// PortValueCombined carries a combined-mode reading: the subset of the
// port's configured datasets that changed, identified by bit position.
type PortValueCombined struct {
	base
	Port                   byte
	ConfiguredModeDatasets []int
	Value                  []byte
}

func (m *PortValueCombined) Kind() Kind { return KindPortValueCombined }

func decodePortValueCombined(body []byte) (Message, error) {
	if len(body) < 3 {
		return nil, ErrInvalidFrame
	}
	bitPtr, err := bytesutil.U16(body, 1)
	if err != nil {
		return nil, err
	}
	return &PortValueCombined{
		base:                   newBase(),
		Port:                   body[0],
		ConfiguredModeDatasets: bitsList(bitPtr),
		Value:                  append([]byte(nil), body[3:]...),
	}, nil
}

// PortInputFormatSingle is the upstream reply to
// PortInputFormatSetupSingle, reflecting the effective single-mode
// subscription.
type PortInputFormatSingle struct {
	base
	Port           byte
	Mode           byte
	UpdateDelta    uint32
	UpdatesEnabled bool
	hasEnabledByte bool
}

func (m *PortInputFormatSingle) Kind() Kind { return KindPortInputFormatSingle }

func decodePortInputFormatSingle(body []byte) (Message, error) {
	if len(body) < 6 {
		return nil, ErrInvalidFrame
	}
	delta, err := bytesutil.U32(body, 2)
	if err != nil {
		return nil, err
	}
	m := &PortInputFormatSingle{base: newBase(), Port: body[0], Mode: body[1], UpdateDelta: delta}
	if len(body) > 6 {
		m.UpdatesEnabled = body[6] != 0
		m.hasEnabledByte = true
	}
	return m, nil
}

// PortInputFormatCombined is the upstream reply to
// PortInputFormatSetupCombined.
type PortInputFormatCombined struct {
	base
	Port                   byte
	UsedCombinationIndex   byte
	MultiUpdateEnabled     bool
	ConfiguredModeDatasets []int
}

func (m *PortInputFormatCombined) Kind() Kind { return KindPortInputFormatCombined }

func decodePortInputFormatCombined(body []byte) (Message, error) {
	if len(body) < 4 {
		return nil, ErrInvalidFrame
	}
	control := body[1]
	bitPtr, err := bytesutil.U16(body, 2)
	if err != nil {
		return nil, err
	}
	return &PortInputFormatCombined{
		base:                   newBase(),
		Port:                   body[0],
		UsedCombinationIndex:   control & 0x07,
		MultiUpdateEnabled:     control&0xE0 != 0,
		ConfiguredModeDatasets: bitsList(bitPtr),
	}, nil
}
