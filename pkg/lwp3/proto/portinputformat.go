package proto

import "github.com/srg/lwp3hub/pkg/lwp3/bytesutil"

// PortInputFormatSetupSingle subscribes to, or reconfigures, single-mode
// value notifications for a port.
type PortInputFormatSetupSingle struct {
	base
	Port          byte
	Mode          byte
	UpdateDelta   uint32
	UpdateEnabled bool
}

// NewPortInputFormatSetupSingle builds the single-mode subscription
// command with the given update delta and update-enable flag.
func NewPortInputFormatSetupSingle(port, mode byte, delta uint32, updateEnabled bool) *PortInputFormatSetupSingle {
	return &PortInputFormatSetupSingle{base: newBase(), Port: port, Mode: mode, UpdateDelta: delta, UpdateEnabled: updateEnabled}
}

func (m *PortInputFormatSetupSingle) Kind() Kind { return KindPortInputFormatSetupSingle }

func (m *PortInputFormatSetupSingle) Encode() []byte {
	body := []byte{m.Port, m.Mode}
	body = bytesutil.PutU32(body, m.UpdateDelta)
	enabled := byte(0)
	if m.UpdateEnabled {
		enabled = 1
	}
	return bytesutil.PutU8(body, enabled)
}

func (m *PortInputFormatSetupSingle) NeedsReply() bool { return true }

func (m *PortInputFormatSetupSingle) IsReply(upstream Message) bool {
	u, ok := upstream.(*PortInputFormatSingle)
	return ok && u.Port == m.Port
}

// PortInputFormatSubCommand selects the operation of a combined-mode setup.
type PortInputFormatSubCommand byte

const (
	SubCmdSetModeAndDataset   PortInputFormatSubCommand = 0x01
	SubCmdLockForSetup        PortInputFormatSubCommand = 0x02
	SubCmdUnlockMultiEnabled  PortInputFormatSubCommand = 0x03
	SubCmdUnlockMultiDisabled PortInputFormatSubCommand = 0x04
	SubCmdResetSensor         PortInputFormatSubCommand = 0x06
)

// PortInputFormatSetupCombined configures a combined-mode dataset mapping
// for a port.
type PortInputFormatSetupCombined struct {
	base
	Port           byte
	SubCommand     PortInputFormatSubCommand
	CombinationIdx byte
	Mode           byte
	DataSet        byte
}

func NewPortInputFormatSetupCombined(port byte, subCmd PortInputFormatSubCommand) *PortInputFormatSetupCombined {
	return &PortInputFormatSetupCombined{base: newBase(), Port: port, SubCommand: subCmd}
}

// WithModeAndDataset sets the fields needed by SubCmdSetModeAndDataset.
func (m *PortInputFormatSetupCombined) WithModeAndDataset(combinationIdx, mode, dataSet byte) *PortInputFormatSetupCombined {
	m.CombinationIdx = combinationIdx
	m.Mode = mode
	m.DataSet = dataSet
	return m
}

func (m *PortInputFormatSetupCombined) Kind() Kind { return KindPortInputFormatSetupCombined }

func (m *PortInputFormatSetupCombined) Encode() []byte {
	body := []byte{m.Port, byte(m.SubCommand)}
	if m.SubCommand == SubCmdSetModeAndDataset {
		body = append(body, m.CombinationIdx, m.Mode*16+m.DataSet)
	}
	return body
}

func (m *PortInputFormatSetupCombined) NeedsReply() bool { return true }

func (m *PortInputFormatSetupCombined) IsReply(upstream Message) bool {
	u, ok := upstream.(*PortInputFormatCombined)
	return ok && u.Port == m.Port
}
