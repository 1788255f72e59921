package peripheral

import "github.com/srg/lwp3hub/pkg/lwp3/proto"

// RemoteControlButton event values.
const (
	RCButtonReleased byte = 0x00
	RCButtonUp       byte = 0x01
	RCButtonStop     byte = 0x7F
	RCButtonDown     byte = 0xFF
)

const modeButtonEvent byte = 0x00

// RemoteControlButton is one of the two buttons on a Powered Up remote.
type RemoteControlButton struct {
	*Peripheral
}

// NewRemoteControlButton builds a remote-control button peripheral.
func NewRemoteControlButton(sess Session, port byte, _ proto.DeviceType, virtual bool, a, b byte) *RemoteControlButton {
	b2 := &RemoteControlButton{Peripheral: New(sess, port, proto.DevRemoteControlButton)}
	b2.SetDecoder(b2.decode)
	return b2
}

func (b *RemoteControlButton) decode(mode byte, raw []byte) ([]interface{}, error) {
	if mode != modeButtonEvent {
		return nil, nil
	}
	if len(raw) < 1 {
		return nil, proto.ErrInvalidFrame
	}
	return []interface{}{raw[0]}, nil
}
