package peripheral

import "github.com/srg/lwp3hub/pkg/lwp3/proto"

// RawPeripheral is the fallback for any attached device-type id this
// package does not model explicitly. It exposes only the undecoded
// value bytes.
type RawPeripheral struct {
	*Peripheral
}

// NewRawPeripheral builds a fallback peripheral labeled with the
// device-type id actually reported by HubAttachedIO; it decodes
// nothing, so subscribers receive the raw payload as a single []byte
// argument.
func NewRawPeripheral(sess Session, port byte, devType proto.DeviceType, virtual bool, a, b byte) *RawPeripheral {
	var base *Peripheral
	if virtual {
		base = NewVirtual(sess, port, devType, a, b)
	} else {
		base = New(sess, port, devType)
	}
	p := &RawPeripheral{Peripheral: base}
	p.SetDecoder(p.decode)
	return p
}

func (p *RawPeripheral) decode(mode byte, raw []byte) ([]interface{}, error) {
	return []interface{}{append([]byte(nil), raw...)}, nil
}
