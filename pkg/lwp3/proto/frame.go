package proto

import "fmt"

// MaxFrameSize is the largest frame (header + body) this codec will emit or accept.
const MaxFrameSize = 509

// HubID is the fixed hub-id byte LWP3 uses on every frame.
const HubID = 0x00

// EncodeFrame wraps a message body with the LWP3 common header: a 1- or
// 2-byte length prefix, the (always zero) hub-id byte, and the message-type
// byte.
func EncodeFrame(msgType byte, payload []byte) ([]byte, error) {
	base := len(payload) + 3 // one length byte + hub-id + type
	var frame []byte
	if base > 127 {
		total := base + 1 // account for the second length byte
		b0 := byte(minInt(total, 255))
		b1 := byte(maxInt(total-255, 0) + 1)
		frame = make([]byte, 0, total)
		frame = append(frame, b0, b1, HubID, msgType)
	} else {
		frame = make([]byte, 0, base)
		frame = append(frame, byte(base), HubID, msgType)
	}
	frame = append(frame, payload...)
	if len(frame) > MaxFrameSize {
		return nil, fmt.Errorf("proto: frame of %d bytes exceeds max %d: %w", len(frame), MaxFrameSize, ErrInvalidFrame)
	}
	return frame, nil
}

// DecodeFrame strips the common header and returns the message-type byte and
// body. It verifies hub-id is zero and that the declared length fits inside
// the supplied slice.
func DecodeFrame(data []byte) (msgType byte, body []byte, err error) {
	if len(data) < 1 {
		return 0, nil, fmt.Errorf("proto: empty frame: %w", ErrInvalidFrame)
	}

	var total, headerLen int
	b0 := data[0]
	if b0 > 127 {
		if len(data) < 2 {
			return 0, nil, fmt.Errorf("proto: truncated two-byte length header: %w", ErrInvalidFrame)
		}
		total = int(b0) + int(data[1]) - 1
		headerLen = 2
	} else {
		total = int(b0)
		headerLen = 1
	}

	if total > MaxFrameSize {
		return 0, nil, fmt.Errorf("proto: frame of %d bytes exceeds max %d: %w", total, MaxFrameSize, ErrInvalidFrame)
	}
	if total < headerLen+2 || len(data) < total {
		return 0, nil, fmt.Errorf("proto: truncated frame (declared %d, have %d): %w", total, len(data), ErrInvalidFrame)
	}

	hubID := data[headerLen]
	if hubID != HubID {
		return 0, nil, fmt.Errorf("proto: unexpected hub-id byte 0x%02X: %w", hubID, ErrInvalidFrame)
	}
	msgType = data[headerLen+1]
	body = data[headerLen+2 : total]
	return msgType, body, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
