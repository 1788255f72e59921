package proto

import (
	"errors"

	"github.com/smallnest/ringbuffer"
)

// reassemblerCapacity sizes the byte ring a Reassembler buffers partial
// notification data in; a few frames' worth is ample headroom since the
// hub session drains it synchronously on every notify callback.
const reassemblerCapacity = 4 * MaxFrameSize

// Reassembler accumulates raw GATT notification payloads and splits them
// back into whole LWP3 frames, handling the case where a single frame
// spans more than one notification or a notification carries more than
// one frame back to back.
type Reassembler struct {
	buf *ringbuffer.RingBuffer
}

// NewReassembler builds an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{buf: ringbuffer.New(reassemblerCapacity)}
}

// Feed appends a notification payload and returns every whole frame that
// can now be extracted, in arrival order. Bytes belonging to a frame
// still in progress remain buffered for the next call.
func (r *Reassembler) Feed(data []byte) ([][]byte, error) {
	if len(data) > 0 {
		if _, err := r.buf.Write(data); err != nil && !errors.Is(err, ringbuffer.ErrIsFull) {
			return nil, err
		}
	}

	var frames [][]byte
	for {
		frame, ok, err := r.tryExtractOne()
		if err != nil {
			return frames, err
		}
		if !ok {
			return frames, nil
		}
		frames = append(frames, frame)
	}
}

// tryExtractOne peeks the buffered bytes for one complete frame without
// consuming anything it can't yet satisfy.
func (r *Reassembler) tryExtractOne() (frame []byte, ok bool, err error) {
	avail := r.buf.Length()
	if avail < 1 {
		return nil, false, nil
	}

	peek := make([]byte, avail)
	n, perr := r.buf.TryRead(peek)
	if perr != nil && !errors.Is(perr, ringbuffer.ErrIsEmpty) {
		return nil, false, perr
	}
	peek = peek[:n]

	total, headerLen := frameLength(peek)
	if total == 0 {
		// Not enough bytes yet to read the length header; put everything back.
		if _, werr := r.buf.Write(peek); werr != nil && !errors.Is(werr, ringbuffer.ErrIsFull) {
			return nil, false, werr
		}
		return nil, false, nil
	}
	if total > len(peek) {
		// Header present but body still incomplete; put everything back.
		if _, werr := r.buf.Write(peek); werr != nil && !errors.Is(werr, ringbuffer.ErrIsFull) {
			return nil, false, werr
		}
		return nil, false, nil
	}
	_ = headerLen

	out := make([]byte, total)
	copy(out, peek[:total])
	if total < len(peek) {
		if _, werr := r.buf.Write(peek[total:]); werr != nil && !errors.Is(werr, ringbuffer.ErrIsFull) {
			return nil, false, werr
		}
	}
	return out, true, nil
}

// frameLength reports the total declared frame length and header length
// encoded by data's length prefix, or (0, 0) if data doesn't yet contain
// enough bytes to read that prefix.
func frameLength(data []byte) (total, headerLen int) {
	if len(data) < 1 {
		return 0, 0
	}
	b0 := data[0]
	if b0 > 127 {
		if len(data) < 2 {
			return 0, 0
		}
		return int(b0) + int(data[1]) - 1, 2
	}
	return int(b0), 1
}
