package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripShort(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x05}
	frame, err := EncodeFrame(0x01, payload)
	require.NoError(t, err)
	assert.Equal(t, byte(len(payload)+3), frame[0])
	assert.Equal(t, byte(HubID), frame[1])
	assert.Equal(t, byte(0x01), frame[2])

	msgType, body, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), msgType)
	assert.Equal(t, payload, body)
}

func TestFrameRoundTripLong(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	frame, err := EncodeFrame(0x45, payload)
	require.NoError(t, err)
	require.True(t, frame[0] > 127)

	msgType, body, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, byte(0x45), msgType)
	assert.Equal(t, payload, body)
}

func TestFrameRoundTripBoundary(t *testing.T) {
	for _, n := range []int{0, 1, 124, 125, 126, 252, 253, 500} {
		payload := make([]byte, n)
		frame, err := EncodeFrame(0x02, payload)
		require.NoErrorf(t, err, "payload len %d", n)
		msgType, body, err := DecodeFrame(frame)
		require.NoErrorf(t, err, "payload len %d", n)
		assert.Equal(t, byte(0x02), msgType)
		assert.Len(t, body, n)
	}
}

func TestDecodeFrameRejectsWrongHub(t *testing.T) {
	_, _, err := DecodeFrame([]byte{0x03, 0x01, 0x01})
	assert.Error(t, err)
}

func TestDecodeFrameRejectsShort(t *testing.T) {
	_, _, err := DecodeFrame([]byte{0x02})
	assert.Error(t, err)
}
