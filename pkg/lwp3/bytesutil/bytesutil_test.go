package bytesutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
)

func TestIntegerReaders(t *testing.T) {
	t.Run("u8/i8", func(t *testing.T) {
		b := []byte{0xFE}
		v, err := bytesutil.U8(b, 0)
		require.NoError(t, err)
		assert.Equal(t, uint8(0xFE), v)

		iv, err := bytesutil.I8(b, 0)
		require.NoError(t, err)
		assert.Equal(t, int8(-2), iv)
	})

	t.Run("u16/i16 little-endian", func(t *testing.T) {
		b := []byte{0x34, 0x12}
		v, err := bytesutil.U16(b, 0)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x1234), v)

		b2 := []byte{0x00, 0xF0}
		iv, err := bytesutil.I16(b2, 0)
		require.NoError(t, err)
		assert.Equal(t, int16(-4096), iv)
	})

	t.Run("u32/i32 little-endian", func(t *testing.T) {
		b := []byte{0x01, 0x00, 0x00, 0x00}
		v, err := bytesutil.U32(b, 0)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), v)

		b2 := []byte{0xFF, 0xFF, 0xFF, 0xFF}
		iv, err := bytesutil.I32(b2, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(-1), iv)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := bytesutil.U32([]byte{0x01, 0x02}, 0)
		assert.Error(t, err)

		_, err = bytesutil.U16([]byte{0x01}, 1)
		assert.Error(t, err)
	})

	t.Run("offsets beyond zero", func(t *testing.T) {
		b := []byte{0xAA, 0x01, 0x00, 0xCE, 0xFF}
		v, err := bytesutil.U16(b, 1)
		require.NoError(t, err)
		assert.Equal(t, uint16(1), v)
	})
}

func TestFloatReaders(t *testing.T) {
	// 1.0f little-endian IEEE-754
	b := []byte{0x00, 0x00, 0x80, 0x3F}
	f, err := bytesutil.F32(b, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), f)

	d := []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}
	f64, err := bytesutil.F64(d, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(1.0), f64)
}

func TestPutters(t *testing.T) {
	var b []byte
	b = bytesutil.PutU16(b, 0x1234)
	assert.Equal(t, []byte{0x34, 0x12}, b)

	b = nil
	b = bytesutil.PutI32(b, -1)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, b)
}

func TestMAC(t *testing.T) {
	mac := bytesutil.MAC([]byte{0x00, 0x1A, 0x7D, 0xDA, 0x71, 0x13})
	assert.Equal(t, "00:1A:7D:DA:71:13", mac)
}

func TestVersion(t *testing.T) {
	// parameters = 34 12 07 10 -> build=1234, patch=07, minor/major from 0x10
	v, err := bytesutil.Version([]byte{0x34, 0x12, 0x07, 0x10})
	require.NoError(t, err)
	assert.Equal(t, "1.0.07.1234", v)
}

func TestVersionShort(t *testing.T) {
	_, err := bytesutil.Version([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)
}
