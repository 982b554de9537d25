package cser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newReaderFromWriter connects the streams of w directly, skipping the framing.
func newReaderFromWriter(w *Writer) *Reader {
	return NewReader(w.BitsW.Array, w.Bytes())
}

func TestIntegers_RoundTrip(t *testing.T) {
	w := NewWriter()

	u8Vals := []uint8{0, 1, 0xFF}
	u16Vals := []uint16{0, 1, 0xFF, 0xFFFF}
	u32Vals := []uint32{0, 1, 0xFFFF, math.MaxUint32}
	u64Vals := []uint64{0, 1, 0xFFFF, math.MaxUint32, math.MaxUint64}
	u56Vals := []uint64{0, 1, (1 << 56) - 1}

	for _, v := range u8Vals {
		w.U8(v)
	}
	for _, v := range u16Vals {
		w.U16(v)
	}
	for _, v := range u32Vals {
		w.U32(v)
	}
	for _, v := range u64Vals {
		w.U64(v)
	}
	for _, v := range u56Vals {
		w.U56(v)
	}

	r := newReaderFromWriter(w)
	for i, want := range u8Vals {
		assert.Equal(t, want, r.U8(), "U8 index %d", i)
	}
	for i, want := range u16Vals {
		assert.Equal(t, want, r.U16(), "U16 index %d", i)
	}
	for i, want := range u32Vals {
		assert.Equal(t, want, r.U32(), "U32 index %d", i)
	}
	for i, want := range u64Vals {
		assert.Equal(t, want, r.U64(), "U64 index %d", i)
	}
	for i, want := range u56Vals {
		assert.Equal(t, want, r.U56(), "U56 index %d", i)
	}
	assert.True(t, r.Empty())
}

func TestU56_TooBigPanics(t *testing.T) {
	require.Panics(t, func() { NewWriter().U56(1 << 56) })
}

func TestBytes_RoundTrip(t *testing.T) {
	w := NewWriter()
	w.Bool(true)
	w.FixedBytes([]byte{1, 2, 3})
	w.SliceBytes([]byte{4, 5, 6, 7})
	w.SliceBytes([]byte{})
	w.Bool(false)

	r := newReaderFromWriter(w)
	require.True(t, r.Bool())
	fixed := make([]byte, 3)
	r.FixedBytes(fixed)
	require.Equal(t, []byte{1, 2, 3}, fixed)
	require.Equal(t, []byte{4, 5, 6, 7}, r.SliceBytes(10))
	require.Equal(t, []byte{}, r.SliceBytes(10))
	require.False(t, r.Bool())
}

func TestSliceBytes_AllocLimit(t *testing.T) {
	w := NewWriter()
	w.SliceBytes(make([]byte, 11))

	r := newReaderFromWriter(w)
	require.PanicsWithValue(t, ErrTooLargeAlloc, func() { r.SliceBytes(10) })
}

func TestReadUintLE_NonCanonical(t *testing.T) {
	// 1 encoded on two bytes: the most significant byte is zero.
	r := &Reader{bytes: []byte{1, 0}}
	require.PanicsWithValue(t, ErrNonCanonicalEncoding, func() { r.readUintLE(2) })
}
