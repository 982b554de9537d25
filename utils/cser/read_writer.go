// Package cser implements the canonical binary serialization used for
// gateway messages on the wire.
//
// Values are split over two streams: integer payload bytes go to a byte
// stream while their lengths and all booleans go to a bit stream. Decoding is
// strict: any value not packed minimally is rejected, so every message has
// exactly one valid encoding and its keccak256 fingerprint is stable across
// relays.
package cser

import (
	"errors"

	"github.com/rony4d/lp-gateway/utils/bits"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc bounds a single decoded byte slice.
const MaxAlloc = 100 * 1024

// Writer accumulates the bit and byte streams of one encoding.
type Writer struct {
	BitsW *bits.Writer
	bytes []byte
}

// Reader consumes the bit and byte streams of one encoding.
// Reading past the end of either stream panics; UnmarshalBinaryAdapter
// converts such panics into ErrMalformedEncoding.
type Reader struct {
	BitsR  *bits.Reader
	bytes  []byte
	offset int
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{
		BitsW: bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 16)}),
		bytes: make([]byte, 0, 128),
	}
}

// NewReader returns a reader over already split streams.
func NewReader(bitsArr *bits.Array, body []byte) *Reader {
	return &Reader{
		BitsR: bits.NewReader(bitsArr),
		bytes: body,
	}
}

// Bytes returns the byte stream written so far.
func (w *Writer) Bytes() []byte {
	return w.bytes
}

func (r *Reader) read(n int) []byte {
	res := r.bytes[r.offset : r.offset+n]
	r.offset += n
	return res
}

// Empty reports whether the byte stream was fully consumed.
func (r *Reader) Empty() bool {
	return r.offset == len(r.bytes)
}

// writeUintLE writes v little endian using as few bytes as possible, but at least minSize.
func (w *Writer) writeUintLE(v uint64, minSize int) (size int) {
	for size < minSize || v != 0 {
		w.bytes = append(w.bytes, byte(v))
		v >>= 8
		size++
	}
	return size
}

func (r *Reader) readUintLE(size int) uint64 {
	var v uint64
	buf := r.read(size)
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
	}
	if size > 1 && buf[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

func (w *Writer) writeSized(minSize, sizeBits int, v uint64) {
	size := w.writeUintLE(v, minSize)
	w.BitsW.Write(sizeBits, uint(size-minSize))
}

func (r *Reader) readSized(minSize, sizeBits int) uint64 {
	size := int(r.BitsR.Read(sizeBits)) + minSize
	return r.readUintLE(size)
}

// U8 writes a raw byte.
func (w *Writer) U8(v uint8) {
	w.bytes = append(w.bytes, v)
}

// U8 reads a raw byte.
func (r *Reader) U8() uint8 {
	return r.read(1)[0]
}

// U16 writes 1..2 bytes with a 1-bit length.
func (w *Writer) U16(v uint16) {
	w.writeSized(1, 1, uint64(v))
}

// U16 reads a value written by Writer.U16.
func (r *Reader) U16() uint16 {
	return uint16(r.readSized(1, 1))
}

// U32 writes 1..4 bytes with a 2-bit length.
func (w *Writer) U32(v uint32) {
	w.writeSized(1, 2, uint64(v))
}

// U32 reads a value written by Writer.U32.
func (r *Reader) U32() uint32 {
	return uint32(r.readSized(1, 2))
}

// U64 writes 1..8 bytes with a 3-bit length.
func (w *Writer) U64(v uint64) {
	w.writeSized(1, 3, v)
}

// U64 reads a value written by Writer.U64.
func (r *Reader) U64() uint64 {
	return r.readSized(1, 3)
}

// U56 writes 0..7 bytes with a 3-bit length; used for slice lengths.
func (w *Writer) U56(v uint64) {
	const max = 1<<(8*7) - 1
	if v > max {
		panic("cser: value too big for U56")
	}
	w.writeSized(0, 3, v)
}

// U56 reads a value written by Writer.U56.
func (r *Reader) U56() uint64 {
	return r.readSized(0, 3)
}

// Bool writes a single bit.
func (w *Writer) Bool(v bool) {
	b := uint(0)
	if v {
		b = 1
	}
	w.BitsW.Write(1, b)
}

// Bool reads a single bit.
func (r *Reader) Bool() bool {
	return r.BitsR.Read(1) != 0
}

// FixedBytes writes v without a length prefix.
func (w *Writer) FixedBytes(v []byte) {
	w.bytes = append(w.bytes, v...)
}

// FixedBytes fills v from the byte stream.
func (r *Reader) FixedBytes(v []byte) {
	copy(v, r.read(len(v)))
}

// SliceBytes writes v prefixed with its length.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length prefixed slice no longer than maxLen.
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}
