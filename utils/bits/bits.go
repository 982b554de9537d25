// Package bits implements an LSB-first bit stream used by the cser codec for
// flags and small length prefixes that do not deserve a whole byte.
package bits

type (
	// Array holds the bytes backing a bit stream.
	Array struct {
		Bytes []byte
	}

	// Writer appends values of arbitrary bit width to an Array.
	Writer struct {
		*Array
		bitOffset int // next free bit inside the last byte, 0 means a new byte is needed
	}

	// Reader consumes values of arbitrary bit width from an Array.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

// NewWriter returns a writer appending to arr.
func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

// NewReader returns a reader positioned at the start of arr.
func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

func lowBits(v uint, n int) uint {
	return v & (1<<uint(n) - 1)
}

// Write appends the lowest n bits of v.
func (w *Writer) Write(n int, v uint) {
	for n > 0 {
		if w.bitOffset == 0 {
			w.Bytes = append(w.Bytes, 0)
		}
		free := 8 - w.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		w.Bytes[len(w.Bytes)-1] |= byte(lowBits(v, chunk) << uint(w.bitOffset))
		w.bitOffset = (w.bitOffset + chunk) % 8
		v >>= uint(chunk)
		n -= chunk
	}
}

// Read consumes n bits and returns them as an integer.
// It panics when the stream holds fewer than n bits.
func (r *Reader) Read(n int) (v uint) {
	shift := 0
	for n > 0 {
		free := 8 - r.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		part := lowBits(uint(r.Bytes[r.byteOffset])>>uint(r.bitOffset), chunk)
		v |= part << uint(shift)
		shift += chunk
		n -= chunk
		r.bitOffset += chunk
		if r.bitOffset == 8 {
			r.bitOffset = 0
			r.byteOffset++
		}
	}
	return v
}

// View returns the next n bits without advancing the reader.
func (r *Reader) View(n int) uint {
	cp := *r
	return cp.Read(n)
}

// NonReadBytes returns the number of bytes not fully consumed yet.
func (r *Reader) NonReadBytes() int {
	return len(r.Bytes) - r.byteOffset
}

// NonReadBits returns the number of bits not consumed yet, padding included.
func (r *Reader) NonReadBits() int {
	return r.NonReadBytes()*8 - r.bitOffset
}
