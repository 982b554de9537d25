package cser

import (
	"github.com/rony4d/lp-gateway/utils/bits"
)

// MarshalBinaryAdapter runs marshalCser against a fresh writer and packs both
// streams into one slice laid out as
//
//	[byte stream][bit stream][reversed varint(len(bit stream))]
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	raw := make([]byte, 0, len(w.bytes)+len(w.BitsW.Bytes)+2)
	raw = append(raw, w.bytes...)
	raw = append(raw, w.BitsW.Bytes...)
	raw = append(raw, reversed(sizeSuffix(uint64(len(w.BitsW.Bytes))))...)
	return raw, nil
}

// UnmarshalBinaryAdapter splits raw into its streams, runs unmarshalCser and
// then insists that nothing but zero padding bits was left unread.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(*Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (e == ErrNonCanonicalEncoding || e == ErrTooLargeAlloc) {
				err = e
				return
			}
			err = ErrMalformedEncoding
		}
	}()

	bitsArr, body, err := split(raw)
	if err != nil {
		return err
	}
	r := NewReader(bitsArr, body)
	if err := unmarshalCser(r); err != nil {
		return err
	}

	if r.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if r.BitsR.Read(r.BitsR.NonReadBits()) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

// sizeSuffix encodes v 7 bits per byte, the high bit marking the last byte.
func sizeSuffix(v uint64) []byte {
	out := make([]byte, 0, 2)
	for {
		chunk := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, chunk|0x80)
		}
		out = append(out, chunk)
	}
}

func split(raw []byte) (*bits.Array, []byte, error) {
	suffix := reversed(tail(raw, 9))
	var (
		size uint64
		used int
		stop bool
	)
	for i := 0; !stop; i++ {
		if i >= len(suffix) {
			return nil, nil, ErrMalformedEncoding
		}
		chunk := suffix[i]
		stop = chunk&0x80 != 0
		word := uint64(chunk & 0x7f)
		if i > 0 && stop && word == 0 {
			return nil, nil, ErrNonCanonicalEncoding
		}
		size |= word << uint(7*i)
		used++
	}
	raw = raw[:len(raw)-used]
	if uint64(len(raw)) < size {
		return nil, nil, ErrMalformedEncoding
	}
	cut := uint64(len(raw)) - size
	return &bits.Array{Bytes: raw[cut:]}, raw[:cut], nil
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
