package inter

import (
	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/lp-gateway/utils/cser"
)

// MaxIncomingMessageSize bounds a raw message accepted from a router.
const MaxIncomingMessageSize = 64 * 1024

// MarshalCSER writes m as
//
//	kind (u8) | proof hash (32 bytes) | payload (sized bytes) | count (u32) + items
//
// where only the body matching kind is present and batch items repeat the
// kind-tagged layout without nesting.
func (m Message) MarshalCSER(w *cser.Writer) error {
	return marshalMessage(w, m, true)
}

func marshalMessage(w *cser.Writer, m Message, allowBatch bool) error {
	switch m.Kind {
	case ProofKind:
		w.U8(uint8(m.Kind))
		w.FixedBytes(m.Proof.Bytes())
	case PayloadKind:
		w.U8(uint8(m.Kind))
		w.SliceBytes(m.Payload)
	case BatchKind:
		if !allowBatch {
			return ErrNestedBatch
		}
		if len(m.Batch) > MaxBatchMessages {
			return ErrBatchLimitReached
		}
		w.U8(uint8(m.Kind))
		w.U32(uint32(len(m.Batch)))
		for _, sub := range m.Batch {
			if err := marshalMessage(w, sub, false); err != nil {
				return err
			}
		}
	default:
		return ErrInvalidMessage
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(m.MarshalCSER)
}

// UnmarshalCSER reads a message written by MarshalCSER.
func (m *Message) UnmarshalCSER(r *cser.Reader) error {
	return unmarshalMessage(r, m, true)
}

func unmarshalMessage(r *cser.Reader, m *Message, allowBatch bool) error {
	kind := MessageKind(r.U8())
	switch kind {
	case ProofKind:
		var h hash.Hash
		r.FixedBytes(h[:])
		*m = NewProof(h)
	case PayloadKind:
		*m = NewPayload(r.SliceBytes(cser.MaxAlloc))
	case BatchKind:
		if !allowBatch {
			return ErrNestedBatch
		}
		n := r.U32()
		if n > MaxBatchMessages {
			return ErrBatchLimitReached
		}
		batch := Message{Kind: BatchKind, Batch: make([]Message, n)}
		for i := range batch.Batch {
			if err := unmarshalMessage(r, &batch.Batch[i], false); err != nil {
				return err
			}
		}
		*m = batch
	default:
		return ErrInvalidMessage
	}
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, m.UnmarshalCSER)
}
