package inter

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/crypto"
)

// MessageKind tags the variant carried by a Message.
type MessageKind uint8

const (
	InvalidKind MessageKind = iota
	// ProofKind carries only the fingerprint of a message sent on another router.
	ProofKind
	// BatchKind bundles several non-batch messages that are processed in order.
	BatchKind
	// PayloadKind is an opaque business message released to the handler.
	PayloadKind
)

// MaxBatchMessages bounds the number of submessages in one batch.
const MaxBatchMessages = 16

var (
	ErrInvalidMessage    = errors.New("invalid message")
	ErrNestedBatch       = errors.New("a submessage can not be a batch")
	ErrBatchLimitReached = errors.New("batch limit reached")
)

// Message is one bridged message: a carrier payload, a proof of a carrier
// payload, or a batch of either.
type Message struct {
	Kind    MessageKind
	Proof   hash.Hash // ProofKind only
	Payload []byte    // PayloadKind only
	Batch   []Message // BatchKind only
}

// NewPayload wraps an opaque business payload.
func NewPayload(payload []byte) Message {
	return Message{Kind: PayloadKind, Payload: payload}
}

// NewProof builds the proof-only message for fingerprint h.
func NewProof(h hash.Hash) Message {
	return Message{Kind: ProofKind, Proof: h}
}

// EmptyBatch returns a batch without submessages.
func EmptyBatch() Message {
	return Message{Kind: BatchKind}
}

// NewBatch bundles msgs into one batch message.
func NewBatch(msgs ...Message) (Message, error) {
	batch := EmptyBatch()
	for _, m := range msgs {
		if err := batch.PackWith(m); err != nil {
			return Message{}, err
		}
	}
	return batch, nil
}

// IsProof reports whether m is a proof-only message.
func (m Message) IsProof() bool {
	return m.Kind == ProofKind
}

// ProofHash returns the fingerprint carried by a proof message.
func (m Message) ProofHash() (hash.Hash, bool) {
	if m.Kind != ProofKind {
		return hash.Hash{}, false
	}
	return m.Proof, true
}

// Submessages splits m into the logical items processed independently on
// the inbound path. A non-batch message is its own single submessage.
func (m Message) Submessages() []Message {
	if m.Kind == BatchKind {
		out := make([]Message, len(m.Batch))
		copy(out, m.Batch)
		return out
	}
	return []Message{m}
}

// Fingerprint is the quorum key of m. A proof and the carrier it proves share
// the same fingerprint: keccak256 of the carrier's canonical encoding.
func (m Message) Fingerprint() hash.Hash {
	if h, ok := m.ProofHash(); ok {
		return h
	}
	return hash.Hash(crypto.Keccak256Hash(m.Serialize()))
}

// ProofMessage derives what non-first routers carry instead of m. Batches
// become batches of per-item proofs so every submessage fingerprint matches
// on each router.
func (m Message) ProofMessage() Message {
	switch m.Kind {
	case ProofKind:
		return m
	case BatchKind:
		proofs := Message{Kind: BatchKind, Batch: make([]Message, len(m.Batch))}
		for i, sub := range m.Batch {
			proofs.Batch[i] = sub.ProofMessage()
		}
		return proofs
	default:
		return NewProof(m.Fingerprint())
	}
}

// PackWith appends other to m, turning m into a batch when it is not one yet.
func (m *Message) PackWith(other Message) error {
	if other.Kind == BatchKind {
		return ErrNestedBatch
	}
	if other.Kind == InvalidKind || m.Kind == InvalidKind {
		return ErrInvalidMessage
	}
	if m.Kind != BatchKind {
		*m = Message{Kind: BatchKind, Batch: []Message{*m}}
	}
	if len(m.Batch) >= MaxBatchMessages {
		return ErrBatchLimitReached
	}
	m.Batch = append(m.Batch, other)
	return nil
}

// Serialize returns the canonical wire encoding of m. Invalid messages
// serialize to nil.
func (m Message) Serialize() []byte {
	raw, err := m.MarshalBinary()
	if err != nil {
		return nil
	}
	return raw
}

// DeserializeMessage decodes a canonical wire encoding.
func DeserializeMessage(raw []byte) (Message, error) {
	var m Message
	if err := m.UnmarshalBinary(raw); err != nil {
		return Message{}, err
	}
	return m, nil
}
