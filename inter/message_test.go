package inter

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSerialization_RoundTrip(t *testing.T) {
	batch, err := NewBatch(NewPayload([]byte{1}), NewProof(hash.Hash{0xaa}), NewPayload(nil))
	require.NoError(t, err)

	cases := map[string]Message{
		"payload":     NewPayload([]byte("transfer 100")),
		"empty":       NewPayload([]byte{}),
		"proof":       NewProof(hash.BytesToHash(bytes.Repeat([]byte{0xff}, 32))),
		"batch":       batch,
		"empty_batch": EmptyBatch(),
	}

	for name, original := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := original.MarshalBinary()
			require.NoError(t, err)

			decoded, err := DeserializeMessage(raw)
			require.NoError(t, err)

			require.Equal(t, original.Kind, decoded.Kind)
			require.Equal(t, len(original.Submessages()), len(decoded.Submessages()))
			assert.Equal(t, original.Fingerprint(), decoded.Fingerprint())
			assert.Equal(t, raw, decoded.Serialize(), "encoding must be canonical")
		})
	}
}

func TestMessageSerialization_Rejects(t *testing.T) {
	_, err := Message{}.MarshalBinary()
	require.ErrorIs(t, err, ErrInvalidMessage)

	nested := Message{Kind: BatchKind, Batch: []Message{EmptyBatch()}}
	_, err = nested.MarshalBinary()
	require.ErrorIs(t, err, ErrNestedBatch)

	_, err = DeserializeMessage([]byte{0x09, 0x80})
	require.ErrorIs(t, err, ErrInvalidMessage)

	raw := NewPayload([]byte{1, 2}).Serialize()
	_, err = DeserializeMessage(append([]byte{0x00}, raw...))
	require.Error(t, err)
}

func TestFingerprint_ProofMatchesCarrier(t *testing.T) {
	msg := NewPayload([]byte("update price"))

	proof := msg.ProofMessage()
	require.True(t, proof.IsProof())
	require.Equal(t, msg.Fingerprint(), proof.Fingerprint())
	require.Equal(t, hash.Hash(crypto.Keccak256Hash(msg.Serialize())), msg.Fingerprint())

	// Proof of a proof is the proof itself.
	require.Equal(t, proof, proof.ProofMessage())
}

func TestProofMessage_BatchProvesEachItem(t *testing.T) {
	a, b := NewPayload([]byte("a")), NewPayload([]byte("b"))
	batch, err := NewBatch(a, b)
	require.NoError(t, err)

	proofs := batch.ProofMessage()
	require.Equal(t, BatchKind, proofs.Kind)

	subs := proofs.Submessages()
	require.Len(t, subs, 2)
	require.Equal(t, a.Fingerprint(), subs[0].Fingerprint())
	require.Equal(t, b.Fingerprint(), subs[1].Fingerprint())
	require.True(t, subs[0].IsProof())
}

func TestPackWith(t *testing.T) {
	m := NewPayload([]byte{1})
	require.NoError(t, m.PackWith(NewPayload([]byte{2})))
	require.Equal(t, BatchKind, m.Kind)
	require.Len(t, m.Submessages(), 2)

	require.ErrorIs(t, m.PackWith(EmptyBatch()), ErrNestedBatch)

	var invalid Message
	require.ErrorIs(t, invalid.PackWith(NewPayload(nil)), ErrInvalidMessage)

	full := EmptyBatch()
	for i := 0; i < MaxBatchMessages; i++ {
		require.NoError(t, full.PackWith(NewPayload([]byte{byte(i)})))
	}
	require.ErrorIs(t, full.PackWith(NewPayload(nil)), ErrBatchLimitReached)
}

func TestSubmessages_NonBatch(t *testing.T) {
	m := NewPayload([]byte{7})
	require.Equal(t, []Message{m}, m.Submessages())
}
