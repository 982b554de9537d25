package ientry

import (
	"math"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/lp-gateway/inter"
)

var (
	testSender  = inter.NewEVMAddress(1, common.HexToAddress("0x1111111111111111111111111111111111111111"))
	testRouters = []inter.RouterID{"r0", "r1", "r2"}
	testMessage = inter.NewPayload([]byte("message"))
)

func TestNew(t *testing.T) {
	e := New(testSender, 3, 2, testMessage)
	require.Equal(t, MessageEntry{SessionID: 3, Sender: testSender, Message: testMessage, ExpectedProofCount: 2}, e)

	e = New(testSender, 3, 2, testMessage.ProofMessage())
	require.Equal(t, ProofEntry{SessionID: 3, CurrentCount: 1}, e)
}

func TestValidate(t *testing.T) {
	msg := New(testSender, 1, 2, testMessage)
	proof := New(testSender, 1, 2, testMessage.ProofMessage())

	tests := []struct {
		name   string
		entry  Entry
		router inter.RouterID
		err    error
	}{
		{"message from first", msg, "r0", nil},
		{"message from second", msg, "r1", ErrMessageExpectedFromFirstRouter},
		{"proof from first", proof, "r0", ErrProofNotExpectedFromFirstRouter},
		{"proof from last", proof, "r2", nil},
		{"message from unknown", msg, "r9", ErrUnknownRouter},
		{"proof from unknown", proof, "r9", ErrUnknownRouter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.entry, testRouters, tt.router)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}

	require.ErrorIs(t, Validate(msg, nil, "r0"), ErrUnknownRouter)
}

func TestMerge(t *testing.T) {
	t.Run("messages same session add", func(t *testing.T) {
		res, err := Merge(New(testSender, 1, 2, testMessage), New(testSender, 1, 2, testMessage))
		require.NoError(t, err)
		require.Equal(t, uint32(4), res.Count())
	})
	t.Run("proofs same session add", func(t *testing.T) {
		res, err := Merge(ProofEntry{SessionID: 1, CurrentCount: 2}, ProofEntry{SessionID: 1, CurrentCount: 1})
		require.NoError(t, err)
		require.Equal(t, ProofEntry{SessionID: 1, CurrentCount: 3}, res)
	})
	t.Run("session change replaces", func(t *testing.T) {
		res, err := Merge(ProofEntry{SessionID: 1, CurrentCount: 5}, ProofEntry{SessionID: 2, CurrentCount: 1})
		require.NoError(t, err)
		require.Equal(t, ProofEntry{SessionID: 2, CurrentCount: 1}, res)

		other := inter.NewPayload([]byte("other"))
		res, err = Merge(New(testSender, 1, 4, testMessage), New(testSender, 2, 2, other))
		require.NoError(t, err)
		require.Equal(t, New(testSender, 2, 2, other), res)
	})
	t.Run("mismatched variants", func(t *testing.T) {
		_, err := Merge(New(testSender, 1, 2, testMessage), ProofEntry{SessionID: 1, CurrentCount: 1})
		require.ErrorIs(t, err, ErrExpectedMessageType)
		require.ErrorIs(t, err, ErrMismatchedEntryVariant)

		_, err = Merge(ProofEntry{SessionID: 1, CurrentCount: 1}, New(testSender, 1, 2, testMessage))
		require.ErrorIs(t, err, ErrExpectedMessageProofType)
		require.ErrorIs(t, err, ErrMismatchedEntryVariant)
	})
	t.Run("overflow", func(t *testing.T) {
		_, err := Merge(ProofEntry{SessionID: 1, CurrentCount: math.MaxUint32}, ProofEntry{SessionID: 1, CurrentCount: 1})
		require.ErrorIs(t, err, ErrArithmeticOverflow)
	})
}

func TestIncrementProofCount(t *testing.T) {
	res, err := IncrementProofCount(ProofEntry{SessionID: 1, CurrentCount: 1}, 1)
	require.NoError(t, err)
	require.Equal(t, ProofEntry{SessionID: 1, CurrentCount: 2}, res)

	res, err = IncrementProofCount(ProofEntry{SessionID: 1, CurrentCount: 7}, 2)
	require.NoError(t, err)
	require.Equal(t, ProofEntry{SessionID: 2, CurrentCount: 1}, res)

	_, err = IncrementProofCount(New(testSender, 1, 2, testMessage), 1)
	require.ErrorIs(t, err, ErrExpectedMessageProofType)
}

func TestPostVoting(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  Entry
		err   error
	}{
		{"message consumed", MessageEntry{SessionID: 1, ExpectedProofCount: 2}, nil, nil},
		{"message remains", MessageEntry{SessionID: 1, ExpectedProofCount: 4}, MessageEntry{SessionID: 1, ExpectedProofCount: 2}, nil},
		{"message underflow", MessageEntry{SessionID: 1, ExpectedProofCount: 1}, nil, ErrArithmeticUnderflow},
		{"message stale", MessageEntry{SessionID: 0, ExpectedProofCount: 4}, nil, nil},
		{"proof consumed", ProofEntry{SessionID: 1, CurrentCount: 1}, nil, nil},
		{"proof remains", ProofEntry{SessionID: 1, CurrentCount: 3}, ProofEntry{SessionID: 1, CurrentCount: 2}, nil},
		{"proof underflow", ProofEntry{SessionID: 1, CurrentCount: 0}, nil, ErrArithmeticUnderflow},
		{"proof stale", ProofEntry{SessionID: 0, CurrentCount: 3}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostVoting(tt.entry, 1, 2)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHasValidVoteForSession(t *testing.T) {
	require.True(t, ProofEntry{SessionID: 1, CurrentCount: 1}.HasValidVoteForSession(1))
	require.False(t, ProofEntry{SessionID: 1, CurrentCount: 0}.HasValidVoteForSession(1))
	require.False(t, ProofEntry{SessionID: 0, CurrentCount: 1}.HasValidVoteForSession(1))
}

func TestEncodeDecode(t *testing.T) {
	batch, err := inter.NewBatch(testMessage, inter.NewProof(hash.Hash{1}))
	require.NoError(t, err)

	for _, e := range []Entry{
		New(testSender, 5, 2, testMessage),
		New(testSender, 0, 0, batch),
		ProofEntry{SessionID: 9, CurrentCount: 3},
	} {
		raw, err := Encode(e)
		require.NoError(t, err)
		got, err := Decode(raw)
		require.NoError(t, err)
		require.Equal(t, e, got)
	}

	_, err = Decode([]byte{0xc2, 0x07, 0x80})
	require.ErrorIs(t, err, ErrUnknownEntryTag)
}
