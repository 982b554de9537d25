package ientry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/lp-gateway/inter"
)

const (
	messageTag uint8 = 1
	proofTag   uint8 = 2
)

var ErrUnknownEntryTag = errors.New("unknown entry tag")

type taggedRLP struct {
	Tag  uint8
	Body rlp.RawValue
}

type messageEntryRLP struct {
	SessionID          uint64
	Sender             inter.DomainAddress
	Message            []byte
	ExpectedProofCount uint32
}

type proofEntryRLP struct {
	SessionID    uint64
	CurrentCount uint32
}

// Encode returns the storage form of e: an RLP list of the variant tag and
// the variant body.
func Encode(e Entry) ([]byte, error) {
	var (
		tag  uint8
		body []byte
		err  error
	)
	switch v := e.(type) {
	case MessageEntry:
		var msg []byte
		msg, err = v.Message.MarshalBinary()
		if err != nil {
			return nil, err
		}
		tag = messageTag
		body, err = rlp.EncodeToBytes(&messageEntryRLP{
			SessionID:          uint64(v.SessionID),
			Sender:             v.Sender,
			Message:            msg,
			ExpectedProofCount: v.ExpectedProofCount,
		})
	case ProofEntry:
		tag = proofTag
		body, err = rlp.EncodeToBytes(&proofEntryRLP{
			SessionID:    uint64(v.SessionID),
			CurrentCount: v.CurrentCount,
		})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEntryTag, e)
	}
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&taggedRLP{Tag: tag, Body: body})
}

// Decode is the inverse of Encode.
func Decode(raw []byte) (Entry, error) {
	var tagged taggedRLP
	if err := rlp.DecodeBytes(raw, &tagged); err != nil {
		return nil, err
	}
	switch tagged.Tag {
	case messageTag:
		var dec messageEntryRLP
		if err := rlp.DecodeBytes(tagged.Body, &dec); err != nil {
			return nil, err
		}
		msg, err := inter.DeserializeMessage(dec.Message)
		if err != nil {
			return nil, err
		}
		return MessageEntry{
			SessionID:          inter.SessionID(dec.SessionID),
			Sender:             dec.Sender,
			Message:            msg,
			ExpectedProofCount: dec.ExpectedProofCount,
		}, nil
	case proofTag:
		var dec proofEntryRLP
		if err := rlp.DecodeBytes(tagged.Body, &dec); err != nil {
			return nil, err
		}
		return ProofEntry{
			SessionID:    inter.SessionID(dec.SessionID),
			CurrentCount: dec.CurrentCount,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntryTag, tagged.Tag)
	}
}
