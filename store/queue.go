package store

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/lp-gateway/inter"
)

// FailedMessage is a queued message whose processing returned an error.
type FailedMessage struct {
	Message inter.GatewayMessage
	Error   string
}

type failedMessageRLP struct {
	Message []byte
	Error   string
}

func (s *Store) decodeQueued(raw []byte) inter.GatewayMessage {
	var msg inter.GatewayMessage
	if err := msg.UnmarshalBinary(raw); err != nil {
		s.Log.WithError(err).Panic("Failed to decode queued message")
	}
	return msg
}

func (s *Store) encodeQueued(msg inter.GatewayMessage) []byte {
	raw, err := msg.MarshalBinary()
	if err != nil {
		s.Log.WithError(err).Panic("Failed to encode queued message")
	}
	return raw
}

// GetQueued returns the pending message with the given nonce.
func (s *Store) GetQueued(nonce uint64) (inter.GatewayMessage, bool) {
	raw := s.get(s.table.Queue, bigendian.Uint64ToBytes(nonce))
	if raw == nil {
		return inter.GatewayMessage{}, false
	}
	return s.decodeQueued(raw), true
}

// SetQueued stores a pending message.
func (s *Store) SetQueued(nonce uint64, msg inter.GatewayMessage) {
	s.put(s.table.Queue, bigendian.Uint64ToBytes(nonce), s.encodeQueued(msg))
}

// DeleteQueued removes a pending message.
func (s *Store) DeleteQueued(nonce uint64) {
	s.delete(s.table.Queue, bigendian.Uint64ToBytes(nonce))
}

// ForEachQueued walks pending messages in nonce order until fn returns false.
func (s *Store) ForEachQueued(fn func(nonce uint64, msg inter.GatewayMessage) bool) {
	s.forEach(s.table.Queue, nil, func(key, val []byte) bool {
		return fn(bigendian.BytesToUint64(key), s.decodeQueued(val))
	})
}

// GetFailed returns the failed message with the given nonce.
func (s *Store) GetFailed(nonce uint64) (FailedMessage, bool) {
	raw := s.get(s.table.Failed, bigendian.Uint64ToBytes(nonce))
	if raw == nil {
		return FailedMessage{}, false
	}
	return s.decodeFailed(raw), true
}

// SetFailed stores a failed message together with its error.
func (s *Store) SetFailed(nonce uint64, msg FailedMessage) {
	raw, err := rlp.EncodeToBytes(&failedMessageRLP{
		Message: s.encodeQueued(msg.Message),
		Error:   msg.Error,
	})
	if err != nil {
		s.Log.WithError(err).Panic("Failed to encode failed message")
	}
	s.put(s.table.Failed, bigendian.Uint64ToBytes(nonce), raw)
}

// DeleteFailed removes a failed message.
func (s *Store) DeleteFailed(nonce uint64) {
	s.delete(s.table.Failed, bigendian.Uint64ToBytes(nonce))
}

// ForEachFailed walks failed messages in nonce order until fn returns false.
func (s *Store) ForEachFailed(fn func(nonce uint64, msg FailedMessage) bool) {
	s.forEach(s.table.Failed, nil, func(key, val []byte) bool {
		return fn(bigendian.BytesToUint64(key), s.decodeFailed(val))
	})
}

func (s *Store) decodeFailed(raw []byte) FailedMessage {
	var dec failedMessageRLP
	if err := rlp.DecodeBytes(raw, &dec); err != nil {
		s.Log.WithError(err).Panic("Failed to decode failed message")
	}
	return FailedMessage{Message: s.decodeQueued(dec.Message), Error: dec.Error}
}
