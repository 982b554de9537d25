package store

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/lp-gateway/inter"
)

var (
	sessionKey = []byte("session")
	routersKey = []byte("routers")
	nonceKey   = []byte("nonce")
)

// GetSessionID returns the current session, 0 until routers are first set.
func (s *Store) GetSessionID() inter.SessionID {
	raw := s.get(s.table.Meta, sessionKey)
	if raw == nil {
		return 0
	}
	return inter.SessionID(bigendian.BytesToUint64(raw))
}

// SetSessionID records the current session.
func (s *Store) SetSessionID(id inter.SessionID) {
	s.put(s.table.Meta, sessionKey, bigendian.Uint64ToBytes(uint64(id)))
}

// GetRouters returns the admitted routers in their stored order.
func (s *Store) GetRouters() []inter.RouterID {
	raw := s.get(s.table.Meta, routersKey)
	if raw == nil {
		return nil
	}
	var ids []string
	if err := rlp.DecodeBytes(raw, &ids); err != nil {
		s.Log.WithError(err).Panic("Failed to decode routers")
	}
	res := make([]inter.RouterID, len(ids))
	for i, id := range ids {
		res[i] = inter.RouterID(id)
	}
	return res
}

// SetRouters replaces the admitted routers.
func (s *Store) SetRouters(routers []inter.RouterID) {
	ids := make([]string, len(routers))
	for i, r := range routers {
		ids[i] = string(r)
	}
	raw, err := rlp.EncodeToBytes(ids)
	if err != nil {
		s.Log.WithError(err).Panic("Failed to encode routers")
	}
	s.put(s.table.Meta, routersKey, raw)
}

// NextNonce allocates the next queue nonce. Nonces start at 1.
func (s *Store) NextNonce() uint64 {
	var nonce uint64
	if raw := s.get(s.table.Meta, nonceKey); raw != nil {
		nonce = bigendian.BytesToUint64(raw)
	}
	nonce++
	s.put(s.table.Meta, nonceKey, bigendian.Uint64ToBytes(nonce))
	return nonce
}
