package store

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"

	"github.com/rony4d/lp-gateway/inter"
)

const instanceKeySize = 9 + 32

var instanceMark = []byte{1}

func instanceKey(instance inter.DomainAddress) []byte {
	key := make([]byte, 0, instanceKeySize)
	key = append(key, instance.Domain.Bytes()...)
	return append(key, instance.Address[:]...)
}

// HasInstance reports whether instance may send messages.
func (s *Store) HasInstance(instance inter.DomainAddress) bool {
	return s.has(s.table.Instances, instanceKey(instance))
}

// AddInstance allows instance to send messages.
func (s *Store) AddInstance(instance inter.DomainAddress) {
	s.put(s.table.Instances, instanceKey(instance), instanceMark)
}

// DeleteInstance withdraws the permission of instance.
func (s *Store) DeleteInstance(instance inter.DomainAddress) {
	s.delete(s.table.Instances, instanceKey(instance))
}

// Instances returns the allowlisted instances ordered by domain, then address.
func (s *Store) Instances() []inter.DomainAddress {
	var res []inter.DomainAddress
	s.forEach(s.table.Instances, nil, func(key, _ []byte) bool {
		if len(key) != instanceKeySize {
			s.Log.WithField("key", key).Panic("Malformed instance key")
		}
		var instance inter.DomainAddress
		instance.Domain.Kind = inter.DomainKind(key[0])
		instance.Domain.ChainID = bigendian.BytesToUint64(key[1:9])
		copy(instance.Address[:], key[9:])
		res = append(res, instance)
		return true
	})
	return res
}
