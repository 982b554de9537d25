package store

import (
	"github.com/rony4d/lp-gateway/inter"
)

func batchKey(sender inter.DomainAddress, destination inter.Domain) []byte {
	key := make([]byte, 0, 9+32+9)
	key = append(key, sender.Domain.Bytes()...)
	key = append(key, sender.Address[:]...)
	return append(key, destination.Bytes()...)
}

// GetPackedBatch returns the batch being packed by sender for destination.
func (s *Store) GetPackedBatch(sender inter.DomainAddress, destination inter.Domain) (inter.Message, bool) {
	raw := s.get(s.table.Batches, batchKey(sender, destination))
	if raw == nil {
		return inter.Message{}, false
	}
	msg, err := inter.DeserializeMessage(raw)
	if err != nil {
		s.Log.WithError(err).Panic("Failed to decode packed batch")
	}
	return msg, true
}

// SetPackedBatch stores the batch being packed by sender for destination.
func (s *Store) SetPackedBatch(sender inter.DomainAddress, destination inter.Domain, batch inter.Message) {
	raw, err := batch.MarshalBinary()
	if err != nil {
		s.Log.WithError(err).Panic("Failed to encode packed batch")
	}
	s.put(s.table.Batches, batchKey(sender, destination), raw)
}

// DeletePackedBatch forgets the batch being packed by sender for destination.
func (s *Store) DeletePackedBatch(sender inter.DomainAddress, destination inter.Domain) {
	s.delete(s.table.Batches, batchKey(sender, destination))
}
