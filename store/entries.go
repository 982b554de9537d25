package store

import (
	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/inter/ientry"
)

func entryKey(fingerprint hash.Hash, router inter.RouterID) []byte {
	return append(fingerprint.Bytes(), router.Bytes()...)
}

// GetEntry returns the pending entry at (fingerprint, router), or nil.
func (s *Store) GetEntry(fingerprint hash.Hash, router inter.RouterID) ientry.Entry {
	raw := s.get(s.table.Entries, entryKey(fingerprint, router))
	if raw == nil {
		return nil
	}
	e, err := ientry.Decode(raw)
	if err != nil {
		s.Log.WithError(err).WithField("fingerprint", fingerprint.String()).Panic("Failed to decode inbound entry")
	}
	return e
}

// SetEntry stores e at (fingerprint, router).
func (s *Store) SetEntry(fingerprint hash.Hash, router inter.RouterID, e ientry.Entry) {
	raw, err := ientry.Encode(e)
	if err != nil {
		s.Log.WithError(err).Panic("Failed to encode inbound entry")
	}
	s.put(s.table.Entries, entryKey(fingerprint, router), raw)
}

// DeleteEntry removes the entry at (fingerprint, router).
func (s *Store) DeleteEntry(fingerprint hash.Hash, router inter.RouterID) {
	s.delete(s.table.Entries, entryKey(fingerprint, router))
}

// HasEntries reports whether any router holds an entry for fingerprint.
func (s *Store) HasEntries(fingerprint hash.Hash) bool {
	found := false
	s.forEach(s.table.Entries, fingerprint.Bytes(), func(_, _ []byte) bool {
		found = true
		return false
	})
	return found
}

// EntriesByRouter returns every entry stored for fingerprint, keyed by router.
func (s *Store) EntriesByRouter(fingerprint hash.Hash) map[inter.RouterID]ientry.Entry {
	res := make(map[inter.RouterID]ientry.Entry)
	prefix := fingerprint.Bytes()
	s.forEach(s.table.Entries, prefix, func(key, val []byte) bool {
		e, err := ientry.Decode(val)
		if err != nil {
			s.Log.WithError(err).Panic("Failed to decode inbound entry")
		}
		res[inter.RouterID(key[len(prefix):])] = e
		return true
	})
	return res
}
