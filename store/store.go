// Package store keeps the gateway's durable state in a lachesis-base
// key-value database: pending inbound entries, the session registry, the
// admitted router list, outbound batches being packed and the message queue.
//
// Every mutation happens inside Atomic. Writes land in a flushable overlay
// that is flushed to the backing database only when the unit of work
// succeeds and dropped otherwise.
package store

import (
	"sync"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/logger"
)

// Store is the gateway state over a kvdb.Store.
type Store struct {
	mainDB    kvdb.Store
	flushable *flushable.Flushable

	// mu serializes units of work; readers share it.
	mu sync.RWMutex
	// onCommit collects callbacks of the running unit of work.
	onCommit []func()

	table struct {
		// Pending inbound entries keyed by fingerprint|router.
		Entries kvdb.Store `table:"e"`
		// Singletons: session ID, admitted routers, queue nonce.
		Meta kvdb.Store `table:"m"`
		// Outbound batches being packed keyed by sender|destination.
		Batches kvdb.Store `table:"b"`
		// Queued gateway messages keyed by nonce.
		Queue kvdb.Store `table:"q"`
		// Failed gateway messages keyed by nonce.
		Failed kvdb.Store `table:"f"`
		// Allowlisted foreign instances keyed by domain|address.
		Instances kvdb.Store `table:"a"`
	}

	Log *logrus.Entry
}

// New wraps mainDB. The store owns mainDB and closes it on Close.
func New(mainDB kvdb.Store) *Store {
	s := &Store{
		mainDB:    mainDB,
		flushable: flushable.Wrap(mainDB),
		Log:       logger.New("store"),
	}
	table.MigrateTables(&s.table, s.flushable)
	return s
}

// Atomic runs fn as one all-or-nothing unit of work. The overlay is flushed
// if fn returns nil and dropped if it returns an error or panics; a panic is
// re-raised after the drop. Callbacks registered with OnCommit run after a
// successful flush, once the store is unlocked. Units of work do not nest:
// calling Atomic or View from fn blocks forever.
func (s *Store) Atomic(fn func() error) error {
	hooks, err := s.atomic(fn)
	if err != nil {
		return err
	}
	for _, h := range hooks {
		h()
	}
	return nil
}

func (s *Store) atomic(fn func() error) (hooks []func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onCommit = nil
	defer func() {
		if r := recover(); r != nil {
			s.onCommit = nil
			s.flushable.DropNotFlushed()
			panic(r)
		}
	}()

	if err = fn(); err != nil {
		s.onCommit = nil
		s.flushable.DropNotFlushed()
		return nil, err
	}
	if err = s.flushable.Flush(); err != nil {
		s.onCommit = nil
		return nil, err
	}
	hooks, s.onCommit = s.onCommit, nil
	return hooks, nil
}

// OnCommit defers fn until the running unit of work is committed. It must be
// called from inside Atomic.
func (s *Store) OnCommit(fn func()) {
	s.onCommit = append(s.onCommit, fn)
}

// View runs fn against a consistent snapshot of committed state.
func (s *Store) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Close flushes nothing: pending writes belong to an aborted unit of work.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushable.DropNotFlushed()
	return s.mainDB.Close()
}

func (s *Store) put(db kvdb.Store, key, val []byte) {
	if err := db.Put(key, val); err != nil {
		s.Log.WithError(err).Panic("Failed to put key-value")
	}
}

func (s *Store) get(db kvdb.Store, key []byte) []byte {
	val, err := db.Get(key)
	if err != nil {
		s.Log.WithError(err).Panic("Failed to get key-value")
	}
	return val
}

func (s *Store) has(db kvdb.Store, key []byte) bool {
	ok, err := db.Has(key)
	if err != nil {
		s.Log.WithError(err).Panic("Failed to check key")
	}
	return ok
}

func (s *Store) delete(db kvdb.Store, key []byte) {
	if err := db.Delete(key); err != nil {
		s.Log.WithError(err).Panic("Failed to erase key-value")
	}
}

// forEach walks db in key order, stopping when fn returns false.
func (s *Store) forEach(db kvdb.Store, prefix []byte, fn func(key, val []byte) bool) {
	it := db.NewIterator(prefix, nil)
	defer it.Release()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	if err := it.Error(); err != nil {
		s.Log.WithError(err).Panic("Failed to iterate keys")
	}
}
