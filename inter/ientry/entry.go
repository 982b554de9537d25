// Package ientry (Inbound Entries) defines the per router quorum vote records
// kept for every in-flight message fingerprint.
//
// An Entry is either a MessageEntry, held only by the first router of a
// domain and carrying the message itself, or a ProofEntry, held by every
// other router and carrying a vote count. The two variants never combine:
// every operation below switches over both of them and treats a mixed pair as
// a logic-integrity error.
package ientry

import (
	"errors"
	"fmt"
	"math"

	"github.com/rony4d/lp-gateway/inter"
)

var (
	ErrUnknownRouter                   = errors.New("unknown router")
	ErrMessageExpectedFromFirstRouter  = errors.New("message expected from first router")
	ErrProofNotExpectedFromFirstRouter = errors.New("proof not expected from first router")

	ErrMismatchedEntryVariant   = errors.New("mismatched entry variant")
	ErrExpectedMessageType      = fmt.Errorf("%w: expected message type", ErrMismatchedEntryVariant)
	ErrExpectedMessageProofType = fmt.Errorf("%w: expected message proof type", ErrMismatchedEntryVariant)

	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")
)

// Entry is the sealed sum of MessageEntry and ProofEntry.
type Entry interface {
	// Session is the router configuration epoch the entry was recorded in.
	Session() inter.SessionID
	// Count is the outstanding quorum contribution of the entry.
	Count() uint32

	entry()
}

// MessageEntry records that the full message was received on the first router.
type MessageEntry struct {
	SessionID inter.SessionID
	// Sender is the foreign origin handed to the message handler on release.
	Sender  inter.DomainAddress
	Message inter.Message
	// ExpectedProofCount grows by the domain's proof requirement each time an
	// identical message arrives, and shrinks by it on each release.
	ExpectedProofCount uint32
}

// ProofEntry records the votes received on one non-first router.
type ProofEntry struct {
	SessionID    inter.SessionID
	CurrentCount uint32
}

func (MessageEntry) entry() {}
func (ProofEntry) entry()   {}

func (e MessageEntry) Session() inter.SessionID { return e.SessionID }
func (e ProofEntry) Session() inter.SessionID   { return e.SessionID }

func (e MessageEntry) Count() uint32 { return e.ExpectedProofCount }
func (e ProofEntry) Count() uint32   { return e.CurrentCount }

// HasValidVoteForSession reports whether the proof counts towards a quorum
// evaluated at session.
func (e ProofEntry) HasValidVoteForSession(session inter.SessionID) bool {
	return e.SessionID == session && e.CurrentCount > 0
}

// New builds the fresh entry for one submessage. Proof messages become a
// ProofEntry with a single vote, anything else a MessageEntry expecting
// expectedProofs corroborations.
func New(sender inter.DomainAddress, session inter.SessionID, expectedProofs uint32, msg inter.Message) Entry {
	if msg.IsProof() {
		return ProofEntry{SessionID: session, CurrentCount: 1}
	}
	return MessageEntry{
		SessionID:          session,
		Sender:             sender,
		Message:            msg,
		ExpectedProofCount: expectedProofs,
	}
}

// Validate checks that router may submit e given the domain's ordered router
// list: it must be listed, messages come only from the first router and
// proofs only from the others.
func Validate(e Entry, routers []inter.RouterID, router inter.RouterID) error {
	if !inter.ContainsRouter(routers, router) {
		return ErrUnknownRouter
	}
	first := routers[0] == router
	switch e.(type) {
	case MessageEntry:
		if !first {
			return ErrMessageExpectedFromFirstRouter
		}
	case ProofEntry:
		if first {
			return ErrProofNotExpectedFromFirstRouter
		}
	default:
		panic(fmt.Sprintf("unknown entry type %T", e))
	}
	return nil
}

// Merge folds a newly received entry into the stored one. Entries of the
// same session add up their counts, an entry of a different session replaces
// the stored one entirely.
func Merge(stored, incoming Entry) (Entry, error) {
	switch s := stored.(type) {
	case MessageEntry:
		in, ok := incoming.(MessageEntry)
		if !ok {
			return nil, ErrExpectedMessageType
		}
		if s.SessionID != in.SessionID {
			return in, nil
		}
		sum, err := checkedAdd(s.ExpectedProofCount, in.ExpectedProofCount)
		if err != nil {
			return nil, err
		}
		s.ExpectedProofCount = sum
		return s, nil
	case ProofEntry:
		in, ok := incoming.(ProofEntry)
		if !ok {
			return nil, ErrExpectedMessageProofType
		}
		if s.SessionID != in.SessionID {
			return in, nil
		}
		sum, err := checkedAdd(s.CurrentCount, in.CurrentCount)
		if err != nil {
			return nil, err
		}
		s.CurrentCount = sum
		return s, nil
	default:
		panic(fmt.Sprintf("unknown entry type %T", stored))
	}
}

// IncrementProofCount adds one vote to a proof entry, restarting the count at
// one when the entry belongs to another session.
func IncrementProofCount(e Entry, session inter.SessionID) (Entry, error) {
	p, ok := e.(ProofEntry)
	if !ok {
		return nil, ErrExpectedMessageProofType
	}
	if p.SessionID != session {
		return ProofEntry{SessionID: session, CurrentCount: 1}, nil
	}
	sum, err := checkedAdd(p.CurrentCount, 1)
	if err != nil {
		return nil, err
	}
	p.CurrentCount = sum
	return p, nil
}

// PostVoting returns what remains of e once a quorum evaluated at session
// released one message. A message entry gives up expectedProofs, a proof entry
// one vote. A nil Entry means the slot must be deleted: either the count
// reached zero or the entry belongs to another session.
func PostVoting(e Entry, session inter.SessionID, expectedProofs uint32) (Entry, error) {
	if e.Session() != session {
		return nil, nil
	}
	switch s := e.(type) {
	case MessageEntry:
		left, err := checkedSub(s.ExpectedProofCount, expectedProofs)
		if err != nil || left == 0 {
			return nil, err
		}
		s.ExpectedProofCount = left
		return s, nil
	case ProofEntry:
		left, err := checkedSub(s.CurrentCount, 1)
		if err != nil || left == 0 {
			return nil, err
		}
		s.CurrentCount = left
		return s, nil
	default:
		panic(fmt.Sprintf("unknown entry type %T", e))
	}
}

func checkedAdd(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

func checkedSub(a, b uint32) (uint32, error) {
	if b > a {
		return 0, ErrArithmeticUnderflow
	}
	return a - b, nil
}
