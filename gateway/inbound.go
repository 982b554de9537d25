package gateway

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/inter/ientry"
	"github.com/rony4d/lp-gateway/metrics"
)

// ProcessInboundMessage records msg as delivered by sender over router and
// releases every submessage whose quorum is complete. It returns the number
// of submessages processed, including the one that failed. On error nothing
// is recorded.
func (g *Gateway) ProcessInboundMessage(sender inter.DomainAddress, msg inter.Message, router inter.RouterID) (int, error) {
	var count int
	err := g.store.Atomic(func() (err error) {
		count, err = g.processInbound(sender, msg, router)
		return err
	})
	return count, err
}

func (g *Gateway) processInbound(sender inter.DomainAddress, msg inter.Message, router inter.RouterID) (int, error) {
	info, err := g.inboundProcessingInfo(sender)
	if err != nil {
		g.reject(err, sender, router)
		return 0, err
	}

	count := 0
	for _, sub := range msg.Submessages() {
		count++
		fingerprint := sub.Fingerprint()

		if err := g.validateAndUpsert(info, sub, fingerprint, router); err != nil {
			g.reject(err, sender, router)
			return count, err
		}
		if err := g.executeIfRequirementsAreMet(info, fingerprint); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (g *Gateway) reject(err error, sender inter.DomainAddress, router inter.RouterID) {
	metrics.RecordInboundRejected(rejectReason(err))
	g.Log.WithError(err).WithFields(logrus.Fields{
		"sender": sender.String(),
		"router": router.String(),
	}).Warn("Inbound message rejected")
}

func (g *Gateway) validateAndUpsert(info inboundProcessingInfo, sub inter.Message, fingerprint hash.Hash, router inter.RouterID) error {
	fresh := ientry.New(info.sender, info.session, info.expectedProofs, sub)
	if err := ientry.Validate(fresh, info.routers, router); err != nil {
		return err
	}

	res := fresh
	if stored := g.store.GetEntry(fingerprint, router); stored != nil {
		merged, err := ientry.Merge(stored, fresh)
		if err != nil {
			return err
		}
		res = merged
	}
	g.store.SetEntry(fingerprint, router, res)

	log := g.Log.WithFields(logrus.Fields{
		"fingerprint": fingerprint.String(),
		"router":      router.String(),
		"count":       res.Count(),
	})
	switch fresh.(type) {
	case ientry.ProofEntry:
		metrics.RecordInboundSubmessage("proof")
		log.Debug("Inbound proof processed")
		g.emit(&g.feeds.proofProcessed, InboundProofProcessed{Sender: info.sender, Fingerprint: fingerprint, Router: router})
	case ientry.MessageEntry:
		metrics.RecordInboundSubmessage("message")
		log.Debug("Inbound message processed")
		g.emit(&g.feeds.messageProcessed, InboundMessageProcessed{Sender: info.sender, Fingerprint: fingerprint, Router: router})
	}
	return nil
}

// executeIfRequirementsAreMet releases the message behind fingerprint once
// every router holds an entry and enough proofs of the current session back
// it. A missing slot is the normal partial delivery case, not an error.
func (g *Gateway) executeIfRequirementsAreMet(info inboundProcessingInfo, fingerprint hash.Hash) error {
	var (
		carrier *ientry.MessageEntry
		votes   uint32
	)
	for _, router := range info.routers {
		switch e := g.store.GetEntry(fingerprint, router).(type) {
		case nil:
			return nil
		case ientry.MessageEntry:
			carrier = &e
		case ientry.ProofEntry:
			if e.HasValidVoteForSession(info.session) {
				votes++
			}
		}
	}
	if votes < info.expectedProofs || carrier == nil {
		return nil
	}

	if err := g.executePostVotingDispatch(info, fingerprint); err != nil {
		return err
	}
	if err := g.handler.Handle(unitOutbox{g}, carrier.Sender, carrier.Message); err != nil {
		return fmt.Errorf("inbound message handler: %w", err)
	}

	metrics.RecordInboundExecuted()
	g.Log.WithFields(logrus.Fields{
		"sender":      carrier.Sender.String(),
		"fingerprint": fingerprint.String(),
	}).Info("Inbound message executed")
	g.emit(&g.feeds.messageExecuted, InboundMessageExecuted{Sender: carrier.Sender, Fingerprint: fingerprint})
	return nil
}

// executePostVotingDispatch consumes the quorum contribution of every
// router's entry, deleting the ones that are used up.
func (g *Gateway) executePostVotingDispatch(info inboundProcessingInfo, fingerprint hash.Hash) error {
	for _, router := range info.routers {
		stored := g.store.GetEntry(fingerprint, router)
		if stored == nil {
			panic(fmt.Errorf("%w: fingerprint %s, router %s", ErrPendingEntryNotFound, fingerprint, router))
		}
		left, err := ientry.PostVoting(stored, info.session, info.expectedProofs)
		if err != nil {
			return err
		}
		if left == nil {
			g.store.DeleteEntry(fingerprint, router)
		} else {
			g.store.SetEntry(fingerprint, router, left)
		}
	}
	return nil
}
