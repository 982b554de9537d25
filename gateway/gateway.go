// Package gateway implements the bridge message gateway: the inbound quorum
// aggregator that releases a foreign message once every configured router
// corroborated it, and the outbound dispatcher that fans local messages out
// to the routers of a destination.
//
// Inbound deliveries are expected on the first router of a domain as full
// messages and on every other router as proofs. Votes are bound to the
// session of the router configuration they were cast in, so changing the
// admitted routers invalidates everything pending.
package gateway

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/inter/ientry"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/store"
)

// Config of the gateway.
type Config struct {
	// Sender is the local account outbound messages are sent from.
	Sender inter.DomainAddress
	// MaxIncomingMessageSize bounds raw messages accepted by ReceiveMessage.
	MaxIncomingMessageSize int
}

// DefaultConfig returns the default gateway config.
func DefaultConfig() Config {
	return Config{
		Sender:                 inter.NewLocalAddress([32]byte{}),
		MaxIncomingMessageSize: inter.MaxIncomingMessageSize,
	}
}

// Gateway is the message gateway. All of its state lives in the store.
type Gateway struct {
	cfg Config

	store   *store.Store
	routers RouterProvider
	handler InboundMessageHandler
	sender  MessageSender
	queue   MessageQueue

	feeds feeds

	Log *logrus.Entry
}

// New creates a gateway over s.
func New(cfg Config, s *store.Store, routers RouterProvider, handler InboundMessageHandler, sender MessageSender, queue MessageQueue) *Gateway {
	return &Gateway{
		cfg:     cfg,
		store:   s,
		routers: routers,
		handler: handler,
		sender:  sender,
		queue:   queue,
		Log:     logger.New("gateway"),
	}
}

// ReceiveMessage is the edge where routers deliver raw foreign messages. The
// message is decoded and queued for inbound processing if sender is an
// allowlisted instance.
func (g *Gateway) ReceiveMessage(sender inter.DomainAddress, router inter.RouterID, raw []byte) (uint64, error) {
	if sender.Domain.IsLocal() {
		return 0, fmt.Errorf("%w: %s", ErrDomainNotSupported, sender.Domain)
	}
	if len(raw) > g.cfg.MaxIncomingMessageSize {
		return 0, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(raw), g.cfg.MaxIncomingMessageSize)
	}
	msg, err := inter.DeserializeMessage(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMessageDecodingFailed, err)
	}

	var nonce uint64
	err = g.store.Atomic(func() (err error) {
		if !g.store.HasInstance(sender) {
			return fmt.Errorf("%w: %s", ErrUnknownInstance, sender)
		}
		nonce, err = g.queue.Enqueue(inter.GatewayMessage{
			Kind:    inter.Inbound,
			Sender:  sender,
			Router:  router,
			Message: msg,
		})
		return err
	})
	return nonce, err
}

// Process handles one queued gateway message. The queue calls it inside its
// unit of work for inbound messages and outside of any for outbound ones,
// which only reach the MessageSender.
func (g *Gateway) Process(msg inter.GatewayMessage) error {
	switch msg.Kind {
	case inter.Inbound:
		_, err := g.processInbound(msg.Sender, msg.Message, msg.Router)
		return err
	case inter.Outbound:
		return g.sendOutbound(msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGatewayMessageKind, msg.Kind)
	}
}

// PendingEntry is the entry one router holds for a fingerprint.
type PendingEntry struct {
	Router inter.RouterID
	Entry  ientry.Entry
}

// PendingEntries returns the entries held for fingerprint. Admitted routers
// come first in their stored order, entries of other routers follow sorted by
// router.
func (g *Gateway) PendingEntries(fingerprint hash.Hash) []PendingEntry {
	var res []PendingEntry
	g.store.View(func() {
		byRouter := g.store.EntriesByRouter(fingerprint)
		for _, r := range g.store.GetRouters() {
			if e, ok := byRouter[r]; ok {
				res = append(res, PendingEntry{Router: r, Entry: e})
				delete(byRouter, r)
			}
		}
		rest := make([]PendingEntry, 0, len(byRouter))
		for r, e := range byRouter {
			rest = append(rest, PendingEntry{Router: r, Entry: e})
		}
		sort.Slice(rest, func(i, j int) bool {
			return rest[i].Router < rest[j].Router
		})
		res = append(res, rest...)
	})
	return res
}
