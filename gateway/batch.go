package gateway

import (
	"fmt"

	"github.com/rony4d/lp-gateway/inter"
)

// StartBatch opens a batch: messages that sender hands to destination are
// packed together until EndBatch.
func (g *Gateway) StartBatch(sender inter.DomainAddress, destination inter.Domain) error {
	return g.store.Atomic(func() error {
		return g.startBatch(sender, destination)
	})
}

// Handle is the outbound entry point for local senders. The message is packed
// into the open batch of (sender, destination) if there is one, and queued
// right away otherwise.
func (g *Gateway) Handle(sender inter.DomainAddress, destination inter.Domain, msg inter.Message) error {
	if destination.IsLocal() {
		return fmt.Errorf("%w: %s", ErrDomainNotSupported, destination)
	}
	return g.store.Atomic(func() error {
		return g.handle(sender, destination, msg)
	})
}

// EndBatch closes the open batch of (sender, destination) and queues it.
// Nothing is queued for an empty batch.
func (g *Gateway) EndBatch(sender inter.DomainAddress, destination inter.Domain) error {
	return g.store.Atomic(func() error {
		return g.endBatch(sender, destination)
	})
}

func (g *Gateway) startBatch(sender inter.DomainAddress, destination inter.Domain) error {
	if _, ok := g.store.GetPackedBatch(sender, destination); ok {
		return ErrMessagePackingAlreadyStarted
	}
	g.store.SetPackedBatch(sender, destination, inter.EmptyBatch())
	return nil
}

func (g *Gateway) handle(sender inter.DomainAddress, destination inter.Domain, msg inter.Message) error {
	if destination.IsLocal() {
		return fmt.Errorf("%w: %s", ErrDomainNotSupported, destination)
	}
	batch, ok := g.store.GetPackedBatch(sender, destination)
	if !ok {
		return g.queueOutbound(destination, msg)
	}
	if err := batch.PackWith(msg); err != nil {
		return err
	}
	g.store.SetPackedBatch(sender, destination, batch)
	return nil
}

func (g *Gateway) endBatch(sender inter.DomainAddress, destination inter.Domain) error {
	batch, ok := g.store.GetPackedBatch(sender, destination)
	if !ok {
		return ErrMessagePackingNotStarted
	}
	g.store.DeletePackedBatch(sender, destination)
	if len(batch.Submessages()) == 0 {
		return nil
	}
	return g.queueOutbound(destination, batch)
}

// unitOutbox serves handlers from inside the unit of work that runs them.
type unitOutbox struct {
	g *Gateway
}

func (o unitOutbox) QueueOutboundMessage(destination inter.Domain, msg inter.Message) error {
	return o.g.queueOutbound(destination, msg)
}

func (o unitOutbox) Handle(sender inter.DomainAddress, destination inter.Domain, msg inter.Message) error {
	return o.g.handle(sender, destination, msg)
}

func (o unitOutbox) StartBatch(sender inter.DomainAddress, destination inter.Domain) error {
	return o.g.startBatch(sender, destination)
}

func (o unitOutbox) EndBatch(sender inter.DomainAddress, destination inter.Domain) error {
	return o.g.endBatch(sender, destination)
}
