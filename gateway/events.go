package gateway

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/event"

	"github.com/rony4d/lp-gateway/inter"
)

// InboundProofProcessed is emitted when a proof was recorded for a router.
type InboundProofProcessed struct {
	Sender      inter.DomainAddress
	Fingerprint hash.Hash
	Router      inter.RouterID
}

// InboundMessageProcessed is emitted when a carrier message was recorded for
// the first router.
type InboundMessageProcessed struct {
	Sender      inter.DomainAddress
	Fingerprint hash.Hash
	Router      inter.RouterID
}

// InboundMessageExecuted is emitted after a message was released to the
// handler.
type InboundMessageExecuted struct {
	Sender      inter.DomainAddress
	Fingerprint hash.Hash
}

// RoutersSet is emitted when the admitted routers change.
type RoutersSet struct {
	Routers []inter.RouterID
	Session inter.SessionID
}

// InstanceAdded is emitted when a foreign instance was allowlisted.
type InstanceAdded struct {
	Instance inter.DomainAddress
}

// InstanceRemoved is emitted when a foreign instance left the allowlist.
type InstanceRemoved struct {
	Instance inter.DomainAddress
}

type feeds struct {
	proofProcessed   event.Feed
	messageProcessed event.Feed
	messageExecuted  event.Feed
	routersSet       event.Feed
	instanceAdded    event.Feed
	instanceRemoved  event.Feed
}

// SubscribeInboundProofProcessed registers ch for InboundProofProcessed events.
func (g *Gateway) SubscribeInboundProofProcessed(ch chan<- InboundProofProcessed) event.Subscription {
	return g.feeds.proofProcessed.Subscribe(ch)
}

// SubscribeInboundMessageProcessed registers ch for InboundMessageProcessed events.
func (g *Gateway) SubscribeInboundMessageProcessed(ch chan<- InboundMessageProcessed) event.Subscription {
	return g.feeds.messageProcessed.Subscribe(ch)
}

// SubscribeInboundMessageExecuted registers ch for InboundMessageExecuted events.
func (g *Gateway) SubscribeInboundMessageExecuted(ch chan<- InboundMessageExecuted) event.Subscription {
	return g.feeds.messageExecuted.Subscribe(ch)
}

// SubscribeRoutersSet registers ch for RoutersSet events.
func (g *Gateway) SubscribeRoutersSet(ch chan<- RoutersSet) event.Subscription {
	return g.feeds.routersSet.Subscribe(ch)
}

// SubscribeInstanceAdded registers ch for InstanceAdded events.
func (g *Gateway) SubscribeInstanceAdded(ch chan<- InstanceAdded) event.Subscription {
	return g.feeds.instanceAdded.Subscribe(ch)
}

// SubscribeInstanceRemoved registers ch for InstanceRemoved events.
func (g *Gateway) SubscribeInstanceRemoved(ch chan<- InstanceRemoved) event.Subscription {
	return g.feeds.instanceRemoved.Subscribe(ch)
}

// emit publishes ev on feed once the running unit of work commits.
func (g *Gateway) emit(feed *event.Feed, ev interface{}) {
	g.store.OnCommit(func() {
		feed.Send(ev)
	})
}
