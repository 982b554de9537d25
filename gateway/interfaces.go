package gateway

import (
	"github.com/rony4d/lp-gateway/inter"
)

// RouterProvider lists every router able to reach a domain.
type RouterProvider interface {
	RoutersForDomain(domain inter.Domain) []inter.RouterID
}

// InboundMessageHandler receives each released message exactly once. It
// runs inside the unit of work that released msg: replies go through out and
// are committed or rolled back together with the release. Calling Gateway
// methods from Handle blocks forever.
type InboundMessageHandler interface {
	Handle(out Outbox, sender inter.DomainAddress, msg inter.Message) error
}

// Outbox is the outbound side of the gateway as seen from inside a running
// unit of work.
type Outbox interface {
	QueueOutboundMessage(destination inter.Domain, msg inter.Message) error
	Handle(sender inter.DomainAddress, destination inter.Domain, msg inter.Message) error
	StartBatch(sender inter.DomainAddress, destination inter.Domain) error
	EndBatch(sender inter.DomainAddress, destination inter.Domain) error
}

// MessageSender transports an outbound message over one router.
type MessageSender interface {
	Send(router inter.RouterID, sender inter.DomainAddress, payload []byte) error
}

// MessageQueue accepts gateway messages for deferred processing. Enqueue is
// called from inside a running store unit of work.
type MessageQueue interface {
	Enqueue(msg inter.GatewayMessage) (nonce uint64, err error)
}

// InboundMessageHandlerFunc adapts a function to InboundMessageHandler.
type InboundMessageHandlerFunc func(out Outbox, sender inter.DomainAddress, msg inter.Message) error

func (f InboundMessageHandlerFunc) Handle(out Outbox, sender inter.DomainAddress, msg inter.Message) error {
	return f(out, sender, msg)
}
