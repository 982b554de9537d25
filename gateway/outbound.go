package gateway

import (
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/metrics"
)

// QueueOutboundMessage fans msg out to destination's routers: the first router
// carries msg itself, every other router its proof.
func (g *Gateway) QueueOutboundMessage(destination inter.Domain, msg inter.Message) error {
	return g.store.Atomic(func() error {
		return g.queueOutbound(destination, msg)
	})
}

func (g *Gateway) queueOutbound(destination inter.Domain, msg inter.Message) error {
	routers, err := g.routersForDomain(destination)
	if err != nil {
		return err
	}

	proof := msg.ProofMessage()
	for i, router := range routers {
		routerMsg, kind := proof, "proof"
		if i == 0 {
			routerMsg, kind = msg, "message"
		}
		nonce, err := g.queue.Enqueue(inter.GatewayMessage{
			Kind:    inter.Outbound,
			Sender:  g.cfg.Sender,
			Router:  router,
			Message: routerMsg,
		})
		if err != nil {
			return err
		}
		metrics.RecordOutboundQueued(kind)
		g.Log.WithFields(logrus.Fields{
			"destination": destination.String(),
			"router":      router.String(),
			"kind":        kind,
			"nonce":       nonce,
		}).Debug("Outbound message queued")
	}
	return nil
}

func (g *Gateway) sendOutbound(msg inter.GatewayMessage) error {
	payload, err := msg.Message.MarshalBinary()
	if err != nil {
		return err
	}
	return g.sender.Send(msg.Router, msg.Sender, payload)
}
