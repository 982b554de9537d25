package inter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// GatewayMessageKind tells the queue processor which path a message takes.
type GatewayMessageKind uint8

const (
	// Inbound messages were received from a router and await quorum processing.
	Inbound GatewayMessageKind = iota + 1
	// Outbound messages await transport on a specific router.
	Outbound
)

func (k GatewayMessageKind) String() string {
	switch k {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// GatewayMessage is the envelope stored in the gateway message queue.
// For inbound messages Sender is the foreign origin and Router the router the
// message arrived on; for outbound messages Sender is the local sending
// account and Router the router to send through.
type GatewayMessage struct {
	Kind    GatewayMessageKind
	Sender  DomainAddress
	Router  RouterID
	Message Message
}

type gatewayMessageRLP struct {
	Kind    uint8
	Sender  DomainAddress
	Router  string
	Message []byte
}

// MarshalBinary encodes the envelope with RLP, the message itself in its
// canonical wire form.
func (g GatewayMessage) MarshalBinary() ([]byte, error) {
	msg, err := g.Message.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(&gatewayMessageRLP{
		Kind:    uint8(g.Kind),
		Sender:  g.Sender,
		Router:  string(g.Router),
		Message: msg,
	})
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (g *GatewayMessage) UnmarshalBinary(raw []byte) error {
	var dec gatewayMessageRLP
	if err := rlp.DecodeBytes(raw, &dec); err != nil {
		return err
	}
	msg, err := DeserializeMessage(dec.Message)
	if err != nil {
		return err
	}
	*g = GatewayMessage{
		Kind:    GatewayMessageKind(dec.Kind),
		Sender:  dec.Sender,
		Router:  RouterID(dec.Router),
		Message: msg,
	}
	return nil
}
