package gateway

import (
	"fmt"
	"math"

	"github.com/rony4d/lp-gateway/inter"
)

// inboundProcessingInfo is resolved once per delivery and shared by all of
// its submessages.
type inboundProcessingInfo struct {
	sender  inter.DomainAddress
	routers []inter.RouterID
	session inter.SessionID
	// expectedProofs is the number of proofs that must back one message.
	expectedProofs uint32
}

func (g *Gateway) inboundProcessingInfo(sender inter.DomainAddress) (inboundProcessingInfo, error) {
	routers, err := g.routersForDomain(sender.Domain)
	if err != nil {
		return inboundProcessingInfo{}, err
	}
	expected, err := expectedProofCount(routers)
	if err != nil {
		return inboundProcessingInfo{}, err
	}
	return inboundProcessingInfo{
		sender:         sender,
		routers:        routers,
		session:        g.store.GetSessionID(),
		expectedProofs: expected,
	}, nil
}

// routersForDomain returns the admitted routers, in their stored order, that
// the provider lists for domain.
func (g *Gateway) routersForDomain(domain inter.Domain) ([]inter.RouterID, error) {
	if domain.IsLocal() {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotSupported, domain)
	}
	available := g.routers.RoutersForDomain(domain)

	var res []inter.RouterID
	for _, stored := range g.store.GetRouters() {
		if inter.ContainsRouter(available, stored) {
			res = append(res, stored)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotEnoughRouters, domain)
	}
	return res, nil
}

func expectedProofCount(routers []inter.RouterID) (uint32, error) {
	if len(routers) == 0 {
		return 0, ErrNotEnoughRouters
	}
	n := len(routers) - 1
	if uint64(n) > math.MaxUint32 {
		return math.MaxUint32, nil
	}
	return uint32(n), nil
}
