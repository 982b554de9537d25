package gateway

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/inter"
)

// MaxRouters bounds the admitted router list.
const MaxRouters = 8

// SetRouters replaces the admitted routers and starts a new session, which
// invalidates every vote cast so far. The order of routers decides which one
// carries full messages for a domain. An empty list disables all domains.
func (g *Gateway) SetRouters(routers []inter.RouterID) (inter.SessionID, error) {
	if len(routers) > MaxRouters {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooManyRouters, len(routers), MaxRouters)
	}
	for i, r := range routers {
		if err := r.Validate(); err != nil {
			return 0, err
		}
		if inter.ContainsRouter(routers[:i], r) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateRouter, r)
		}
	}

	var session inter.SessionID
	err := g.store.Atomic(func() error {
		current := g.store.GetSessionID()
		if current == math.MaxUint64 {
			return ErrArithmeticOverflow
		}
		session = current + 1

		g.store.SetRouters(routers)
		g.store.SetSessionID(session)

		list := append([]inter.RouterID(nil), routers...)
		g.emit(&g.feeds.routersSet, RoutersSet{Routers: list, Session: session})
		return nil
	})
	if err != nil {
		return 0, err
	}
	g.Log.WithFields(logrus.Fields{
		"routers": routers,
		"session": session,
	}).Info("Routers set")
	return session, nil
}

// SessionID returns the current session.
func (g *Gateway) SessionID() (id inter.SessionID) {
	g.store.View(func() {
		id = g.store.GetSessionID()
	})
	return id
}

// Routers returns the admitted routers in their stored order.
func (g *Gateway) Routers() (routers []inter.RouterID) {
	g.store.View(func() {
		routers = g.store.GetRouters()
	})
	return routers
}

// RoutersForDomain returns the routers used for domain right now.
func (g *Gateway) RoutersForDomain(domain inter.Domain) (routers []inter.RouterID, err error) {
	g.store.View(func() {
		routers, err = g.routersForDomain(domain)
	})
	return routers, err
}
