package gateway

import (
	"fmt"

	"github.com/rony4d/lp-gateway/inter"
)

// AddInstance allowlists a foreign gateway instance. Only allowlisted
// instances may deliver messages through ReceiveMessage.
func (g *Gateway) AddInstance(instance inter.DomainAddress) error {
	if instance.Domain.IsLocal() {
		return fmt.Errorf("%w: %s", ErrDomainNotSupported, instance.Domain)
	}
	err := g.store.Atomic(func() error {
		if g.store.HasInstance(instance) {
			return fmt.Errorf("%w: %s", ErrInstanceAlreadyAdded, instance)
		}
		g.store.AddInstance(instance)
		g.emit(&g.feeds.instanceAdded, InstanceAdded{Instance: instance})
		return nil
	})
	if err != nil {
		return err
	}
	g.Log.WithField("instance", instance.String()).Info("Instance added")
	return nil
}

// RemoveInstance withdraws instance from the allowlist. Messages it already
// delivered stay queued.
func (g *Gateway) RemoveInstance(instance inter.DomainAddress) error {
	err := g.store.Atomic(func() error {
		if !g.store.HasInstance(instance) {
			return fmt.Errorf("%w: %s", ErrUnknownInstance, instance)
		}
		g.store.DeleteInstance(instance)
		g.emit(&g.feeds.instanceRemoved, InstanceRemoved{Instance: instance})
		return nil
	})
	if err != nil {
		return err
	}
	g.Log.WithField("instance", instance.String()).Info("Instance removed")
	return nil
}

// Instances returns the allowlisted instances.
func (g *Gateway) Instances() (res []inter.DomainAddress) {
	g.store.View(func() {
		res = g.store.Instances()
	})
	return res
}
