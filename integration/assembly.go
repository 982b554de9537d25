package integration

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/gateway"
	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/queue"
	"github.com/rony4d/lp-gateway/routers"
	"github.com/rony4d/lp-gateway/store"
)

// RoutersConfig describes the routers a node knows about.
type RoutersConfig struct {
	// Domains maps a domain ("evm:1") to its routers in priority order.
	Domains map[string][]string
	// Admitted is the router list applied on startup when it differs from
	// the stored one. Nil keeps the stored list.
	Admitted []string
	// Endpoints maps a router to its relay URL.
	Endpoints map[string]string
	// Tokens maps a router to the bearer token it presents, both on relay
	// deliveries it makes to this node and on relays this node sends it.
	Tokens      map[string]string
	SendTimeout time.Duration
}

// Config of a gateway node.
type Config struct {
	Gateway gateway.Config
	Store   store.Config
	Queue   queue.Config
	Routers RoutersConfig
	// Instances are foreign gateway instances allowlisted on startup, in
	// "evm:<chainID>/0x<address>" form. Instances added at runtime are kept.
	Instances     []string
	EnableMetrics bool
}

func DefaultConfig() Config {
	return Config{
		Gateway: gateway.DefaultConfig(),
		Store:   store.DefaultConfig(),
		Queue:   queue.DefaultConfig(),
		Routers: RoutersConfig{
			Domains:     map[string][]string{},
			Endpoints:   map[string]string{},
			Tokens:      map[string]string{},
			SendTimeout: 10 * time.Second,
		},
	}
}

// Node is an assembled gateway with its store and queue.
type Node struct {
	Store   *store.Store
	Queue   *queue.Queue
	Gateway *gateway.Gateway
	Routers *routers.Static

	Log *logrus.Entry
}

// NewNode opens the store under datadir and wires a gateway whose inbound
// releases go to handler and whose outbound messages go through the HTTP
// relay endpoints.
func NewNode(datadir string, cfg Config, handler gateway.InboundMessageHandler) (*Node, error) {
	provider, err := routers.NewStatic(cfg.Routers.Domains)
	if err != nil {
		return nil, fmt.Errorf("routers config: %w", err)
	}
	instances, err := parseInstances(cfg.Instances)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(datadir, cfg.Store)
	if err != nil {
		return nil, err
	}

	sender := routers.NewHTTPSender(cfg.Routers.Endpoints, cfg.Routers.Tokens, cfg.Routers.SendTimeout)
	q := queue.New(cfg.Queue, s)
	gw := gateway.New(cfg.Gateway, s, provider, handler, sender, q)
	q.SetProcessor(gw)

	n := &Node{
		Store:   s,
		Queue:   q,
		Gateway: gw,
		Routers: provider,
		Log:     logger.New("node"),
	}
	if err := n.admit(cfg.Routers.Admitted); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := n.allow(instances); err != nil {
		_ = s.Close()
		return nil, err
	}
	return n, nil
}

func parseInstances(raw []string) ([]inter.DomainAddress, error) {
	res := make([]inter.DomainAddress, len(raw))
	for i, r := range raw {
		instance, err := inter.ParseDomainAddress(r)
		if err != nil {
			return nil, fmt.Errorf("instances config: %w", err)
		}
		res[i] = instance
	}
	return res, nil
}

// allow allowlists the configured instances that are not allowlisted yet.
func (n *Node) allow(instances []inter.DomainAddress) error {
	for _, instance := range instances {
		err := n.Gateway.AddInstance(instance)
		if errors.Is(err, gateway.ErrInstanceAlreadyAdded) {
			continue
		}
		if err != nil {
			return fmt.Errorf("allow instance: %w", err)
		}
	}
	return nil
}

// admit applies the configured router list. An unchanged list keeps the
// session, so pending votes survive a restart.
func (n *Node) admit(admitted []string) error {
	if admitted == nil {
		return nil
	}
	list := make([]inter.RouterID, len(admitted))
	for i, r := range admitted {
		list[i] = inter.RouterID(r)
	}
	current := n.Gateway.Routers()
	if reflect.DeepEqual(current, list) || len(current)+len(list) == 0 {
		return nil
	}
	session, err := n.Gateway.SetRouters(list)
	if err != nil {
		return fmt.Errorf("admit routers: %w", err)
	}
	n.Log.WithField("session", session).Info("Admitted routers updated")
	return nil
}

// Run services the queue until ctx is done.
func (n *Node) Run(ctx context.Context) {
	n.Log.Info("Queue service started")
	n.Queue.Run(ctx)
	n.Log.Info("Queue service stopped")
}

// Close releases the store.
func (n *Node) Close() error {
	return n.Store.Close()
}
