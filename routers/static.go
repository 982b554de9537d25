// Package routers provides the router adapters of a gateway node: the
// configured directory of routers per domain and the HTTP relay transport.
package routers

import (
	"fmt"

	"github.com/rony4d/lp-gateway/inter"
)

// Static is a RouterProvider backed by a fixed domain to routers table.
type Static struct {
	routers map[inter.Domain][]inter.RouterID
}

// NewStatic parses a table of domain strings ("evm:1") to router IDs. Router
// order is kept and duplicates are dropped.
func NewStatic(table map[string][]string) (*Static, error) {
	res := &Static{routers: make(map[inter.Domain][]inter.RouterID, len(table))}
	for name, ids := range table {
		domain, err := inter.ParseDomain(name)
		if err != nil {
			return nil, err
		}
		if domain.IsLocal() {
			return nil, fmt.Errorf("routers configured for the local domain")
		}
		for _, id := range ids {
			r := inter.RouterID(id)
			if err := r.Validate(); err != nil {
				return nil, fmt.Errorf("domain %s: %w", domain, err)
			}
			if !inter.ContainsRouter(res.routers[domain], r) {
				res.routers[domain] = append(res.routers[domain], r)
			}
		}
	}
	return res, nil
}

// RoutersForDomain returns a copy of the routers configured for domain.
func (s *Static) RoutersForDomain(domain inter.Domain) []inter.RouterID {
	return append([]inter.RouterID(nil), s.routers[domain]...)
}

// Domains lists the configured domains.
func (s *Static) Domains() []inter.Domain {
	res := make([]inter.Domain, 0, len(s.routers))
	for d := range s.routers {
		res = append(res, d)
	}
	return res
}
