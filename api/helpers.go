package api

import (
	"sort"

	"github.com/rony4d/lp-gateway/inter"
)

func nonNil(routers []inter.RouterID) []inter.RouterID {
	if routers == nil {
		return []inter.RouterID{}
	}
	return routers
}

func sortViews(views []queuedView) {
	sort.Slice(views, func(i, j int) bool {
		return views[i].Nonce < views[j].Nonce
	})
}
