package gateway

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/lp-gateway/inter"
)

func TestInstances_AddRemove(t *testing.T) {
	env := newThreeRouterEnv(t)
	other := inter.NewEVMAddress(2, common.HexToAddress("0x5555555555555555555555555555555555555555"))

	added := make(chan InstanceAdded, 1)
	removed := make(chan InstanceRemoved, 1)
	sub1 := env.g.SubscribeInstanceAdded(added)
	defer sub1.Unsubscribe()
	sub2 := env.g.SubscribeInstanceRemoved(removed)
	defer sub2.Unsubscribe()

	require.NoError(t, env.g.AddInstance(other))
	require.Equal(t, InstanceAdded{Instance: other}, <-added)
	require.Equal(t, []inter.DomainAddress{sender, other}, env.g.Instances())

	require.ErrorIs(t, env.g.AddInstance(other), ErrInstanceAlreadyAdded)
	require.ErrorIs(t, env.g.AddInstance(local), ErrDomainNotSupported)
	require.Empty(t, added)

	require.NoError(t, env.g.RemoveInstance(other))
	require.Equal(t, InstanceRemoved{Instance: other}, <-removed)
	require.ErrorIs(t, env.g.RemoveInstance(other), ErrUnknownInstance)
	require.Empty(t, removed)
	require.Equal(t, []inter.DomainAddress{sender}, env.g.Instances())
}

func TestInstances_RemovedSenderIsRejected(t *testing.T) {
	env := newThreeRouterEnv(t)
	raw := inter.NewPayload([]byte("x")).Serialize()

	queued, err := env.g.ReceiveMessage(sender, r0, raw)
	require.NoError(t, err)

	require.NoError(t, env.g.RemoveInstance(sender))
	_, err = env.g.ReceiveMessage(sender, r1, inter.NewPayload([]byte("x")).ProofMessage().Serialize())
	require.ErrorIs(t, err, ErrUnknownInstance)

	// accepted deliveries are still processed
	require.NoError(t, env.q.ProcessMessage(queued))
	require.Len(t, env.g.PendingEntries(inter.NewPayload([]byte("x")).Fingerprint()), 1)
}
