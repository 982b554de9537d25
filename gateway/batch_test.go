package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/lp-gateway/inter"
)

func TestBatch_PackSeveral(t *testing.T) {
	env := newTestEnv(t, routerMap{domain: {r0}, inter.EVM(2): {r0}}, []inter.RouterID{r0})
	other := inter.NewLocalAddress([32]byte{2})

	require.NoError(t, env.g.StartBatch(local, domain))

	require.NoError(t, env.g.Handle(local, domain, inter.NewPayload([]byte{1})))
	// belongs to another sender
	require.NoError(t, env.g.Handle(other, domain, inter.NewPayload([]byte{2})))
	// belongs to another destination
	require.NoError(t, env.g.Handle(local, inter.EVM(2), inter.NewPayload([]byte{3})))
	require.NoError(t, env.g.Handle(local, domain, inter.NewPayload([]byte{4})))

	require.Len(t, env.q.Pending(10), 2)

	require.NoError(t, env.g.EndBatch(local, domain))
	pending := env.q.Pending(10)
	require.Len(t, pending, 3)

	packed := pending[3].Message
	require.Equal(t, inter.BatchKind, packed.Kind)
	require.Len(t, packed.Submessages(), 2)
	require.Equal(t, []byte{1}, packed.Submessages()[0].Payload)
	require.Equal(t, []byte{4}, packed.Submessages()[1].Payload)
}

func TestBatch_Empty(t *testing.T) {
	env := newThreeRouterEnv(t)
	require.NoError(t, env.g.StartBatch(local, domain))
	require.NoError(t, env.g.EndBatch(local, domain))
	require.Empty(t, env.q.Pending(10))
}

func TestBatch_OverLimit(t *testing.T) {
	env := newThreeRouterEnv(t)
	require.NoError(t, env.g.StartBatch(local, domain))

	for i := 0; i < inter.MaxBatchMessages; i++ {
		require.NoError(t, env.g.Handle(local, domain, inter.NewPayload([]byte{byte(i)})))
	}
	require.ErrorIs(t, env.g.Handle(local, domain, inter.NewPayload(nil)), inter.ErrBatchLimitReached)

	require.NoError(t, env.g.EndBatch(local, domain))
	// one full batch per router
	require.Len(t, env.q.Pending(10), 3)
}

func TestBatch_StartEndDiscipline(t *testing.T) {
	env := newThreeRouterEnv(t)
	require.ErrorIs(t, env.g.EndBatch(local, domain), ErrMessagePackingNotStarted)

	require.NoError(t, env.g.StartBatch(local, domain))
	require.ErrorIs(t, env.g.StartBatch(local, domain), ErrMessagePackingAlreadyStarted)
}

func TestBatch_NestedRejected(t *testing.T) {
	env := newThreeRouterEnv(t)
	require.NoError(t, env.g.StartBatch(local, domain))
	require.ErrorIs(t, env.g.Handle(local, domain, inter.EmptyBatch()), inter.ErrNestedBatch)
}

func TestHandle_LocalDestination(t *testing.T) {
	env := newThreeRouterEnv(t)
	require.ErrorIs(t, env.g.Handle(local, inter.Local(), inter.NewPayload(nil)), ErrDomainNotSupported)
}
