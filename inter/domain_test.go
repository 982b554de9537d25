package inter

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    Domain
		wantErr bool
	}{
		{"local", Local(), false},
		{"evm:1", EVM(1), false},
		{" EVM:42161 ", EVM(42161), false},
		{"evm:", Domain{}, true},
		{"evm:-1", Domain{}, true},
		{"cosmos:1", Domain{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDomain(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDomain)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Domain {
	t.Helper()
	d, err := ParseDomain(s)
	require.NoError(t, err)
	return d
}

func TestDomainBytes_Distinct(t *testing.T) {
	require.NotEqual(t, EVM(1).Bytes(), EVM(256).Bytes())
	require.Len(t, Local().Bytes(), 9)
}

func TestDomainAddress_StringRoundTrip(t *testing.T) {
	evm := NewEVMAddress(1, common.HexToAddress("0x1111111111111111111111111111111111111111"))
	got, err := ParseDomainAddress(evm.String())
	require.NoError(t, err)
	require.Equal(t, evm, got)

	local := NewLocalAddress([32]byte{1, 2, 3})
	got, err = ParseDomainAddress(local.String())
	require.NoError(t, err)
	require.Equal(t, local, got)

	_, err = ParseDomainAddress("evm:1/0x1234")
	require.ErrorIs(t, err, ErrInvalidDomain)
}

func TestGatewayMessage_RoundTrip(t *testing.T) {
	in := GatewayMessage{
		Kind:    Outbound,
		Sender:  NewLocalAddress([32]byte{9}),
		Router:  "axelar/evm:1",
		Message: NewPayload([]byte("hello")),
	}
	raw, err := in.MarshalBinary()
	require.NoError(t, err)

	var out GatewayMessage
	require.NoError(t, out.UnmarshalBinary(raw))
	require.Equal(t, in, out)

	// envelope fields are plain RLP
	var fields []rlp.RawValue
	require.NoError(t, rlp.DecodeBytes(raw, &fields))
	require.Len(t, fields, 4)
}

func TestRouterID_Validate(t *testing.T) {
	require.NoError(t, RouterID("axelar/evm:1").Validate())
	require.Error(t, RouterID("").Validate())
	require.Error(t, RouterID("a b").Validate())
	require.True(t, ContainsRouter([]RouterID{"a", "b"}, "b"))
	require.False(t, ContainsRouter(nil, "b"))
}
