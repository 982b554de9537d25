// Package inter defines the wire level types shared by every gateway
// component: domains and their addresses, relay router identifiers, session
// identifiers and the bridged message itself.
package inter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DomainKind distinguishes the local chain from foreign EVM chains.
type DomainKind uint8

const (
	// LocalDomain is the chain this gateway runs on. Messages never arrive
	// from it nor are sent to it through routers.
	LocalDomain DomainKind = iota
	// EVMDomain is a foreign EVM chain identified by its chain ID.
	EVMDomain
)

var ErrInvalidDomain = errors.New("invalid domain")

// Domain identifies one side of a bridge.
type Domain struct {
	Kind    DomainKind
	ChainID uint64
}

// Local returns the local domain.
func Local() Domain {
	return Domain{Kind: LocalDomain}
}

// EVM returns the foreign EVM domain with the given chain ID.
func EVM(chainID uint64) Domain {
	return Domain{Kind: EVMDomain, ChainID: chainID}
}

// IsLocal reports whether d is the chain this gateway runs on.
func (d Domain) IsLocal() bool {
	return d.Kind == LocalDomain
}

// String renders d as "local" or "evm:<chainID>".
func (d Domain) String() string {
	if d.IsLocal() {
		return "local"
	}
	return "evm:" + strconv.FormatUint(d.ChainID, 10)
}

// Bytes is the fixed 9 byte key form of d.
func (d Domain) Bytes() []byte {
	b := make([]byte, 9)
	b[0] = byte(d.Kind)
	for i := 0; i < 8; i++ {
		b[8-i] = byte(d.ChainID >> uint(8*i))
	}
	return b
}

// ParseDomain is the inverse of Domain.String.
func ParseDomain(s string) (Domain, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "local" {
		return Local(), nil
	}
	if !strings.HasPrefix(s, "evm:") {
		return Domain{}, fmt.Errorf("%w: %q", ErrInvalidDomain, s)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "evm:"), 10, 64)
	if err != nil {
		return Domain{}, fmt.Errorf("%w: %q: %v", ErrInvalidDomain, s, err)
	}
	return EVM(id), nil
}

// MarshalText implements encoding.TextMarshaler so domains can be used as
// TOML and JSON map keys.
func (d Domain) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Domain) UnmarshalText(input []byte) error {
	res, err := ParseDomain(string(input))
	if err != nil {
		return err
	}
	*d = res
	return nil
}

// DomainAddress is an account on a specific domain. EVM addresses occupy the
// first 20 bytes of Address.
type DomainAddress struct {
	Domain  Domain
	Address [32]byte
}

// NewEVMAddress builds the DomainAddress of an EVM account.
func NewEVMAddress(chainID uint64, addr common.Address) DomainAddress {
	da := DomainAddress{Domain: EVM(chainID)}
	copy(da.Address[:], addr.Bytes())
	return da
}

// NewLocalAddress builds the DomainAddress of a local account.
func NewLocalAddress(account [32]byte) DomainAddress {
	return DomainAddress{Domain: Local(), Address: account}
}

// String renders the address as "<domain>/0x<hex>".
func (a DomainAddress) String() string {
	if a.Domain.Kind == EVMDomain {
		return a.Domain.String() + "/" + common.BytesToAddress(a.Address[:20]).Hex()
	}
	return a.Domain.String() + "/" + common.Bytes2Hex(a.Address[:])
}

// ParseDomainAddress is the inverse of DomainAddress.String.
func ParseDomainAddress(s string) (DomainAddress, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return DomainAddress{}, fmt.Errorf("%w: address %q", ErrInvalidDomain, s)
	}
	domain, err := ParseDomain(parts[0])
	if err != nil {
		return DomainAddress{}, err
	}
	raw := common.FromHex(parts[1])
	if domain.Kind == EVMDomain {
		if len(raw) != common.AddressLength {
			return DomainAddress{}, fmt.Errorf("%w: evm address %q", ErrInvalidDomain, parts[1])
		}
		return NewEVMAddress(domain.ChainID, common.BytesToAddress(raw)), nil
	}
	if len(raw) != 32 {
		return DomainAddress{}, fmt.Errorf("%w: local account %q", ErrInvalidDomain, parts[1])
	}
	var acc [32]byte
	copy(acc[:], raw)
	return NewLocalAddress(acc), nil
}
