package account

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Address identifies an account. An external account is a 20-byte key
// hash; a contract account is its deployer's bytes plus the contract name.
// The text form is the principal: "0xAb..." or "0xAb....streaming_platform".
type Address struct {
	addr [20]byte
	name string
}

func NewAddress(addr [20]byte) *Address {
	a := &Address{addr: addr}
	return a
}

// NewAddressFromPublicKey derives the address from an uncompressed public key
func NewAddressFromPublicKey(pub []byte) *Address {
	var addr [20]byte
	copy(addr[:], crypto.Keccak256(pub[1:])[12:])
	return NewAddress(addr)
}

// NewContractAddress names a contract deployed by deployer
func NewContractAddress(deployer *Address, name string) *Address {
	return &Address{addr: deployer.addr, name: name}
}

// ParseAddress reverses String
func ParseAddress(principal string) (*Address, error) {
	hexPart, name := principal, ""
	if i := strings.IndexByte(principal, '.'); i >= 0 {
		hexPart, name = principal[:i], principal[i+1:]
		if name == "" {
			return nil, fmt.Errorf("principal %q has an empty contract name", principal)
		}
	}
	if !common.IsHexAddress(hexPart) {
		return nil, fmt.Errorf("principal %q is not a hex address", principal)
	}
	return &Address{addr: common.HexToAddress(hexPart), name: name}, nil
}

// CanonicalPrincipal rewrites any accepted spelling of a principal into its
// EIP-55 form
func CanonicalPrincipal(principal string) (string, error) {
	addr, err := ParseAddress(principal)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

func (a *Address) IsContract() bool {
	return a.name != ""
}

// ContractName is empty for external accounts
func (a *Address) ContractName() string {
	return a.name
}

// Deployer strips the contract name
func (a *Address) Deployer() *Address {
	return NewAddress(a.addr)
}

func (a *Address) Equal(other *Address) bool {
	return a.addr == other.addr && a.name == other.name
}

func (a *Address) String() string {
	hex := common.Address(a.addr).Hex()
	if a.name == "" {
		return hex
	}
	return hex + "." + a.name
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}
