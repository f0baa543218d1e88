package account

import (
	"fmt"

	"go.dedis.ch/streamchain/blockchain/storage"
)

// Account on the simulated chain
// https://ethereum.org/en/developers/docs/accounts/
type Account struct {
	addr  *Address
	state *State
}

func (a *Account) GetAddr() *Address {
	return a.addr
}

func (a *Account) GetState() *State {
	return a.state
}

func (a *Account) String() string {
	return fmt.Sprintf("{addr: %s, state: %s}", a.addr, a.state)
}

type AccountBuilder struct {
	addr  *Address
	state *StateBuilder
}

func NewAccountBuilder(pub []byte, kvFactory storage.KVFactory) *AccountBuilder {
	return &AccountBuilder{addr: NewAddressFromPublicKey(pub), state: NewStateBuilder(kvFactory)}
}

// NewContractBuilder prepares the account holding contract `name` of deployer
func NewContractBuilder(deployer *Address, name string, kvFactory storage.KVFactory) *AccountBuilder {
	ab := &AccountBuilder{addr: NewContractAddress(deployer, name), state: NewStateBuilder(kvFactory)}
	ab.state.SetCode(name)
	return ab
}

func (ab *AccountBuilder) WithBalance(balance uint64) *AccountBuilder {
	ab.state.SetBalance(balance)
	return ab
}

func (ab *AccountBuilder) WithKV(key string, value interface{}) *AccountBuilder {
	ab.state.SetKV(key, value)
	return ab
}

func (ab *AccountBuilder) Build() *Account {
	return &Account{ab.addr, ab.state.Build()}
}
