package account

import (
	"fmt"

	"go.dedis.ch/streamchain/blockchain/storage"
)

type State struct {
	Nonce       uint64     // number of transactions created
	Balance     uint64     // micro-units owned
	StorageRoot storage.KV // storage state, it is a KV
	Code        string     // contract name, only for contract account. empty for external account
}

func (s *State) String() string {
	return fmt.Sprintf("{nonce=%d, balance=%d, storageRoot=%s, code=%s}",
		s.Nonce, s.Balance, s.StorageRoot.Hash(), s.Code)
}

// Copy implements storage.Copier
func (s *State) Copy() interface{} {
	return &State{
		Nonce:       s.Nonce,
		Balance:     s.Balance,
		StorageRoot: s.StorageRoot.Copy(),
		Code:        s.Code,
	}
}

func (s *State) IsContract() bool {
	return s.Code != ""
}

type StateBuilder struct {
	state *State
}

func NewStateBuilder(kvFactory storage.KVFactory) *StateBuilder {
	return &StateBuilder{state: &State{StorageRoot: kvFactory()}}
}

func (sb *StateBuilder) SetNonce(nonce uint64) *StateBuilder {
	sb.state.Nonce = nonce
	return sb
}

func (sb *StateBuilder) SetBalance(balance uint64) *StateBuilder {
	sb.state.Balance = balance
	return sb
}

func (sb *StateBuilder) SetCode(code string) *StateBuilder {
	sb.state.Code = code
	return sb
}

func (sb *StateBuilder) SetKV(key string, value interface{}) *StateBuilder {
	if err := sb.state.StorageRoot.Put(key, value); err != nil {
		panic(err)
	}
	return sb
}

func (sb *StateBuilder) Build() *State {
	return sb.state
}
