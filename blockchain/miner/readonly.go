package miner

import (
	"fmt"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

// CallReadOnly evaluates a read-only function against a copy of the latest
// world state, at the height of the latest block. Nothing is committed.
func (m *Miner) CallReadOnly(contractAddr, sender *account.Address, function string, args ...value.Value) (value.Value, error) {
	worldState, latest := m.chain.LatestWorldState()
	instance, contractState, err := m.loadContract(contractAddr.String(), worldState)
	if err != nil {
		return nil, err
	}
	if !instance.IsReadOnly(function) {
		return nil, fmt.Errorf("%w: %s", contract.ErrReadOnly, function)
	}
	ctx := &contract.Context{
		Sender:      value.Principal(sender.String()),
		Self:        value.Principal(contractAddr.String()),
		BlockHeight: uint64(latest.Header.Number),
		Storage:     contractState.StorageRoot,
		Ledger:      &worldLedger{state: worldState, kvFactory: m.kvFactory},
		ReadOnly:    true,
	}
	result, err := instance.Call(ctx, function, args)
	if err != nil {
		return nil, fmt.Errorf("read-only call %s: %w", function, err)
	}
	return result, nil
}

// GetAccount returns a copy of the latest state of addr
func (m *Miner) GetAccount(addr *account.Address) (*account.State, error) {
	worldState, _ := m.chain.LatestWorldState()
	return RetrieveState(addr.String(), worldState)
}
