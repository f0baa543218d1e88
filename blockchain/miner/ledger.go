package miner

import (
	"errors"
	"fmt"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/contract/value"
)

// worldLedger implements contract.Ledger over a world state
type worldLedger struct {
	state     storage.KV
	kvFactory storage.KVFactory
}

func canonical(p value.Principal) (string, error) {
	return account.CanonicalPrincipal(string(p))
}

// get returns the state of p, creating an empty account when missing
func (l *worldLedger) get(p value.Principal) (string, *account.State, error) {
	key, err := canonical(p)
	if err != nil {
		return "", nil, err
	}
	state, err := RetrieveState(key, l.state)
	if errors.Is(err, storage.ErrKeyNotFound) {
		state = account.NewStateBuilder(l.kvFactory).Build()
		if err := l.state.Put(key, state); err != nil {
			return "", nil, err
		}
		return key, state, nil
	}
	return key, state, err
}

func (l *worldLedger) Balance(p value.Principal) (uint64, error) {
	key, err := canonical(p)
	if err != nil {
		return 0, err
	}
	state, err := RetrieveState(key, l.state)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.Balance, nil
}

func (l *worldLedger) Transfer(amount uint64, from, to value.Principal) error {
	_, fromState, err := l.get(from)
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if fromState.Balance < amount {
		return fmt.Errorf("%w: balance=%d, amount=%d", ErrBalance, fromState.Balance, amount)
	}
	_, toState, err := l.get(to)
	if err != nil {
		return fmt.Errorf("recipient: %w", err)
	}
	fromState.Balance -= amount
	toState.Balance += amount
	return nil
}
