package miner

import (
	"errors"
	"fmt"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
)

var (
	ErrNonce   = errors.New("nonce mismatch")
	ErrBalance = errors.New("insufficient balance")
	ErrSender  = errors.New("unknown sender")
)

// Q: what if a transaction is stale? A: nonce field will handle it
func (m *Miner) verifyTxn(txn *transaction.SignedTransaction, worldState storage.KV) error {
	err := m.doVerifyTxn(txn, worldState)
	if err != nil {
		return fmt.Errorf("verify error: %w", err)
	}
	return nil
}

func (m *Miner) doVerifyTxn(txn *transaction.SignedTransaction, worldState storage.KV) error {
	// 1. verify signature and sender
	if err := txn.Verify(); err != nil {
		return err
	}

	// 2. verify nonce
	// fetch account state from world state
	accountState, err := RetrieveState(txn.Txn.From.String(), worldState)
	if err != nil {
		return fmt.Errorf("%w: addr=%s: %v", ErrSender, &txn.Txn.From, err)
	}
	if txn.Txn.Nonce != accountState.Nonce {
		return fmt.Errorf("%w: txn.nonce=%d, account nonce=%d", ErrNonce, txn.Txn.Nonce, accountState.Nonce)
	}

	// 3. check if account's balance is enough to cover the transaction
	if accountState.Balance < txn.Txn.Value {
		return fmt.Errorf("%w: account balance=%d, cannot cover value=%d transfer",
			ErrBalance, accountState.Balance, txn.Txn.Value)
	}

	if txn.Txn.Type != transaction.Transfer && txn.Txn.Value != 0 {
		return fmt.Errorf("%s txn cannot carry value=%d", txn.Txn.Type, txn.Txn.Value)
	}
	return nil
}

// RetrieveState fetches the account state stored under address
func RetrieveState(address string, worldState storage.KV) (*account.State, error) {
	value, err := worldState.Get(address)
	if err != nil {
		return nil, fmt.Errorf("address dont exist: %w", err)
	}
	state, ok := value.(*account.State)
	if !ok {
		return nil, fmt.Errorf("corrupted world state, value=%v cannot be casted to account.State", value)
	}
	return state, nil
}
