package miner

import (
	"errors"
	"fmt"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
	"go.dedis.ch/streamchain/metrics"
)

// executeTxn applies a verified txn to worldState. Returned errors are
// fatal for the block; txn failures end up in the receipt.
func (m *Miner) executeTxn(txn *transaction.SignedTransaction, worldState storage.KV, height uint64) (*block.Receipt, error) {
	receipt, err := m.doExecuteTxn(txn, worldState, height)
	if err != nil {
		return nil, fmt.Errorf("execute error: %w", err)
	}
	return receipt, nil
}

func (m *Miner) doExecuteTxn(txn *transaction.SignedTransaction, worldState storage.KV, height uint64) (*block.Receipt, error) {
	receipt := &block.Receipt{Handle: txn.Handle()}

	var result value.Value
	var events []contract.Event
	var err error
	switch txn.Txn.Type {
	case transaction.Transfer:
		result, events, err = m.doValueTransfer(txn, worldState)
	case transaction.Deploy:
		result, events, err = m.doDeploy(txn, worldState, height)
	case transaction.Call:
		result, events, err = m.doContract(txn, worldState, height)
	default:
		err = fmt.Errorf("unknown txn type %s", txn.Txn.Type)
	}

	// the nonce advances whatever happened to the state changes
	if nonceErr := bumpNonce(txn, worldState); nonceErr != nil {
		return nil, nonceErr
	}

	if err != nil {
		m.logger.Info().Msgf("txn %s failed: %v", txn.Handle()[:8], err)
		receipt.Error = err.Error()
		return receipt, nil
	}
	receipt.Result = result
	if res, ok := result.(value.Response); ok && res.Ok {
		receipt.Success = true
		receipt.Events = events
	}
	return receipt, nil
}

func bumpNonce(txn *transaction.SignedTransaction, worldState storage.KV) error {
	fromState, err := RetrieveState(txn.Txn.From.String(), worldState)
	if err != nil {
		return fmt.Errorf("from address dont exist: %w", err)
	}
	fromState.Nonce += 1
	return worldState.Put(txn.Txn.From.String(), fromState)
}

func (m *Miner) doValueTransfer(txn *transaction.SignedTransaction, worldState storage.KV) (value.Value, []contract.Event, error) {
	ledger := &worldLedger{state: worldState, kvFactory: m.kvFactory}
	from := value.Principal(txn.Txn.From.String())
	to := value.Principal(txn.Txn.To.String())
	if err := ledger.Transfer(txn.Txn.Value, from, to); err != nil {
		return nil, nil, fmt.Errorf("execute value transfer error: %w", err)
	}
	event := contract.Event{Type: contract.EventTransfer, Data: value.Tuple{
		"amount":    value.UInt(txn.Txn.Value),
		"sender":    from,
		"recipient": to,
	}}
	return value.Ok(value.Bool(true)), []contract.Event{event}, nil
}

// doDeploy creates the contract account and runs Init on a scratch copy
func (m *Miner) doDeploy(txn *transaction.SignedTransaction, worldState storage.KV, height uint64) (value.Value, []contract.Event, error) {
	name := txn.Txn.To.ContractName()
	expected := account.NewContractAddress(&txn.Txn.From, name)
	if name == "" || !expected.Equal(&txn.Txn.To) {
		return nil, nil, fmt.Errorf("deploy target %s is not a contract of %s", &txn.Txn.To, &txn.Txn.From)
	}
	if _, err := worldState.Get(expected.String()); err == nil {
		return nil, nil, fmt.Errorf("contract %s already deployed", expected)
	}
	instance, err := m.registry.Lookup(name)
	if err != nil {
		return nil, nil, err
	}

	scratch := worldState.Copy()
	contractAcc := account.NewContractBuilder(&txn.Txn.From, name, m.kvFactory).Build()
	if err := scratch.Put(expected.String(), contractAcc.GetState()); err != nil {
		return nil, nil, err
	}
	ctx := m.newContext(txn, scratch, contractAcc.GetState(), height, false)
	if err := instance.Init(ctx); err != nil {
		return nil, nil, fmt.Errorf("init %s: %w", name, err)
	}
	if err := commit(scratch, worldState); err != nil {
		return nil, nil, err
	}
	m.logger.Info().Msgf("contract %s deployed", expected)
	return value.Ok(value.Bool(true)), ctx.Events(), nil
}

// doContract runs the call on a scratch copy of the world state, committed
// only on an (ok ...) response
func (m *Miner) doContract(txn *transaction.SignedTransaction, worldState storage.KV, height uint64) (value.Value, []contract.Event, error) {
	if txn.Txn.Call == nil {
		return nil, nil, fmt.Errorf("call txn without function")
	}
	scratch := worldState.Copy()
	instance, contractState, err := m.loadContract(txn.Txn.To.String(), scratch)
	if err != nil {
		return nil, nil, err
	}

	ctx := m.newContext(txn, scratch, contractState, height, false)
	result, err := instance.Call(ctx, txn.Txn.Call.Function, txn.Txn.Call.Args)
	if err != nil {
		metrics.ContractCalls.WithLabelValues(txn.Txn.Call.Function, "error").Inc()
		return nil, nil, fmt.Errorf("call %s: %w", txn.Txn.Call, err)
	}
	res, ok := result.(value.Response)
	if !ok {
		metrics.ContractCalls.WithLabelValues(txn.Txn.Call.Function, "error").Inc()
		return nil, nil, fmt.Errorf("public function %s returned %s, not a response", txn.Txn.Call.Function, result)
	}
	if !res.Ok {
		metrics.ContractCalls.WithLabelValues(txn.Txn.Call.Function, "err").Inc()
		return res, nil, nil
	}
	metrics.ContractCalls.WithLabelValues(txn.Txn.Call.Function, "ok").Inc()
	if err := commit(scratch, worldState); err != nil {
		return nil, nil, err
	}
	return res, ctx.Events(), nil
}

func (m *Miner) loadContract(address string, worldState storage.KV) (contract.SmartContract, *account.State, error) {
	state, err := RetrieveState(address, worldState)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil, fmt.Errorf("contract %s is not deployed", address)
	}
	if err != nil {
		return nil, nil, err
	}
	if !state.IsContract() {
		return nil, nil, fmt.Errorf("%s is not a contract account", address)
	}
	instance, err := m.registry.Lookup(state.Code)
	if err != nil {
		return nil, nil, err
	}
	return instance, state, nil
}

func (m *Miner) newContext(txn *transaction.SignedTransaction, worldState storage.KV,
	contractState *account.State, height uint64, readOnly bool) *contract.Context {

	return &contract.Context{
		Sender:      value.Principal(txn.Txn.From.String()),
		Self:        value.Principal(txn.Txn.To.String()),
		BlockHeight: height,
		Storage:     contractState.StorageRoot,
		Ledger:      &worldLedger{state: worldState, kvFactory: m.kvFactory},
		ReadOnly:    readOnly,
	}
}

// commit copies every account of scratch into worldState; accounts are
// never deleted, so this replaces worldState's content
func commit(scratch, worldState storage.KV) error {
	return scratch.For(func(key string, state interface{}) error {
		if err := worldState.Put(key, state); err != nil {
			return fmt.Errorf("cannot put addr=%s and state to KV: %w", key, err)
		}
		return nil
	})
}
