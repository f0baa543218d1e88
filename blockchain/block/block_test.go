package block

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

func newAccount(t *testing.T, balance uint64) *account.Account {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return account.NewAccountBuilder(crypto.FromECDSAPub(&key.PublicKey), storage.CreateSimpleKV).
		WithBalance(balance).Build()
}

func nextBlock(parent *Block, state storage.KV) *Block {
	return NewBlockBuilder(storage.CreateSimpleKV).
		SetParentHash(parent.Hash()).
		SetNumber(parent.Header.Number + 1).
		SetState(state).
		Build()
}

func TestGenesisHoldsAccounts(t *testing.T) {
	alice := newAccount(t, 100)
	bob := newAccount(t, 50)
	genesis := NewGenesis(storage.CreateSimpleKV, alice, bob)

	require.Equal(t, uint32(0), genesis.Header.Number)
	require.Equal(t, DUMMY_PARENT_HASH, genesis.Header.ParentHash)
	require.Equal(t, 2, genesis.State.Len())

	raw, err := genesis.State.Get(alice.GetAddr().String())
	require.NoError(t, err)
	require.Equal(t, uint64(100), raw.(*account.State).Balance)
}

func TestHashDependsOnContent(t *testing.T) {
	genesis := NewGenesis(storage.CreateSimpleKV, newAccount(t, 100))
	again := NewBlockBuilder(storage.CreateSimpleKV).SetState(genesis.State).SetTimestamp(0).Build()
	require.Equal(t, genesis.Hash(), again.Hash())

	other := NewBlockBuilder(storage.CreateSimpleKV).SetState(genesis.State).SetTimestamp(0).SetNonce(1).Build()
	require.NotEqual(t, genesis.Hash(), other.Hash())

	receipts := []*Receipt{{Handle: "abc", Result: value.Ok(value.Bool(true)), Success: true}}
	withReceipts := NewBlockBuilder(storage.CreateSimpleKV).SetState(genesis.State).SetTimestamp(0).
		SetReceipts(receipts).Build()
	require.NotEqual(t, genesis.Hash(), withReceipts.Hash())
}

func TestChainAppend(t *testing.T) {
	genesis := NewGenesis(storage.CreateSimpleKV, newAccount(t, 100))
	bc := NewBlockChainWithGenesis(genesis)
	require.Equal(t, uint32(0), bc.Height())

	b1 := nextBlock(genesis, genesis.State.Copy())
	require.NoError(t, bc.Append(b1))
	require.Equal(t, uint32(1), bc.Height())
	require.Equal(t, b1.Hash(), bc.Latest().Hash())

	got, err := bc.BlockAt(1)
	require.NoError(t, err)
	require.Equal(t, b1, got)
	got, err = bc.BlockByHash(genesis.Hash())
	require.NoError(t, err)
	require.Equal(t, genesis, got)

	_, err = bc.BlockAt(2)
	require.ErrorIs(t, err, ErrBlockNotFound)

	// same number twice
	require.Error(t, bc.Append(nextBlock(genesis, genesis.State.Copy())))

	// skipping a number
	skip := NewBlockBuilder(storage.CreateSimpleKV).SetParentHash(b1.Hash()).SetNumber(3).Build()
	require.Error(t, bc.Append(skip))

	// wrong parent
	orphan := NewBlockBuilder(storage.CreateSimpleKV).SetParentHash(genesis.Hash()).SetNumber(2).Build()
	require.Error(t, bc.Append(orphan))
}

func TestLatestWorldStateIsCopy(t *testing.T) {
	alice := newAccount(t, 100)
	bc := NewBlockChainWithGenesis(NewGenesis(storage.CreateSimpleKV, alice))

	state, _ := bc.LatestWorldState()
	raw, err := state.Get(alice.GetAddr().String())
	require.NoError(t, err)
	raw.(*account.State).Balance = 0

	state, _ = bc.LatestWorldState()
	raw, err = state.Get(alice.GetAddr().String())
	require.NoError(t, err)
	require.Equal(t, uint64(100), raw.(*account.State).Balance)
}

func TestReceiptJSON(t *testing.T) {
	r := &Receipt{
		Handle:  "deadbeef00",
		Result:  value.Ok(value.Tuple{"average": value.UInt(4), "count": value.UInt(2)}),
		Success: true,
		Events: []contract.Event{{Type: contract.EventPrint, Contract: "x",
			Data: value.Tuple{"event": value.ASCII("content-rated")}}},
	}
	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var back Receipt
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, r.Handle, back.Handle)
	require.True(t, value.Equal(r.Result, back.Result))
	require.Len(t, back.Events, 1)
	require.True(t, value.Equal(r.Events[0].Data, back.Events[0].Data))

	rejected := Receipt{Handle: "ff", Error: "nonce mismatch"}
	raw, err = json.Marshal(rejected)
	require.NoError(t, err)
	back = Receipt{}
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Nil(t, back.Result)
	require.Equal(t, "nonce mismatch", back.Error)
}

func TestDisplay(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := account.NewAddressFromPublicKey(crypto.FromECDSAPub(&key.PublicKey))
	signed, err := transaction.NewSignedTransaction(transaction.NewTransaction(0, 5, *from, *from), key)
	require.NoError(t, err)

	genesis := DefaultGenesis()
	bc := NewBlockChainWithGenesis(genesis)
	b1 := NewBlockBuilder(storage.CreateSimpleKV).SetParentHash(genesis.Hash()).SetNumber(1).
		SetTxns([]*transaction.SignedTransaction{signed}).
		SetReceipts([]*Receipt{{Handle: signed.Handle(), Result: value.Ok(value.Bool(true)), Success: true}}).
		Build()
	require.NoError(t, bc.Append(b1))

	out := bc.Display()
	require.Contains(t, out, "block 1")
	require.Contains(t, out, "(ok true)")
	require.Contains(t, bc.String(), "idx  | 1")
}
