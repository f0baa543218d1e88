package block

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
)

// DUMMY_PARENT_HASH is the parent of the genesis block
const DUMMY_PARENT_HASH = "0000000000000000000000000000000000000000000000000000000000000000"

type BlockHeader struct {
	ParentHash       string          `json:"parentHash"` // hex form
	Nonce            uint32          `json:"nonce"`
	Timestamp        int64           `json:"timestamp"` // unix millseconds
	Beneficiary      account.Address `json:"beneficiary"`
	Difficulty       int             `json:"difficulty"` // leading zero bytes of the hash
	Number           uint32          `json:"number"`
	StateHash        string          `json:"stateHash"`
	TransactionsHash string          `json:"transactionsHash"`
	ReceiptsHash     string          `json:"receiptsHash"`
}

type Block struct {
	Header       BlockHeader                      `json:"header"`
	State        storage.KV                       `json:"-"` // world state: address -> *account.State
	Transactions []*transaction.SignedTransaction `json:"transactions"`
	Receipts     []*Receipt                       `json:"receipts"`
}

// HashBytes is the sha256 of the header, which commits to the state,
// transactions and receipts through their hashes
func (b *Block) HashBytes() []byte {
	raw, err := json.Marshal(b.Header)
	if err != nil {
		panic(err)
	}
	h := sha256.Sum256(raw)
	return h[:]
}

// Hash returns the hex-encoded sha256 bytes
func (b *Block) Hash() string {
	return hex.EncodeToString(b.HashBytes())
}

// Receipt finds the receipt of the given txn
func (b *Block) Receipt(handle transaction.SignedTransactionHandle) (*Receipt, bool) {
	for _, r := range b.Receipts {
		if r.Handle == handle {
			return r, true
		}
	}
	return nil, false
}

func (b *Block) String() string {
	max := func(s ...string) int {
		max := 0
		for _, se := range s {
			if len([]rune(se)) > max {
				max = len([]rune(se))
			}
		}
		return max
	}

	row1 := fmt.Sprintf("prev | %s", b.Header.ParentHash)
	row2 := fmt.Sprintf("idx  | %d", b.Header.Number)
	row3 := fmt.Sprintf("time | %s", time.UnixMilli(b.Header.Timestamp).UTC().Format(time.RFC3339))
	row4 := fmt.Sprintf("txns | %d", len(b.Transactions))
	row5 := fmt.Sprintf("hash | %s", b.Hash())
	rows := []string{row1, row2, row3, row4, row5}
	maxLen := max(rows...)

	ret := ""
	ret += fmt.Sprintf("\n┌%s┐\n", strings.Repeat("─", maxLen+2))
	for _, row := range rows {
		ret += fmt.Sprintf("| %s%s |\n", row, strings.Repeat(" ", maxLen-len([]rune(row))))
	}
	ret += fmt.Sprintf("└%s┘\n", strings.Repeat("─", maxLen+2))
	return ret
}

type BlockBuilder struct {
	kvFactory    storage.KVFactory
	header       BlockHeader
	state        storage.KV
	transactions []*transaction.SignedTransaction
	receipts     []*Receipt
}

func NewBlockBuilder(kvFactory storage.KVFactory) *BlockBuilder {
	return &BlockBuilder{
		kvFactory: kvFactory,
		header:    BlockHeader{ParentHash: DUMMY_PARENT_HASH, Timestamp: time.Now().UnixMilli()},
		state:     kvFactory(),
	}
}

func (bb *BlockBuilder) SetParentHash(parent string) *BlockBuilder {
	bb.header.ParentHash = parent
	return bb
}

func (bb *BlockBuilder) SetNonce(nonce uint32) *BlockBuilder {
	bb.header.Nonce = nonce
	return bb
}

func (bb *BlockBuilder) SetNumber(number uint32) *BlockBuilder {
	bb.header.Number = number
	return bb
}

func (bb *BlockBuilder) SetTimestamp(ms int64) *BlockBuilder {
	bb.header.Timestamp = ms
	return bb
}

func (bb *BlockBuilder) SetDifficulty(difficulty int) *BlockBuilder {
	bb.header.Difficulty = difficulty
	return bb
}

func (bb *BlockBuilder) GetDifficulty() int {
	return bb.header.Difficulty
}

func (bb *BlockBuilder) SetBeneficiary(addr account.Address) *BlockBuilder {
	bb.header.Beneficiary = addr
	return bb
}

func (bb *BlockBuilder) SetState(state storage.KV) *BlockBuilder {
	bb.state = state
	return bb
}

// SetAddrState puts one account into the world state
func (bb *BlockBuilder) SetAddrState(addr *account.Address, state *account.State) *BlockBuilder {
	if err := bb.state.Put(addr.String(), state); err != nil {
		panic(err)
	}
	return bb
}

func (bb *BlockBuilder) SetTxns(txns []*transaction.SignedTransaction) *BlockBuilder {
	bb.transactions = txns
	return bb
}

func (bb *BlockBuilder) SetReceipts(receipts []*Receipt) *BlockBuilder {
	bb.receipts = receipts
	return bb
}

// Build fills in the content hashes; it can be called repeatedly while
// searching for a nonce
func (bb *BlockBuilder) Build() *Block {
	header := bb.header
	header.StateHash = bb.state.Hash()
	header.TransactionsHash = hashJSON(bb.transactions)
	header.ReceiptsHash = hashJSON(bb.receipts)
	return &Block{Header: header, State: bb.state, Transactions: bb.transactions, Receipts: bb.receipts}
}

func hashJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	h := sha256.Sum256(raw)
	return hex.EncodeToString(h[:])
}

// DefaultGenesis is an empty genesis block
func DefaultGenesis() *Block {
	return NewBlockBuilder(storage.CreateSimpleKV).
		SetParentHash(DUMMY_PARENT_HASH).
		SetTimestamp(0).
		Build()
}

// NewGenesis builds block 0 holding the given accounts
func NewGenesis(kvFactory storage.KVFactory, accounts ...*account.Account) *Block {
	bb := NewBlockBuilder(kvFactory).
		SetParentHash(DUMMY_PARENT_HASH).
		SetNonce(0).
		SetNumber(0).
		SetTimestamp(0)
	for _, acc := range accounts {
		bb.SetAddrState(acc.GetAddr(), acc.GetState())
	}
	return bb.Build()
}
