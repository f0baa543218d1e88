package types

import "go.dedis.ch/streamchain/blockchain/block"

// BlockMessage carries a mined block, without its world state
type BlockMessage struct {
	Block block.Block `json:"block"`
}

// ReceiptMessage is the outcome of a mined txn
type ReceiptMessage struct {
	BlockNumber uint32        `json:"block_number"`
	BlockHash   string        `json:"block_hash"`
	Receipt     block.Receipt `json:"receipt"`
}
