package types

import "go.dedis.ch/streamchain/blockchain/transaction"

// SubmitTransactionMessage carries a signed txn to a node
type SubmitTransactionMessage struct {
	Txn transaction.SignedTransaction `json:"txn"`
}

// SubmitTransactionReplyMessage acknowledges a queued txn
type SubmitTransactionReplyMessage struct {
	Handle transaction.SignedTransactionHandle `json:"handle"`
}
