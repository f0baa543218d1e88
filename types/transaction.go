package types

import "fmt"

// -----------------------------------------------------------------------------
// SubmitTransactionMessage

// NewEmpty implements types.Message.
func (c SubmitTransactionMessage) NewEmpty() Message {
	return &SubmitTransactionMessage{}
}

// Name implements types.Message.
func (SubmitTransactionMessage) Name() string {
	return "submit_transaction"
}

// String implements types.Message.
func (c SubmitTransactionMessage) String() string {
	return fmt.Sprintf("{SubmitTransactionMessage: %s}", c.Txn.Txn.String())
}

// HTML implements types.Message.
func (c SubmitTransactionMessage) HTML() string {
	return c.String()
}

// -----------------------------------------------------------------------------
// SubmitTransactionReplyMessage

// NewEmpty implements types.Message.
func (c SubmitTransactionReplyMessage) NewEmpty() Message {
	return &SubmitTransactionReplyMessage{}
}

// Name implements types.Message.
func (SubmitTransactionReplyMessage) Name() string {
	return "submit_transaction_reply"
}

// String implements types.Message.
func (c SubmitTransactionReplyMessage) String() string {
	return fmt.Sprintf("{SubmitTransactionReplyMessage: %s}", c.Handle)
}

// HTML implements types.Message.
func (c SubmitTransactionReplyMessage) HTML() string {
	return c.String()
}
