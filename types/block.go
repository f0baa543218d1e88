package types

import "fmt"

// -----------------------------------------------------------------------------
// BlockMessage

// NewEmpty implements types.Message.
func (c BlockMessage) NewEmpty() Message {
	return &BlockMessage{}
}

// Name implements types.Message.
func (c BlockMessage) Name() string {
	return "block"
}

// String implements types.Message.
func (c BlockMessage) String() string {
	return fmt.Sprintf("{BlockMessage: number=%d txns=%d}", c.Block.Header.Number, len(c.Block.Transactions))
}

// HTML implements types.Message.
func (c BlockMessage) HTML() string {
	return c.String()
}

// -----------------------------------------------------------------------------
// ReceiptMessage

// NewEmpty implements types.Message.
func (c ReceiptMessage) NewEmpty() Message {
	return &ReceiptMessage{}
}

// Name implements types.Message.
func (c ReceiptMessage) Name() string {
	return "receipt"
}

// String implements types.Message.
func (c ReceiptMessage) String() string {
	return fmt.Sprintf("{ReceiptMessage: block=%d %s}", c.BlockNumber, c.Receipt.String())
}

// HTML implements types.Message.
func (c ReceiptMessage) HTML() string {
	return c.String()
}
