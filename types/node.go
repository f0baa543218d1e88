package types

import "fmt"

// -----------------------------------------------------------------------------
// InfoMessage

// NewEmpty implements types.Message.
func (c InfoMessage) NewEmpty() Message {
	return &InfoMessage{}
}

// Name implements types.Message.
func (InfoMessage) Name() string {
	return "info"
}

// String implements types.Message.
func (c InfoMessage) String() string {
	return fmt.Sprintf("{InfoMessage: miner=%s height=%d tip=%s}", c.Miner, c.Height, c.TipHash)
}

// HTML implements types.Message.
func (c InfoMessage) HTML() string {
	return c.String()
}

// -----------------------------------------------------------------------------
// AccountMessage

// NewEmpty implements types.Message.
func (c AccountMessage) NewEmpty() Message {
	return &AccountMessage{}
}

// Name implements types.Message.
func (AccountMessage) Name() string {
	return "account"
}

// String implements types.Message.
func (c AccountMessage) String() string {
	return fmt.Sprintf("{AccountMessage: %s balance=%d nonce=%d}", c.Principal, c.Balance, c.Nonce)
}

// HTML implements types.Message.
func (c AccountMessage) HTML() string {
	return c.String()
}

// -----------------------------------------------------------------------------
// ErrorMessage

// NewEmpty implements types.Message.
func (c ErrorMessage) NewEmpty() Message {
	return &ErrorMessage{}
}

// Name implements types.Message.
func (ErrorMessage) Name() string {
	return "error"
}

// String implements types.Message.
func (c ErrorMessage) String() string {
	return fmt.Sprintf("{ErrorMessage: %s (request %s)}", c.Error, c.RequestID)
}

// HTML implements types.Message.
func (c ErrorMessage) HTML() string {
	return c.String()
}
