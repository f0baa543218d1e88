package types

import "fmt"

// -----------------------------------------------------------------------------
// ReadOnlyCallMessage

// NewEmpty implements types.Message.
func (c ReadOnlyCallMessage) NewEmpty() Message {
	return &ReadOnlyCallMessage{}
}

// Name implements types.Message.
func (ReadOnlyCallMessage) Name() string {
	return "call_read"
}

// String implements types.Message.
func (c ReadOnlyCallMessage) String() string {
	return fmt.Sprintf("{ReadOnlyCallMessage: sender=%s args=%v}", c.Sender, c.Arguments)
}

// HTML implements types.Message.
func (c ReadOnlyCallMessage) HTML() string {
	return c.String()
}

// -----------------------------------------------------------------------------
// ReadOnlyCallReplyMessage

// NewEmpty implements types.Message.
func (c ReadOnlyCallReplyMessage) NewEmpty() Message {
	return &ReadOnlyCallReplyMessage{}
}

// Name implements types.Message.
func (ReadOnlyCallReplyMessage) Name() string {
	return "call_read_reply"
}

// String implements types.Message.
func (c ReadOnlyCallReplyMessage) String() string {
	if !c.Okay {
		return fmt.Sprintf("{ReadOnlyCallReplyMessage: failed: %s}", c.Cause)
	}
	return fmt.Sprintf("{ReadOnlyCallReplyMessage: %s}", c.Result)
}

// HTML implements types.Message.
func (c ReadOnlyCallReplyMessage) HTML() string {
	return c.String()
}
