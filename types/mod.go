package types

// Message is a body exchanged with the node API
type Message interface {
	// NewEmpty returns an empty message of the same type
	NewEmpty() Message

	// Name returns the name of the message, used in logs and metrics
	Name() string

	String() string

	// HTML returns an HTML representation of the message
	HTML() string
}
