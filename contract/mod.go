package contract

import (
	"errors"

	"go.dedis.ch/streamchain/contract/value"
)

var (
	// ErrUnknownFunction is returned for calls to a function the contract does not define
	ErrUnknownFunction = errors.New("unknown function")
	// ErrBadArguments is returned when arity or argument types do not match
	ErrBadArguments = errors.New("bad arguments")
	// ErrReadOnly is returned when a read-only call reaches a state-changing function
	ErrReadOnly = errors.New("function is not read-only")
)

// SmartContract is a contract implemented natively and registered with the
// miner. Public functions return a value.Response; a (err ...) response
// aborts the transaction's state changes.
type SmartContract interface {
	Name() string

	// Init runs once on deployment, with Sender set to the deployer
	Init(ctx *Context) error

	// Call runs function with positional args
	Call(ctx *Context, function string, args []value.Value) (value.Value, error)

	IsReadOnly(function string) bool

	Functions() []string
}
