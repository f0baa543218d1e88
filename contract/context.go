package contract

import (
	"fmt"

	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/contract/value"
)

// Ledger moves native balances between principals
type Ledger interface {
	Balance(p value.Principal) (uint64, error)
	Transfer(amount uint64, from, to value.Principal) error
}

const (
	EventPrint    = "print"
	EventTransfer = "stx_transfer"
)

// Event is emitted by a contract call and lands in the receipt
type Event struct {
	Type     string
	Contract string
	Data     value.Value
}

func (e Event) String() string {
	return fmt.Sprintf("%s[%s] %s", e.Type, e.Contract, e.Data)
}

// Context is what a running contract sees of the chain
type Context struct {
	Sender      value.Principal // tx-sender
	Self        value.Principal // the executing contract
	BlockHeight uint64
	Storage     storage.KV
	Ledger      Ledger
	ReadOnly    bool

	events []Event
}

// Print records a print event
func (c *Context) Print(data value.Value) {
	c.events = append(c.events, Event{Type: EventPrint, Contract: string(c.Self), Data: data})
}

// Transfer moves amount through the ledger and records the transfer event
func (c *Context) Transfer(amount uint64, from, to value.Principal) error {
	if c.ReadOnly {
		return ErrReadOnly
	}
	if amount == 0 {
		return nil
	}
	if err := c.Ledger.Transfer(amount, from, to); err != nil {
		return fmt.Errorf("transfer %d from %s to %s: %w", amount, from, to, err)
	}
	c.events = append(c.events, Event{Type: EventTransfer, Contract: string(c.Self), Data: value.Tuple{
		"amount":    value.UInt(amount),
		"sender":    from,
		"recipient": to,
	}})
	return nil
}

func (c *Context) Balance(p value.Principal) (uint64, error) {
	return c.Ledger.Balance(p)
}

func (c *Context) Events() []Event {
	return c.events
}
