package block

import (
	"encoding/json"
	"fmt"

	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/parser"
	"go.dedis.ch/streamchain/contract/value"
)

// Receipt is the outcome of one transaction in a block
type Receipt struct {
	Handle transaction.SignedTransactionHandle
	// Result is the response of a contract call, (ok true) for transfers and
	// deployments, nil when the txn was rejected before execution
	Result value.Value
	// Success is true when the txn's state changes were committed
	Success bool
	// Error explains a rejection or a runtime failure
	Error  string
	Events []contract.Event
}

func (r *Receipt) String() string {
	if r.Result == nil {
		return fmt.Sprintf("{%s rejected: %s}", shortHandle(r.Handle), r.Error)
	}
	return fmt.Sprintf("{%s %s}", shortHandle(r.Handle), r.Result)
}

func shortHandle(h transaction.SignedTransactionHandle) string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}

type eventJSON struct {
	Type     string `json:"type"`
	Contract string `json:"contract"`
	Data     string `json:"data"`
}

type receiptJSON struct {
	Handle  transaction.SignedTransactionHandle `json:"handle"`
	Result  string                              `json:"result,omitempty"`
	Success bool                                `json:"success"`
	Error   string                              `json:"error,omitempty"`
	Events  []eventJSON                         `json:"events,omitempty"`
}

// MarshalJSON writes values in their literal form
func (r Receipt) MarshalJSON() ([]byte, error) {
	raw := receiptJSON{Handle: r.Handle, Success: r.Success, Error: r.Error}
	if r.Result != nil {
		raw.Result = r.Result.String()
	}
	for _, e := range r.Events {
		raw.Events = append(raw.Events, eventJSON{Type: e.Type, Contract: e.Contract, Data: e.Data.String()})
	}
	return json.Marshal(raw)
}

func (r *Receipt) UnmarshalJSON(data []byte) error {
	var raw receiptJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Receipt{Handle: raw.Handle, Success: raw.Success, Error: raw.Error}
	if raw.Result != "" {
		v, err := parser.ParseValue(raw.Result)
		if err != nil {
			return fmt.Errorf("receipt %s result: %w", raw.Handle, err)
		}
		r.Result = v
	}
	for _, e := range raw.Events {
		v, err := parser.ParseValue(e.Data)
		if err != nil {
			return fmt.Errorf("receipt %s event: %w", raw.Handle, err)
		}
		r.Events = append(r.Events, contract.Event{Type: e.Type, Contract: e.Contract, Data: v})
	}
	return nil
}
