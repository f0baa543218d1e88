package transaction

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/contract/parser"
	"go.dedis.ch/streamchain/contract/value"
)

// Type of a transaction
type Type int

const (
	Transfer Type = iota // value transfer between accounts
	Call                 // contract call
	Deploy               // contract deployment
)

func (t Type) String() string {
	switch t {
	case Transfer:
		return "transfer"
	case Call:
		return "contract-call"
	case Deploy:
		return "deploy"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ContractCall names the function and positional arguments of a Call
type ContractCall struct {
	Function string
	Args     []value.Value
}

func (c *ContractCall) String() string {
	return parser.Call{Function: c.Function, Args: c.Args}.String()
}

type contractCallJSON struct {
	Function string   `json:"function"`
	Args     []string `json:"args"`
}

// MarshalJSON writes arguments in their literal form
func (c ContractCall) MarshalJSON() ([]byte, error) {
	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, a.String())
	}
	return json.Marshal(contractCallJSON{Function: c.Function, Args: args})
}

func (c *ContractCall) UnmarshalJSON(data []byte) error {
	var raw contractCallJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	args, err := parser.ParseValues(raw.Args...)
	if err != nil {
		return fmt.Errorf("contract call %s: %w", raw.Function, err)
	}
	c.Function = raw.Function
	c.Args = args
	return nil
}

type Transaction struct {
	Type  Type            `json:"type"`
	Nonce uint64          `json:"nonce"`
	From  account.Address `json:"from"`
	// To is the recipient of a transfer, the called contract of a call, or
	// the address to create for a deployment
	To    account.Address `json:"to"`
	Value uint64          `json:"value"`
	Call  *ContractCall   `json:"call,omitempty"`
}

// NewTransaction builds a value transfer
func NewTransaction(nonce uint64, value uint64, from, to account.Address) Transaction {
	return Transaction{Type: Transfer, Nonce: nonce, Value: value, From: from, To: to}
}

// NewContractCall builds a call of function on contract
func NewContractCall(nonce uint64, from, contract account.Address, function string, args ...value.Value) Transaction {
	return Transaction{Type: Call, Nonce: nonce, From: from, To: contract,
		Call: &ContractCall{Function: function, Args: args}}
}

// NewDeploy builds the deployment of code `name` under from's address
func NewDeploy(nonce uint64, from account.Address, name string) Transaction {
	return Transaction{Type: Deploy, Nonce: nonce, From: from, To: *account.NewContractAddress(&from, name)}
}

// Bytes is the canonical encoding hashed for signing
func (t Transaction) Bytes() []byte {
	bytes, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	return bytes
}

func (t Transaction) String() string {
	out := new(strings.Builder)
	fmt.Fprintf(out, "{%s nonce=%d from=%s to=%s", t.Type, t.Nonce, &t.From, &t.To)
	if t.Value > 0 {
		fmt.Fprintf(out, " value=%d", t.Value)
	}
	if t.Call != nil {
		fmt.Fprintf(out, " call=%s", t.Call)
	}
	out.WriteString("}")
	return out.String()
}
