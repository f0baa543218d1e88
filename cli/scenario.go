package main

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run against a fresh chain. Accounts deployer and
// wallet_1..wallet_8 always exist; the streaming platform is deployed by
// deployer in block 1.
//
//	balance: 100000000
//	accounts: [alice]
//	steps:
//	  - block:
//	      - {sender: wallet_1, call: '(publish-content u1 u"Song" u"desc" u100 false u"music" false)'}
//	      - {sender: wallet_2, transfer-to: wallet_1, amount: 10}
//	    expect: ["(ok true)", "(ok true)"]
//	  - empty: 10
//	  - read: {sender: wallet_1, call: "(get-platform-owner)"}
//	    expect: ["$deployer"]
//
// "$name" inside a call or an expectation is replaced with the principal
// of account name, and "$contract" with the platform's principal. Text in
// string literals is never replaced.
type Scenario struct {
	Balance  uint64   `yaml:"balance"`
	Accounts []string `yaml:"accounts"`
	Steps    []Step   `yaml:"steps"`
}

// Step does exactly one of: mine Block, mine Empty blocks, evaluate Read
type Step struct {
	Block  []TxSpec `yaml:"block"`
	Empty  int      `yaml:"empty"`
	Read   *TxSpec  `yaml:"read"`
	Expect []string `yaml:"expect"`
}

// TxSpec is a contract call when Call is set, else a transfer
type TxSpec struct {
	Sender     string `yaml:"sender"`
	Call       string `yaml:"call"`
	TransferTo string `yaml:"transfer-to"`
	Amount     uint64 `yaml:"amount"`
}

// string literals match first so placeholders inside them are left alone
var placeholder = regexp.MustCompile(`u?"(?:\\.|[^"\\])*"|\$[a-zA-Z][a-zA-Z0-9_]*`)

// LoadScenario decodes and checks a scenario
func LoadScenario(r io.Reader) (*Scenario, error) {
	sc := &Scenario{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	for i, step := range sc.Steps {
		kinds := 0
		if len(step.Block) > 0 {
			kinds++
		}
		if step.Empty > 0 {
			kinds++
		}
		if step.Read != nil {
			kinds++
		}
		if kinds != 1 {
			return fmt.Errorf("step %d: exactly one of block, empty or read is needed", i)
		}
		if step.Empty < 0 {
			return fmt.Errorf("step %d: negative empty", i)
		}
		want := len(step.Block)
		if step.Read != nil {
			want = 1
			if step.Read.Call == "" {
				return fmt.Errorf("step %d: read needs a call", i)
			}
		}
		if len(step.Expect) > 0 && len(step.Expect) != want {
			return fmt.Errorf("step %d: %d expectations for %d results", i, len(step.Expect), want)
		}
		for j, tx := range step.Block {
			if tx.Sender == "" {
				return fmt.Errorf("step %d txn %d: missing sender", i, j)
			}
			if tx.Call == "" && tx.TransferTo == "" {
				return fmt.Errorf("step %d txn %d: needs a call or a transfer-to", i, j)
			}
		}
	}
	return nil
}

// expand substitutes the $name placeholders of s
func expand(s string, principal func(name string) (string, error)) (string, error) {
	var err error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if m[0] != '$' {
			return m
		}
		p, perr := principal(m[1:])
		if perr != nil {
			err = perr
			return m
		}
		return "'" + p
	})
	return out, err
}
