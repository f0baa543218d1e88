package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleScenario = `
accounts: [alice]
steps:
  - block:
      - {sender: wallet_1, call: '(publish-content u1 u"Song" u"desc" u100 false u"music" false)'}
      - {sender: wallet_1, call: '(publish-content u1 u"Other" u"desc" u5 false u"music" false)'}
      - {sender: wallet_2, transfer-to: alice, amount: 10}
    expect: ["(ok true)", "(err u101)", "(ok true)"]
  - block:
      - {sender: alice, call: '(purchase-content u9)'}
    expect: ["(err u102)"]
  - empty: 3
  - read: {sender: wallet_3, call: "(has-access $wallet_1 u1)"}
    expect: ["true"]
  - read: {sender: wallet_3, call: "(get-platform-owner)"}
    expect: ["$deployer"]
`

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(sampleScenario))
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, sc.Accounts)
	require.Len(t, sc.Steps, 5)
	require.Len(t, sc.Steps[0].Block, 3)
	require.Equal(t, "alice", sc.Steps[0].Block[2].TransferTo)
	require.Equal(t, 3, sc.Steps[2].Empty)
	require.Equal(t, "wallet_3", sc.Steps[3].Read.Sender)
}

func TestLoadScenarioErrors(t *testing.T) {
	bad := map[string]string{
		"unknown field":  "steps:\n  - blocks: []\n",
		"two kinds":      "steps:\n  - empty: 1\n    read: {sender: wallet_1, call: '(get-platform-fee)'}\n",
		"no kind":        "steps:\n  - expect: []\n",
		"expect count":   "steps:\n  - empty: 1\n    expect: ['u1']\n",
		"missing sender": "steps:\n  - block:\n      - {call: '(get-platform-fee)'}\n",
		"read no call":   "steps:\n  - read: {sender: wallet_1}\n",
	}
	for name, plain := range bad {
		_, err := LoadScenario(strings.NewReader(plain))
		require.Error(t, err, name)
	}
}

var errUnknown = errors.New("unknown")

func TestExpand(t *testing.T) {
	principals := map[string]string{"wallet_1": "0xAB", "contract": "0xAB.streaming_platform"}
	lookup := func(name string) (string, error) {
		p, ok := principals[name]
		if !ok {
			return "", errUnknown
		}
		return p, nil
	}

	out, err := expand("(transfer-nft u1 $wallet_1) $contract", lookup)
	require.NoError(t, err)
	require.Equal(t, "(transfer-nft u1 '0xAB) '0xAB.streaming_platform", out)

	out, err = expand(`(publish-content u1 u"by $wallet_1" "$contract \"$x\"" $wallet_1)`, lookup)
	require.NoError(t, err)
	require.Equal(t, `(publish-content u1 u"by $wallet_1" "$contract \"$x\"" '0xAB)`, out)

	_, err = expand("(f $nobody)", lookup)
	require.ErrorIs(t, err, errUnknown)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(sampleScenario))
	require.NoError(t, err)
	r, err := newRunner(sc, 0)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	failures, err := r.run(sc, out)
	require.NoError(t, err)
	require.Equal(t, 0, failures, out.String())
	require.Equal(t, uint32(6), r.sim.GetChain().Height())
	require.Contains(t, out.String(), "(err u101) ERR-CONTENT-EXISTS")
	require.Contains(t, out.String(), "wallet_2: transfer 10 to alice")
}

func TestRunScenarioCountsFailures(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(`
steps:
  - block:
      - {sender: deployer, call: '(set-platform-fee u10)'}
    expect: ["(err u100)"]
  - read: {sender: wallet_1, call: "(get-platform-fee)"}
    expect: ["u5"]
`))
	require.NoError(t, err)
	r, err := newRunner(sc, 0)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	failures, err := r.run(sc, out)
	require.NoError(t, err)
	require.Equal(t, 2, failures)
	require.Contains(t, out.String(), "FAIL: expected (err u100)")
}

func TestParseFund(t *testing.T) {
	addr, balance, err := parseFund("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4=1000")
	require.NoError(t, err)
	require.Equal(t, "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", addr.String())
	require.Equal(t, uint64(1000), balance)

	_, _, err = parseFund("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	require.Error(t, err)
	_, _, err = parseFund("nothex=1")
	require.Error(t, err)
}
