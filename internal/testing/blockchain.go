package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/blockchain"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/miner"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/blockchain/wallet"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

// Deployer is the account deploying the contracts of a Chain
const Deployer = "deployer"

// DefaultBalance is the genesis balance of every account
const DefaultBalance uint64 = 100_000_000

type configTemplate struct {
	accounts   []string
	balance    uint64
	difficulty int
	contracts  []blockchain.ContractCode
	sinks      []miner.BlockSink
}

func newConfigTemplate() configTemplate {
	accounts := []string{Deployer}
	for i := 1; i <= 8; i++ {
		accounts = append(accounts, fmt.Sprintf("wallet_%d", i))
	}
	return configTemplate{accounts: accounts, balance: DefaultBalance}
}

type Option func(*configTemplate)

// WithBalance sets the genesis balance of every account
func WithBalance(balance uint64) Option {
	return func(ct *configTemplate) {
		ct.balance = balance
	}
}

// WithAccounts adds named accounts next to deployer and wallet_1..wallet_8
func WithAccounts(names ...string) Option {
	return func(ct *configTemplate) {
		ct.accounts = append(ct.accounts, names...)
	}
}

func WithDifficulty(difficulty int) Option {
	return func(ct *configTemplate) {
		ct.difficulty = difficulty
	}
}

// WithContract registers the code and deploys it from Deployer in block 1
func WithContract(name string, factory contract.Factory) Option {
	return func(ct *configTemplate) {
		ct.contracts = append(ct.contracts, blockchain.ContractCode{Name: name, Factory: factory})
	}
}

func WithSinks(sinks ...miner.BlockSink) Option {
	return func(ct *configTemplate) {
		ct.sinks = append(ct.sinks, sinks...)
	}
}

// Account is a named key of the harness
type Account struct {
	Name string
	*wallet.Wallet
}

// Chain is a single-miner chain with named accounts
type Chain struct {
	t        *testing.T
	sim      *blockchain.Simulation
	accounts map[string]*Account
}

// NewChain builds the genesis block and deploys the configured contracts
func NewChain(t *testing.T, opts ...Option) *Chain {
	template := newConfigTemplate()
	for _, opt := range opts {
		opt(&template)
	}

	sim, err := blockchain.NewSimulation(blockchain.SimulationConf{
		Addr:       "harness",
		Accounts:   template.accounts,
		Balance:    template.balance,
		Deployer:   Deployer,
		Difficulty: template.difficulty,
		Contracts:  template.contracts,
		Sinks:      template.sinks,
	})
	require.NoError(t, err)

	c := &Chain{t: t, sim: sim, accounts: make(map[string]*Account)}
	for _, name := range sim.Names() {
		w, err := sim.Wallet(name)
		require.NoError(t, err)
		c.accounts[name] = &Account{Name: name, Wallet: w}
	}
	return c
}

// Tx is an unsigned txn description, signed by the sender's wallet when mined
type Tx struct {
	Sender   string
	Type     transaction.Type
	Contract string // contract name, deployed by Deployer
	Function string
	Args     []value.Value
	Amount   uint64
	To       string
}

// ContractCall calls function of contract, as sender
func ContractCall(contractName, function string, args []value.Value, sender string) Tx {
	return Tx{Sender: sender, Type: transaction.Call, Contract: contractName, Function: function, Args: args}
}

// TransferSTX sends amount from sender to recipient
func TransferSTX(amount uint64, recipient, sender string) Tx {
	return Tx{Sender: sender, Type: transaction.Transfer, Amount: amount, To: recipient}
}

// DeployContract deploys the registered code under sender's address
func DeployContract(name, sender string) Tx {
	return Tx{Sender: sender, Type: transaction.Deploy, Contract: name}
}

func (c *Chain) Account(name string) *Account {
	acc, ok := c.accounts[name]
	require.True(c.t, ok, "unknown account %s", name)
	return acc
}

// Accounts returns the accounts in creation order
func (c *Chain) Accounts() []*Account {
	names := c.sim.Names()
	ret := make([]*Account, 0, len(names))
	for _, name := range names {
		ret = append(ret, c.accounts[name])
	}
	return ret
}

// Principal resolves an account name, or a "deployer.contract" style
// contract name, to its principal
func (c *Chain) Principal(name string) value.Principal {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return value.Principal(c.contractAddress(name[:i], name[i+1:]).String())
	}
	return c.Account(name).Principal()
}

// Contract is the address of a contract deployed by Deployer
func (c *Chain) Contract(name string) *account.Address {
	return c.contractAddress(Deployer, name)
}

func (c *Chain) contractAddress(deployer, name string) *account.Address {
	return account.NewContractAddress(c.Account(deployer).Address(), name)
}

func (c *Chain) Miner() *miner.Miner {
	return c.sim.Miner
}

// Height is the number of the latest block
func (c *Chain) Height() uint64 {
	return uint64(c.sim.GetChain().Height())
}

func (c *Chain) sign(tx Tx) *transaction.SignedTransaction {
	w := c.Account(tx.Sender)
	var signed *transaction.SignedTransaction
	var err error
	switch tx.Type {
	case transaction.Call:
		signed, err = w.Call(c.Contract(tx.Contract), tx.Function, tx.Args...)
	case transaction.Deploy:
		signed, err = w.Deploy(tx.Contract)
	default:
		signed, err = w.Transfer(c.Account(tx.To).Address(), tx.Amount)
	}
	require.NoError(c.t, err)
	return signed
}

// MineBlock mines one block holding txs in order, with one receipt each
func (c *Chain) MineBlock(txs ...Tx) *block.Block {
	signed := make([]*transaction.SignedTransaction, 0, len(txs))
	for _, tx := range txs {
		signed = append(signed, c.sign(tx))
	}
	b, err := c.sim.MineBlock(signed...)
	require.NoError(c.t, err)
	require.Len(c.t, b.Receipts, len(txs))
	require.NoError(c.t, c.sim.SyncNonces())
	return b
}

// MineEmptyBlocks advances the height by n
func (c *Chain) MineEmptyBlocks(n int) *block.Block {
	b, err := c.sim.MineEmptyBlocks(n)
	require.NoError(c.t, err)
	return b
}

// CallReadOnly evaluates a read-only function at the latest block
func (c *Chain) CallReadOnly(contractName, function string, args []value.Value, sender string) value.Value {
	result, err := c.sim.CallReadOnly(c.Contract(contractName), c.Account(sender).Address(), function, args...)
	require.NoError(c.t, err)
	return result
}

// Balance of the named account, or of a "deployer.contract" principal
func (c *Chain) Balance(name string) uint64 {
	addr, err := account.ParseAddress(string(c.Principal(name)))
	require.NoError(c.t, err)
	state, err := c.sim.GetAccount(addr)
	require.NoError(c.t, err)
	return state.Balance
}
