package blockchain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/miner"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/blockchain/wallet"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/logging"
)

// ContractCode is registered under Name and deployed by the deployer in block 1
type ContractCode struct {
	Name    string
	Factory contract.Factory
}

type SimulationConf struct {
	Addr       string
	Accounts   []string // every account gets a fresh key and Balance at genesis
	Balance    uint64
	Deployer   string // one of Accounts, required with Contracts
	Difficulty int
	Contracts  []ContractCode
	Sinks      []miner.BlockSink
}

// Simulation is an in-memory miner with named wallets, all funded at genesis
type Simulation struct {
	logger zerolog.Logger
	*miner.Miner
	names    []string
	wallets  map[string]*wallet.Wallet
	deployer string

	// DeployBlock holds the deploy receipts, nil without contracts
	DeployBlock *block.Block
}

// NewSimulation builds the genesis block and mines the contract deploys
func NewSimulation(conf SimulationConf) (*Simulation, error) {
	if conf.Addr == "" {
		conf.Addr = "simulation"
	}
	s := &Simulation{wallets: make(map[string]*wallet.Wallet), deployer: conf.Deployer}
	s.logger = logging.RootLogger.With().Str("Simulation", conf.Addr).Logger()

	genesisAccounts := make([]*account.Account, 0, len(conf.Accounts))
	for _, name := range conf.Accounts {
		if _, dup := s.wallets[name]; dup {
			return nil, fmt.Errorf("account %s declared twice", name)
		}
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		w := wallet.NewWallet(wallet.WalletConf{Addr: name, PrivateKey: key})
		s.wallets[name] = w
		s.names = append(s.names, name)
		genesisAccounts = append(genesisAccounts,
			account.NewAccountBuilder(w.PublicKeyBytes(), storage.CreateSimpleKV).WithBalance(conf.Balance).Build())
	}

	registry := contract.NewRegistry()
	for _, code := range conf.Contracts {
		registry.Register(code.Name, code.Factory)
	}
	s.Miner = miner.NewMiner(miner.MinerConf{
		Addr:       conf.Addr,
		Bootstrap:  block.NewBlockChainWithGenesis(block.NewGenesis(storage.CreateSimpleKV, genesisAccounts...)),
		Registry:   registry,
		Difficulty: conf.Difficulty,
		KVFactory:  storage.CreateSimpleKV,
		Sinks:      conf.Sinks,
	})

	if len(conf.Contracts) == 0 {
		return s, nil
	}
	deployer, err := s.Wallet(conf.Deployer)
	if err != nil {
		return nil, fmt.Errorf("deployer: %w", err)
	}
	deploys := make([]*transaction.SignedTransaction, 0, len(conf.Contracts))
	for _, code := range conf.Contracts {
		txn, err := deployer.Deploy(code.Name)
		if err != nil {
			return nil, err
		}
		deploys = append(deploys, txn)
	}
	b, err := s.MineBlock(deploys...)
	if err != nil {
		return nil, err
	}
	s.DeployBlock = b
	for i, receipt := range b.Receipts {
		if !receipt.Success {
			return nil, fmt.Errorf("deploy %s: %s", conf.Contracts[i].Name, receipt.Error)
		}
	}
	s.logger.Info().Msgf("%d contract(s) deployed by %s", len(conf.Contracts), deployer.Address())
	return s, nil
}

func (s *Simulation) Wallet(name string) (*wallet.Wallet, error) {
	w, ok := s.wallets[name]
	if !ok {
		return nil, fmt.Errorf("unknown account %s", name)
	}
	return w, nil
}

// Names returns the account names in creation order
func (s *Simulation) Names() []string {
	return append([]string(nil), s.names...)
}

// Contract is the address of a contract deployed by the deployer
func (s *Simulation) Contract(name string) (*account.Address, error) {
	w, err := s.Wallet(s.deployer)
	if err != nil {
		return nil, err
	}
	return account.NewContractAddress(w.Address(), name), nil
}

// SyncNonces realigns every wallet with the latest block; rejected txns
// leave the on-chain nonce behind the wallet
func (s *Simulation) SyncNonces() error {
	for _, name := range s.names {
		w := s.wallets[name]
		state, err := s.GetAccount(w.Address())
		if err != nil {
			return err
		}
		w.SetNonce(state.Nonce)
	}
	return nil
}
