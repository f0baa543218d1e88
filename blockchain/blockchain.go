package blockchain

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/miner"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/wallet"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/logging"
)

type FullNodeConf struct {
	Addr       string
	PrivateKey *ecdsa.PrivateKey
	Bootstrap  *block.BlockChain
	KVFactory  storage.KVFactory
	Registry   *contract.Registry

	BlockTransactions int // how many transactions in a block
	BlockInterval     time.Duration
	Difficulty        int
	Sinks             []miner.BlockSink
}

// FullNode is a Wallet as well as a Miner; the wallet submits to the local miner
type FullNode struct {
	logger zerolog.Logger
	*wallet.Wallet
	*miner.Miner
}

// NewFullNode creates a miner whose beneficiary is the wallet's account
func NewFullNode(conf *FullNodeConf) *FullNode {
	w := wallet.NewWallet(wallet.WalletConf{Addr: conf.Addr, PrivateKey: conf.PrivateKey})

	m := miner.NewMiner(miner.MinerConf{
		Addr:              conf.Addr,
		AccountAddr:       w.Address(),
		Bootstrap:         conf.Bootstrap,
		Registry:          conf.Registry,
		BlockTransactions: conf.BlockTransactions,
		BlockInterval:     conf.BlockInterval,
		Difficulty:        conf.Difficulty,
		KVFactory:         conf.KVFactory,
		Sinks:             conf.Sinks,
	})
	w.SetSubmitter(m)

	f := &FullNode{Wallet: w, Miner: m}
	f.logger = logging.RootLogger.With().Str("FullNode", conf.Addr).Logger()
	f.logger.Info().Msgf("created, account=%s", w.Address())
	return f
}

func (f *FullNode) Start() {
	f.logger.Info().Msg("full node starting...")
	f.SyncNonce()
	f.Miner.Start()
}

func (f *FullNode) Stop() {
	f.logger.Info().Msg("full node stopping...")
	f.Miner.Stop()
}

// SyncNonce aligns the wallet nonce with the latest block
func (f *FullNode) SyncNonce() {
	state, err := f.GetAccount(f.Address())
	if err != nil {
		f.logger.Debug().Msgf("account not on chain yet: %v", err)
		return
	}
	f.SetNonce(state.Nonce)
}

func (f *FullNode) String() string {
	return fmt.Sprintf("FullNode{%s, height=%d}", f.Address(), f.GetChain().Height())
}
