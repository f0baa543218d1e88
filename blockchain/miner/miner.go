package miner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/logging"
	"go.dedis.ch/streamchain/metrics"
)

// miner state
const (
	KILL = iota
	ALIVE
)

// BlockSink receives every block the miner appends
type BlockSink interface {
	StoreBlock(ctx context.Context, b *block.Block) error
}

// miner Conf
type MinerConf struct {
	Addr              string
	AccountAddr       *account.Address // beneficiary of mined blocks
	Bootstrap         *block.BlockChain
	Registry          *contract.Registry
	BlockTransactions int               // how many transactions in a block, for the daemon
	BlockInterval     time.Duration     // the daemon seals pending txns after this, 0 disables
	Difficulty        int               // leading zero bytes of block hashes
	KVFactory         storage.KVFactory // kv factory to create Blocks
	Sinks             []BlockSink
}

// Miner executes transactions against the world state and appends blocks
type Miner struct {
	logger zerolog.Logger

	addr string

	chain    *block.BlockChain
	registry *contract.Registry

	mu          sync.Mutex // serializes block production
	txnCh       chan *transaction.SignedTransaction
	blocktxns   int               // how many transactions in a block
	interval    time.Duration     // max wait for a partial block
	difficulty  int               // how many zeros
	kvFactory   storage.KVFactory // kv factory to create Blocks
	accountAddr *account.Address
	sinks       []BlockSink

	// Service
	submitMu sync.RWMutex // held by submitters while they send, by Stop while it flips stat
	stat     int32
	done     chan struct{}
	stopped  chan struct{}
}

func NewMiner(conf MinerConf) *Miner {
	m := Miner{}
	m.addr = conf.Addr
	m.chain = conf.Bootstrap
	if m.chain == nil {
		m.chain = block.NewBlockChain()
	}
	m.registry = conf.Registry
	if m.registry == nil {
		m.registry = contract.NewRegistry()
	}
	m.txnCh = make(chan *transaction.SignedTransaction, 100)
	m.blocktxns = conf.BlockTransactions
	if m.blocktxns <= 0 {
		m.blocktxns = 1
	}
	m.interval = conf.BlockInterval
	m.difficulty = conf.Difficulty
	m.kvFactory = conf.KVFactory
	if m.kvFactory == nil {
		m.kvFactory = storage.CreateSimpleKV
	}
	m.accountAddr = conf.AccountAddr
	if m.accountAddr == nil {
		m.accountAddr = account.NewAddress([20]byte{})
	}
	m.sinks = conf.Sinks
	m.logger = logging.RootLogger.With().Str("Miner", conf.Addr).Logger()
	m.logger.Debug().Msgf("miner created:\n %s", m.chain.String())
	metrics.ChainHeight.Set(float64(m.chain.Height()))
	return &m
}

func (m *Miner) GetChain() *block.BlockChain {
	return m.chain
}

func (m *Miner) GetRegistry() *contract.Registry {
	return m.registry
}

func (m *Miner) isKilled() bool {
	return atomic.LoadInt32(&m.stat) == KILL
}

// SubmitTxn queues txn for the daemon. A nil error means the txn will be
// mined, at the latest by the last block sealed on Stop.
func (m *Miner) SubmitTxn(txn *transaction.SignedTransaction) error {
	m.submitMu.RLock()
	defer m.submitMu.RUnlock()
	if m.isKilled() {
		return fmt.Errorf("miner %s is not running", m.addr)
	}
	m.txnCh <- txn
	return nil
}

// MineBlock executes txns in order on top of the latest block and appends
// the result, whatever the outcome of each txn
func (m *Miner) MineBlock(txns ...*transaction.SignedTransaction) (*block.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	b, err := m.assembleBlock(txns)
	if err != nil {
		return nil, fmt.Errorf("assemble block failed: %w", err)
	}
	if err := m.chain.Append(b); err != nil {
		return nil, fmt.Errorf("append block failed: %w", err)
	}
	metrics.BlockDuration.Observe(time.Since(start).Seconds())
	metrics.BlocksMined.Inc()
	metrics.ChainHeight.Set(float64(b.Header.Number))
	m.logger.Info().Msgf("block %d appended with %d txns, hash=%s", b.Header.Number, len(txns), b.Hash()[:8])

	for _, sink := range m.sinks {
		if err := sink.StoreBlock(context.Background(), b); err != nil {
			m.logger.Warn().Msgf("block sink failed on block %d: %v", b.Header.Number, err)
		}
	}
	return b, nil
}

// MineEmptyBlocks appends n blocks without txns
func (m *Miner) MineEmptyBlocks(n int) (*block.Block, error) {
	var last *block.Block
	for i := 0; i < n; i++ {
		b, err := m.MineBlock()
		if err != nil {
			return nil, err
		}
		last = b
	}
	if last == nil {
		last = m.chain.Latest()
	}
	return last, nil
}

func (m *Miner) assembleBlock(txns []*transaction.SignedTransaction) (*block.Block, error) {
	worldState, parent := m.chain.LatestWorldState()
	height := uint64(parent.Header.Number) + 1

	receipts := make([]*block.Receipt, 0, len(txns))
	for _, txn := range txns {
		if err := m.verifyTxn(txn, worldState); err != nil {
			m.logger.Warn().Msgf("verify failed, err=%v", err)
			metrics.Transactions.WithLabelValues(metrics.TxnRejected).Inc()
			receipts = append(receipts, &block.Receipt{Handle: txn.Handle(), Error: err.Error()})
			continue
		}
		receipt, err := m.executeTxn(txn, worldState, height)
		if err != nil {
			return nil, err
		}
		outcome := metrics.TxnCommitted
		if !receipt.Success {
			outcome = metrics.TxnAborted
		}
		metrics.Transactions.WithLabelValues(outcome).Inc()
		receipts = append(receipts, receipt)
	}

	bb := block.NewBlockBuilder(m.kvFactory).
		SetParentHash(parent.Hash()).
		SetNumber(parent.Header.Number + 1).
		SetDifficulty(m.difficulty).
		SetBeneficiary(*m.accountAddr).
		SetState(worldState).
		SetTxns(txns).
		SetReceipts(receipts)
	return m.blockPoW(bb), nil
}
