package miner

import (
	"sync/atomic"
	"time"

	"go.dedis.ch/streamchain/blockchain/transaction"
)

// Start runs the mining daemon: it seals a block once blocktxns txns are
// pending, or when the block interval elapses with at least one pending
func (m *Miner) Start() {
	if !atomic.CompareAndSwapInt32(&m.stat, KILL, ALIVE) {
		return
	}
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	go m.mineTxnd(m.done, m.stopped)
}

// Stop halts the daemon; pending txns are sealed in a last block
func (m *Miner) Stop() {
	// no submitter is between its check and its send once stat is KILL
	m.submitMu.Lock()
	stopped := atomic.CompareAndSwapInt32(&m.stat, ALIVE, KILL)
	m.submitMu.Unlock()
	if !stopped {
		return
	}
	close(m.done)
	<-m.stopped
}

// daemons
func (m *Miner) mineTxnd(done, stopped chan struct{}) {
	defer close(stopped)

	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	pending := make([]*transaction.SignedTransaction, 0, m.blocktxns)
	seal := func() {
		if len(pending) == 0 {
			return
		}
		m.logger.Info().Msgf("%d pending txns, prepare to construct the block", len(pending))
		if _, err := m.MineBlock(pending...); err != nil {
			m.logger.Error().Msgf("mine block failed: %v", err)
		}
		pending = make([]*transaction.SignedTransaction, 0, m.blocktxns)
	}

	for {
		select {
		case txn := <-m.txnCh:
			pending = append(pending, txn)
			if len(pending) >= m.blocktxns {
				seal()
			}
		case <-tick:
			seal()
		case <-done:
			// drain what was submitted before Stop
			for {
				select {
				case txn := <-m.txnCh:
					pending = append(pending, txn)
				default:
					seal()
					return
				}
			}
		}
	}
}
