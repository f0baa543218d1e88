// Package metrics holds the Prometheus collectors of a node. They register
// with the default registry, served by the api under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "streamchain"

// txn outcomes
const (
	TxnCommitted = "committed"
	TxnAborted   = "aborted"
	TxnRejected  = "rejected"
)

var (
	BlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_mined_total",
		Help:      "Number of blocks appended by the local miner.",
	})

	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chain_height",
		Help:      "Number of the latest block.",
	})

	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Transactions included in blocks, by outcome.",
	}, []string{"outcome"})

	ContractCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contract_calls_total",
		Help:      "Contract function invocations, by function and response.",
	}, []string{"function", "response"})

	BlockDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "block_assembly_seconds",
		Help:      "Time spent executing and sealing a block.",
		Buckets:   prometheus.DefBuckets,
	})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "HTTP API requests, by route and status code.",
	}, []string{"route", "code"})
)
