// Package api serves the node over HTTP: chain info, accounts, blocks,
// transaction submission and read-only contract calls.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
	"go.dedis.ch/streamchain/logging"
)

// Node is what the api needs from a miner
type Node interface {
	GetChain() *block.BlockChain
	GetRegistry() *contract.Registry
	GetAccount(addr *account.Address) (*account.State, error)
	SubmitTxn(txn *transaction.SignedTransaction) error
	MineBlock(txns ...*transaction.SignedTransaction) (*block.Block, error)
	CallReadOnly(contractAddr, sender *account.Address, function string, args ...value.Value) (value.Value, error)
}

type ServerConf struct {
	Addr string // listen address, e.g. 127.0.0.1:20443
	Node Node
	// Instant mines every submitted txn in its own block before replying,
	// instead of queueing it for the miner daemon
	Instant bool
}

type Server struct {
	logger zerolog.Logger
	conf   ServerConf
	router chi.Router
}

func NewServer(conf ServerConf) *Server {
	s := &Server{
		conf:   conf,
		logger: logging.RootLogger.With().Str("API", conf.Addr).Logger(),
	}
	s.router = s.routes()
	return s
}

// Handler is the root handler, used by tests with httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on conf.Addr until ctx is done
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.conf.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("api stopped")
	return nil
}
