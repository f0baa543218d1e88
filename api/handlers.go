package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract/parser"
	"go.dedis.ch/streamchain/types"
)

func writeJSON(w http.ResponseWriter, code int, msg interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(msg)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	id := requestIDFrom(r.Context())
	if code >= http.StatusInternalServerError {
		s.logger.Error().Str("request", id).Err(err).Msg("request failed")
	}
	writeJSON(w, code, types.ErrorMessage{Error: err.Error(), RequestID: id})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	tip := s.conf.Node.GetChain().Latest()
	writeJSON(w, http.StatusOK, types.InfoMessage{
		Miner:     tip.Header.Beneficiary.String(),
		Height:    tip.Header.Number,
		TipHash:   tip.Hash(),
		Contracts: s.conf.Node.GetRegistry().Names(),
	})
}

// unknown principals have a zero balance and nonce
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := account.ParseAddress(chi.URLParam(r, "principal"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	reply := types.AccountMessage{Principal: addr.String()}
	state, err := s.conf.Node.GetAccount(addr)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	default:
		reply.Balance = state.Balance
		reply.Nonce = state.Nonce
		reply.Contract = state.Code
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	chain := s.conf.Node.GetChain()
	param := chi.URLParam(r, "height")

	var b *block.Block
	var err error
	if param == "latest" {
		b = chain.Latest()
	} else {
		height, perr := strconv.ParseUint(param, 10, 32)
		if perr != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("bad height %q", param))
			return
		}
		b, err = chain.BlockAt(uint32(height))
	}
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, types.BlockMessage{Block: *b})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var msg types.SubmitTransactionMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("bad transaction: %w", err))
		return
	}
	txn := &msg.Txn
	if err := txn.Verify(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	reply := types.SubmitTransactionReplyMessage{Handle: txn.Handle()}

	if s.conf.Instant {
		if _, err := s.conf.Node.MineBlock(txn); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
		return
	}
	if err := s.conf.Node.SubmitTxn(txn); err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusAccepted, reply)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	handle := transaction.SignedTransactionHandle(chi.URLParam(r, "handle"))
	receipt, b, err := s.conf.Node.GetChain().FindReceipt(handle)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, types.ReceiptMessage{
		BlockNumber: b.Header.Number,
		BlockHash:   b.Hash(),
		Receipt:     *receipt,
	})
}

// contract errors are a failed call, bad input is a bad request
func (s *Server) handleCallRead(w http.ResponseWriter, r *http.Request) {
	contractAddr, err := account.ParseAddress(chi.URLParam(r, "contract"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if !contractAddr.IsContract() {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%s is not a contract principal", contractAddr))
		return
	}
	var msg types.ReadOnlyCallMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("bad call: %w", err))
		return
	}
	sender, err := account.ParseAddress(msg.Sender)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("bad sender: %w", err))
		return
	}
	args, err := parser.ParseValues(msg.Arguments...)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := s.conf.Node.CallReadOnly(contractAddr, sender, chi.URLParam(r, "function"), args...)
	if err != nil {
		writeJSON(w, http.StatusOK, types.ReadOnlyCallReplyMessage{Cause: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.ReadOnlyCallReplyMessage{Okay: true, Result: result.String()})
}
