package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract/value"
	"go.dedis.ch/streamchain/logging"
)

var ErrNoSubmitter = errors.New("wallet has no submitter")

// Submitter accepts signed txns: a local miner or a remote node
type Submitter interface {
	SubmitTxn(txn *transaction.SignedTransaction) error
}

type WalletConf struct {
	Addr       string // name used in logs
	PrivateKey *ecdsa.PrivateKey
	Submitter  Submitter
	Nonce      uint64 // next nonce, when the account already sent txns
}

type PrivateKey struct {
	*ecdsa.PrivateKey
	bytes []byte
}

func (pri *PrivateKey) String() string {
	return hex.EncodeToString(pri.bytes)[:8] + "..."
}

type PublicKey struct {
	*ecdsa.PublicKey
	bytes []byte
}

func (pub *PublicKey) String() string {
	return hex.EncodeToString(pub.bytes)[:8] + "..."
}

// Wallet holds a key, tracks the account nonce and signs txns
type Wallet struct {
	logger zerolog.Logger

	addr    string
	account *account.Address

	publicKey  PublicKey
	privateKey PrivateKey

	mu        sync.Mutex
	nonce     uint64
	submitter Submitter
}

func NewWallet(conf WalletConf) *Wallet {
	w := Wallet{}
	w.addr = conf.Addr
	w.publicKey = PublicKey{&conf.PrivateKey.PublicKey, crypto.FromECDSAPub(&conf.PrivateKey.PublicKey)}
	w.privateKey = PrivateKey{conf.PrivateKey, crypto.FromECDSA(conf.PrivateKey)}
	w.account = account.NewAddressFromPublicKey(w.publicKey.bytes)
	w.nonce = conf.Nonce
	w.submitter = conf.Submitter

	w.logger = logging.RootLogger.With().Str("Wallet", conf.Addr).Logger()
	w.logger.Debug().Msgf("wallet created:\n pubKey=%s, priKey=%s, account=%s",
		w.publicKey.String(), w.privateKey.String(), w.account)
	return &w
}

// Address is the account of the wallet
func (w *Wallet) Address() *account.Address {
	return w.account
}

// Principal is the address as a contract value
func (w *Wallet) Principal() value.Principal {
	return value.Principal(w.account.String())
}

func (w *Wallet) PublicKeyBytes() []byte {
	return w.publicKey.bytes
}

func (w *Wallet) Nonce() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nonce
}

// SetNonce resyncs the wallet with the chain view of the account
func (w *Wallet) SetNonce(nonce uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nonce = nonce
}

func (w *Wallet) SetSubmitter(s Submitter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitter = s
}

// signNext fills in the next nonce and signs; the nonce is consumed
func (w *Wallet) signNext(build func(nonce uint64) transaction.Transaction) (*transaction.SignedTransaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	txn := build(w.nonce)
	signed, err := transaction.NewSignedTransaction(txn, w.privateKey.PrivateKey)
	if err != nil {
		return nil, err
	}
	w.nonce++
	w.logger.Debug().Msgf("signed %s", signed)
	return signed, nil
}

// Transfer signs a value transfer to dest
func (w *Wallet) Transfer(dest *account.Address, amount uint64) (*transaction.SignedTransaction, error) {
	return w.signNext(func(nonce uint64) transaction.Transaction {
		return transaction.NewTransaction(nonce, amount, *w.account, *dest)
	})
}

// Call signs a call of function on contract
func (w *Wallet) Call(contract *account.Address, function string, args ...value.Value) (*transaction.SignedTransaction, error) {
	return w.signNext(func(nonce uint64) transaction.Transaction {
		return transaction.NewContractCall(nonce, *w.account, *contract, function, args...)
	})
}

// Deploy signs the deployment of the contract code `name`
func (w *Wallet) Deploy(name string) (*transaction.SignedTransaction, error) {
	return w.signNext(func(nonce uint64) transaction.Transaction {
		return transaction.NewDeploy(nonce, *w.account, name)
	})
}

// Submit hands a signed txn to the submitter
func (w *Wallet) Submit(txn *transaction.SignedTransaction) error {
	w.mu.Lock()
	s := w.submitter
	w.mu.Unlock()
	if s == nil {
		return ErrNoSubmitter
	}
	if err := s.SubmitTxn(txn); err != nil {
		return fmt.Errorf("submit txn %s: %w", txn.Handle(), err)
	}
	return nil
}
