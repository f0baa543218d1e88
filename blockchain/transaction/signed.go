package transaction

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"go.dedis.ch/streamchain/blockchain/account"
)

var ErrBadSignature = errors.New("signature is invalid")

// SignedTransactionHandle identifies a transaction: the hex of its digest
type SignedTransactionHandle string

type SignedTransaction struct {
	Txn       Transaction `json:"txn"`
	Digest    []byte      `json:"digest"`
	Signature []byte      `json:"signature"`
}

// NewSignedTransaction signs the keccak digest of txn
func NewSignedTransaction(txn Transaction, key *ecdsa.PrivateKey) (*SignedTransaction, error) {
	digest := crypto.Keccak256(txn.Bytes())
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("sign txn: %w", err)
	}
	return &SignedTransaction{Txn: txn, Digest: digest, Signature: sig}, nil
}

func (s *SignedTransaction) Handle() SignedTransactionHandle {
	return SignedTransactionHandle(hex.EncodeToString(s.Digest))
}

// Verify checks the digest, the signature and that the signer is Txn.From
func (s *SignedTransaction) Verify() error {
	if digest := crypto.Keccak256(s.Txn.Bytes()); hex.EncodeToString(digest) != hex.EncodeToString(s.Digest) {
		return fmt.Errorf("digest does not match txn content")
	}
	if len(s.Signature) != crypto.SignatureLength {
		return fmt.Errorf("%w: length %d", ErrBadSignature, len(s.Signature))
	}
	publicKey, err := crypto.Ecrecover(s.Digest, s.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !crypto.VerifySignature(publicKey, s.Digest, s.Signature[:len(s.Signature)-1]) {
		return ErrBadSignature
	}
	addr := account.NewAddressFromPublicKey(publicKey)
	if !addr.Equal(&s.Txn.From) {
		return fmt.Errorf("txn.from=%s not consistent with pubKey derived addr=%s", &s.Txn.From, addr)
	}
	return nil
}

func (s *SignedTransaction) String() string {
	return fmt.Sprintf("%s %s", string(s.Handle())[:8], s.Txn.String())
}
