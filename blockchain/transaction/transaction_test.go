package transaction

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/contract/value"
)

func newKeyAddr(t *testing.T) (*account.Address, func() *SignedTransaction) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := account.NewAddressFromPublicKey(crypto.FromECDSAPub(&key.PublicKey))
	return addr, func() *SignedTransaction {
		contract := account.NewContractAddress(addr, "streaming_platform")
		txn := NewContractCall(0, *addr, *contract, "set-platform-fee", value.UInt(10))
		signed, err := NewSignedTransaction(txn, key)
		require.NoError(t, err)
		return signed
	}
}

func TestSignAndVerify(t *testing.T) {
	_, sign := newKeyAddr(t)
	signed := sign()
	require.NoError(t, signed.Verify())
	require.Len(t, string(signed.Handle()), 64)
}

func TestVerifyRejectsTampering(t *testing.T) {
	_, sign := newKeyAddr(t)

	signed := sign()
	signed.Txn.Nonce = 7
	require.Error(t, signed.Verify())

	signed = sign()
	signed.Signature[3] ^= 0xff
	require.Error(t, signed.Verify())

	signed = sign()
	signed.Signature = signed.Signature[:10]
	require.ErrorIs(t, signed.Verify(), ErrBadSignature)
}

func TestVerifyRejectsForgedSender(t *testing.T) {
	other, _ := newKeyAddr(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	txn := NewTransaction(0, 5, *other, *other)
	signed, err := NewSignedTransaction(txn, key)
	require.NoError(t, err)
	require.Error(t, signed.Verify())
}

func TestSignedTransactionJSON(t *testing.T) {
	_, sign := newKeyAddr(t)
	signed := sign()

	raw, err := json.Marshal(signed)
	require.NoError(t, err)

	var back SignedTransaction
	require.NoError(t, json.Unmarshal(raw, &back))
	require.NoError(t, back.Verify())
	require.Equal(t, signed.Handle(), back.Handle())
	require.Equal(t, "(set-platform-fee u10)", back.Txn.Call.String())
}

func TestDeployAddress(t *testing.T) {
	from := account.NewAddress([20]byte{4})
	txn := NewDeploy(0, *from, "streaming_platform")
	require.Equal(t, Deploy, txn.Type)
	require.Equal(t, from.String()+".streaming_platform", txn.To.String())
}
