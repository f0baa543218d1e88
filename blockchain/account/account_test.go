package account

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/blockchain/storage"
)

func TestAddressFromKeyMatchesEthereum(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	addr := NewAddressFromPublicKey(crypto.FromECDSAPub(&key.PublicKey))
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), addr.String())
	require.False(t, addr.IsContract())
}

func TestContractAddress(t *testing.T) {
	deployer := NewAddress([20]byte{1, 2, 3})
	c := NewContractAddress(deployer, "streaming_platform")
	require.True(t, c.IsContract())
	require.Equal(t, "streaming_platform", c.ContractName())
	require.Equal(t, deployer.String()+".streaming_platform", c.String())
	require.True(t, c.Deployer().Equal(deployer))
	require.False(t, c.Equal(deployer))
}

func TestParseAddress(t *testing.T) {
	deployer := NewAddress([20]byte{0xde, 0xad})
	for _, a := range []*Address{deployer, NewContractAddress(deployer, "x")} {
		parsed, err := ParseAddress(a.String())
		require.NoError(t, err)
		require.True(t, parsed.Equal(a))
	}

	_, err := ParseAddress("not-an-address")
	require.Error(t, err)
	_, err = ParseAddress(deployer.String() + ".")
	require.Error(t, err)
}

func TestAddressText(t *testing.T) {
	a := NewContractAddress(NewAddress([20]byte{9}), "c")
	text, err := a.MarshalText()
	require.NoError(t, err)

	var back Address
	require.NoError(t, back.UnmarshalText(text))
	require.True(t, back.Equal(a))
}

func TestAccountBuilder(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	ac := NewAccountBuilder(crypto.FromECDSAPub(&key.PublicKey), storage.CreateSimpleKV).
		WithBalance(100).WithKV("apple", 3).Build()
	require.Equal(t, uint64(100), ac.GetState().Balance)
	v, err := ac.GetState().StorageRoot.Get("apple")
	require.NoError(t, err)
	require.Equal(t, 3, v)

	contract := NewContractBuilder(ac.GetAddr(), "streaming_platform", storage.CreateSimpleKV).Build()
	require.True(t, contract.GetState().IsContract())
	require.Equal(t, "streaming_platform", contract.GetState().Code)
}

func TestStateCopy(t *testing.T) {
	s := NewStateBuilder(storage.CreateSimpleKV).SetBalance(5).SetKV("k", "v").Build()
	cp := s.Copy().(*State)
	cp.Balance = 9
	require.NoError(t, cp.StorageRoot.Put("k", "changed"))

	require.Equal(t, uint64(5), s.Balance)
	v, err := s.StorageRoot.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}
