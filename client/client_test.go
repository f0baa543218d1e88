package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/api"
	"go.dedis.ch/streamchain/blockchain/wallet"
	"go.dedis.ch/streamchain/contract/streaming"
	"go.dedis.ch/streamchain/contract/value"
	z "go.dedis.ch/streamchain/internal/testing"
)

func newTestClient(t *testing.T) (*z.Chain, *Client) {
	chain := z.NewChain(t, z.WithContract(streaming.Name, streaming.New))
	srv := httptest.NewServer(api.NewServer(api.ServerConf{Addr: "test", Node: chain.Miner(), Instant: true}).Handler())
	t.Cleanup(srv.Close)
	return chain, NewClient(srv.URL + "/")
}

func TestClientInfoAndAccount(t *testing.T) {
	chain, c := newTestClient(t)
	ctx := context.Background()

	info, err := c.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), info.Height)

	acc, err := c.Account(ctx, chain.Account(z.Deployer).Address())
	require.NoError(t, err)
	require.Equal(t, uint64(1), acc.Nonce)

	b, err := c.Block(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, info.TipHash, b.Block.Hash())

	_, err = c.Block(ctx, "2")
	require.True(t, IsNotFound(err))
}

// a wallet signs locally and submits through the client
func TestWalletOverClient(t *testing.T) {
	chain, c := newTestClient(t)
	ctx := context.Background()

	w := chain.Account("wallet_1").Wallet
	w.SetSubmitter(c)
	txn, err := w.Call(chain.Contract(streaming.Name), "publish-content",
		value.UInt(1), value.UTF8("Song"), value.UTF8("desc"), value.UInt(100),
		value.Bool(false), value.UTF8("music"), value.Bool(false))
	require.NoError(t, err)
	require.NoError(t, w.Submit(txn))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	receipt, err := c.WaitReceipt(ctx, txn.Handle(), 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, receipt.Receipt.Success)

	title, err := c.CallReadOnly(ctx, chain.Contract(streaming.Name), w.Address(), "get-content", value.UInt(1))
	require.NoError(t, err)
	opt, err := value.AsOptional(title)
	require.NoError(t, err)
	require.True(t, opt.IsSome())

	_, err = c.CallReadOnly(ctx, chain.Contract(streaming.Name), w.Address(), "publish-content")
	require.Error(t, err)

	var _ wallet.Submitter = c
}

func TestWaitReceiptTimesOut(t *testing.T) {
	_, c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.WaitReceipt(ctx, "00ff", 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
