package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/contract/streaming"
	"go.dedis.ch/streamchain/contract/value"
	z "go.dedis.ch/streamchain/internal/testing"
)

func newArchive(t *testing.T) (*RedisArchive, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisArchive(rdb), mr
}

func mineSample(t *testing.T, opts ...z.Option) (*z.Chain, *block.Block) {
	opts = append(opts, z.WithContract(streaming.Name, streaming.New))
	chain := z.NewChain(t, opts...)
	b := chain.MineBlock(
		z.ContractCall(streaming.Name, "publish-content", []value.Value{
			value.UInt(1), value.UTF8("Song"), value.UTF8("desc"), value.UInt(10),
			value.Bool(false), value.UTF8("music"), value.Bool(false)}, "wallet_1"),
		z.ContractCall(streaming.Name, "set-platform-fee", []value.Value{value.UInt(3)}, "wallet_1"),
		z.TransferSTX(7, "wallet_2", "wallet_1"),
	)
	return chain, b
}

func TestArchiveStoresMinedBlocks(t *testing.T) {
	archive, mr := newArchive(t)
	ctx := context.Background()

	_, err := archive.Head(ctx)
	require.ErrorIs(t, err, ErrNotArchived)

	chain, b := mineSample(t, z.WithSinks(archive))
	require.Equal(t, uint64(2), chain.Height())

	head, err := archive.Head(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(2), head)
	require.True(t, mr.Exists("block:1"))
	require.True(t, mr.Exists("block:2"))

	loaded, err := archive.LoadBlock(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, b.Hash(), loaded.Hash())
	require.Nil(t, loaded.State)
	require.Len(t, loaded.Receipts, 3)
	require.Equal(t, "(ok true)", loaded.Receipts[0].Result.String())
	require.Equal(t, "(err u100)", loaded.Receipts[1].Result.String())
	require.NoError(t, loaded.Transactions[0].Verify())

	byHash, err := archive.LoadBlockByHash(ctx, b.Hash())
	require.NoError(t, err)
	require.Equal(t, b.Hash(), byHash.Hash())

	_, err = archive.LoadBlock(ctx, 9)
	require.ErrorIs(t, err, ErrNotArchived)
	_, err = archive.LoadBlockByHash(ctx, "beef")
	require.ErrorIs(t, err, ErrNotArchived)
}

func TestArchiveCorruptedHead(t *testing.T) {
	archive, mr := newArchive(t)
	require.NoError(t, mr.Set("head", "not-a-number"))
	_, err := archive.Head(context.Background())
	require.Error(t, err)
}

func TestRows(t *testing.T) {
	chain, b := mineSample(t)
	rows := Rows(b)
	require.Len(t, rows, 3)

	sender := string(chain.Principal("wallet_1"))
	contractAddr := chain.Contract(streaming.Name).String()
	require.Equal(t, ReceiptRow{BlockNumber: 2, TxIndex: 0, TxID: string(b.Transactions[0].Handle()),
		Sender: sender, Contract: contractAddr, Function: "publish-content", Result: "(ok true)", Success: true}, rows[0])
	require.Equal(t, "(err u100)", rows[1].Result)
	require.False(t, rows[1].Success)
	require.Equal(t, "transfer", rows[2].Function)
	require.Empty(t, rows[2].Contract)
}

func TestReceiptIndexMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS receipts").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS receipts_sender_idx").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, NewReceiptIndex(mock).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptIndexBlock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, b := mineSample(t)
	for _, row := range Rows(b) {
		mock.ExpectExec("INSERT INTO receipts").
			WithArgs(row.BlockNumber, row.TxIndex, row.TxID, row.Sender, row.Contract, row.Function, row.Result, row.Success).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, NewReceiptIndex(mock).StoreBlock(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptIndexBlockError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, b := mineSample(t)
	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO receipts").WillReturnError(boom)

	err = NewReceiptIndex(mock).IndexBlock(context.Background(), b)
	require.ErrorIs(t, err, boom)
}

func TestReceiptIndexBySender(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	columns := []string{"block_number", "tx_index", "txid", "sender", "contract", "function", "result", "success"}
	mock.ExpectQuery("SELECT (.+) FROM receipts WHERE sender").
		WithArgs("0xabc", 10).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(2), int64(0), "aa", "0xabc", "0xabc.streaming_platform", "publish-content", "(ok true)", true).
			AddRow(int64(3), int64(1), "bb", "0xabc", "", "transfer", "(ok true)", true))

	rows, err := NewReceiptIndex(mock).BySender(context.Background(), "0xabc", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "publish-content", rows[0].Function)
	require.Equal(t, int64(3), rows[1].BlockNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
