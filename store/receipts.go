package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"golang.org/x/xerrors"
)

// DB is implemented by *pgxpool.Pool and by pgxmock pools
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReceiptRow is one indexed txn outcome
type ReceiptRow struct {
	BlockNumber int64  `json:"block_number"`
	TxIndex     int64  `json:"tx_index"`
	TxID        string `json:"txid"`
	Sender      string `json:"sender"`
	Contract    string `json:"contract"`
	Function    string `json:"function"`
	Result      string `json:"result"`
	Success     bool   `json:"success"`
}

const insertReceipt = `
	INSERT INTO receipts (block_number, tx_index, txid, sender, contract, function, result, success)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (block_number, tx_index) DO NOTHING`

const selectBySender = `
	SELECT block_number, tx_index, txid, sender, contract, function, result, success
	FROM receipts WHERE sender = $1
	ORDER BY block_number, tx_index
	LIMIT $2`

// ReceiptIndex keeps one row per mined txn in Postgres
type ReceiptIndex struct {
	db DB
}

func NewReceiptIndex(db DB) *ReceiptIndex {
	return &ReceiptIndex{db: db}
}

func (r *ReceiptIndex) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS receipts (
          block_number BIGINT NOT NULL,
          tx_index     BIGINT NOT NULL,
          txid         TEXT NOT NULL,
          sender       TEXT NOT NULL,
          contract     TEXT NOT NULL DEFAULT '',
          function     TEXT NOT NULL DEFAULT '',
          result       TEXT NOT NULL DEFAULT '',
          success      BOOLEAN NOT NULL,
          PRIMARY KEY (block_number, tx_index)
      )
    `)
	if err != nil {
		return xerrors.Errorf("migrate receipts: %w", err)
	}
	if _, err := r.db.Exec(ctx, `CREATE INDEX IF NOT EXISTS receipts_sender_idx ON receipts (sender)`); err != nil {
		return xerrors.Errorf("migrate receipts index: %w", err)
	}
	return nil
}

// Rows flattens a block into receipt rows
func Rows(b *block.Block) []ReceiptRow {
	rows := make([]ReceiptRow, 0, len(b.Transactions))
	for i, txn := range b.Transactions {
		row := ReceiptRow{
			BlockNumber: int64(b.Header.Number),
			TxIndex:     int64(i),
			TxID:        string(txn.Handle()),
			Sender:      txn.Txn.From.String(),
			Function:    txn.Txn.Type.String(),
		}
		if txn.Txn.Type != transaction.Transfer {
			row.Contract = txn.Txn.To.String()
		}
		if txn.Txn.Call != nil {
			row.Function = txn.Txn.Call.Function
		}
		if i < len(b.Receipts) {
			receipt := b.Receipts[i]
			row.Success = receipt.Success
			if receipt.Result != nil {
				row.Result = receipt.Result.String()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *ReceiptIndex) IndexBlock(ctx context.Context, b *block.Block) error {
	for _, row := range Rows(b) {
		_, err := r.db.Exec(ctx, insertReceipt,
			row.BlockNumber, row.TxIndex, row.TxID, row.Sender, row.Contract, row.Function, row.Result, row.Success)
		if err != nil {
			return xerrors.Errorf("index receipt %d/%d: %w", row.BlockNumber, row.TxIndex, err)
		}
	}
	return nil
}

// StoreBlock implements miner.BlockSink
func (r *ReceiptIndex) StoreBlock(ctx context.Context, b *block.Block) error {
	return r.IndexBlock(ctx, b)
}

// BySender lists the receipts of txns sent by sender, oldest first
func (r *ReceiptIndex) BySender(ctx context.Context, sender string, limit int) ([]ReceiptRow, error) {
	rows, err := r.db.Query(ctx, selectBySender, sender, limit)
	if err != nil {
		return nil, xerrors.Errorf("query receipts of %s: %w", sender, err)
	}
	defer rows.Close()

	ret := make([]ReceiptRow, 0)
	for rows.Next() {
		var row ReceiptRow
		err := rows.Scan(&row.BlockNumber, &row.TxIndex, &row.TxID, &row.Sender,
			&row.Contract, &row.Function, &row.Result, &row.Success)
		if err != nil {
			return nil, xerrors.Errorf("scan receipt: %w", err)
		}
		ret = append(ret, row)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Errorf("iterate receipts: %w", err)
	}
	return ret, nil
}
