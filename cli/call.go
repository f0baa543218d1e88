package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/client"
	"go.dedis.ch/streamchain/contract/parser"
	"go.dedis.ch/streamchain/contract/streaming"
	"go.dedis.ch/streamchain/store"
)

var nodeFlag = &cli.StringFlag{
	Name:    "node",
	Value:   "http://127.0.0.1:20443",
	EnvVars: []string{"STREAMCHAIN_NODE"},
}

func contextWithTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, c.Duration("timeout"))
}

var callCommand = &cli.Command{
	Name:      "call",
	Usage:     "evaluate a read-only function on a node",
	ArgsUsage: "<contract principal> '(function args...)'",
	Flags: []cli.Flag{
		nodeFlag,
		&cli.StringFlag{Name: "sender", Usage: "principal of the caller", Required: true},
		&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.Exit("call needs a contract and a call expression", 2)
		}
		contractAddr, err := account.ParseAddress(c.Args().Get(0))
		if err != nil {
			return err
		}
		sender, err := account.ParseAddress(c.String("sender"))
		if err != nil {
			return err
		}
		call, err := parser.ParseCall(c.Args().Get(1))
		if err != nil {
			return err
		}

		ctx, cancel := contextWithTimeout(c)
		defer cancel()
		result, err := client.NewClient(c.String("node")).
			CallReadOnly(ctx, contractAddr, sender, call.Function, call.Args...)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, streaming.Describe(result))
		return nil
	},
}

var receiptsCommand = &cli.Command{
	Name:      "receipts",
	Usage:     "list the indexed receipts of a sender",
	ArgsUsage: "<sender principal>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "postgres", EnvVars: []string{"DATABASE_URL"}, Required: true},
		&cli.IntFlag{Name: "limit", Value: 50},
		&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("receipts needs a sender", 2)
		}
		ctx, cancel := contextWithTimeout(c)
		defer cancel()
		pool, err := pgxpool.New(ctx, c.String("postgres"))
		if err != nil {
			return err
		}
		defer pool.Close()

		rows, err := store.NewReceiptIndex(pool).BySender(ctx, c.Args().First(), c.Int("limit"))
		if err != nil {
			return err
		}
		for _, row := range rows {
			status := "ok"
			if !row.Success {
				status = "failed"
			}
			fmt.Fprintf(c.App.Writer, "%6d/%-3d %s %s %s %s\n", row.BlockNumber, row.TxIndex,
				row.TxID[:8], row.Function, status, row.Result)
		}
		return nil
	},
}
