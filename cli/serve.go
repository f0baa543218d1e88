package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.dedis.ch/streamchain/api"
	"go.dedis.ch/streamchain/blockchain"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/block"
	"go.dedis.ch/streamchain/blockchain/miner"
	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/streaming"
	"go.dedis.ch/streamchain/logging"
	"go.dedis.ch/streamchain/store"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run a miner daemon with the HTTP api",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: "127.0.0.1:20443", EnvVars: []string{"STREAMCHAIN_ADDR"}},
		&cli.StringFlag{Name: "key", Usage: "hex private key of the node, generated if empty",
			EnvVars: []string{"STREAMCHAIN_KEY"}},
		&cli.Uint64Flag{Name: "balance", Usage: "genesis balance of the node account", Value: defaultBalance},
		&cli.StringSliceFlag{Name: "fund", Usage: "genesis account as principal=balance, repeatable",
			EnvVars: []string{"STREAMCHAIN_FUND"}},
		&cli.IntFlag{Name: "difficulty", Value: 1, EnvVars: []string{"STREAMCHAIN_DIFFICULTY"}},
		&cli.IntFlag{Name: "block-txns", Value: 10},
		&cli.DurationFlag{Name: "block-interval", Value: 2 * time.Second},
		&cli.StringFlag{Name: "redis", Usage: "redis url of the block archive", EnvVars: []string{"REDIS_URL"}},
		&cli.StringFlag{Name: "postgres", Usage: "dsn of the receipt index", EnvVars: []string{"DATABASE_URL"}},
	},
	Action: serve,
}

// parseFund reads "principal=balance"
func parseFund(plain string) (*account.Address, uint64, error) {
	i := strings.LastIndexByte(plain, '=')
	if i < 0 {
		return nil, 0, fmt.Errorf("fund %q is not principal=balance", plain)
	}
	addr, err := account.ParseAddress(plain[:i])
	if err != nil {
		return nil, 0, err
	}
	balance, err := strconv.ParseUint(plain[i+1:], 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("fund %q: %w", plain, err)
	}
	return addr, balance, nil
}

func loadKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return crypto.GenerateKey()
	}
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}

func genesis(key *ecdsa.PrivateKey, balance uint64, funds []string) (*block.Block, error) {
	self := account.NewAccountBuilder(crypto.FromECDSAPub(&key.PublicKey), storage.CreateSimpleKV).
		WithBalance(balance).Build()
	bb := block.NewBlockBuilder(storage.CreateSimpleKV).
		SetParentHash(block.DUMMY_PARENT_HASH).
		SetNumber(0).
		SetTimestamp(0).
		SetAddrState(self.GetAddr(), self.GetState())
	for _, fund := range funds {
		addr, amount, err := parseFund(fund)
		if err != nil {
			return nil, err
		}
		bb.SetAddrState(addr, account.NewStateBuilder(storage.CreateSimpleKV).SetBalance(amount).Build())
	}
	return bb.Build(), nil
}

func sinks(ctx context.Context, c *cli.Context) ([]miner.BlockSink, func(), error) {
	var ret []miner.BlockSink
	var closers []func()
	closeAll := func() {
		for _, f := range closers {
			f()
		}
	}

	if url := c.String("redis"); url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, closeAll, fmt.Errorf("redis: %w", err)
		}
		rdb := redis.NewClient(opt)
		closers = append(closers, func() { rdb.Close() })
		ret = append(ret, store.NewRedisArchive(rdb))
	}
	if dsn := c.String("postgres"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, closeAll, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		index := store.NewReceiptIndex(pool)
		if err := index.Migrate(ctx); err != nil {
			return nil, closeAll, err
		}
		ret = append(ret, index)
	}
	return ret, closeAll, nil
}

func serve(c *cli.Context) error {
	logger := logging.RootLogger.With().Str("Serve", c.String("addr")).Logger()
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	key, err := loadKey(c.String("key"))
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	gen, err := genesis(key, c.Uint64("balance"), c.StringSlice("fund"))
	if err != nil {
		return err
	}
	blockSinks, closeSinks, err := sinks(ctx, c)
	defer closeSinks()
	if err != nil {
		return err
	}

	registry := contract.NewRegistry()
	registry.Register(streaming.Name, streaming.New)
	node := blockchain.NewFullNode(&blockchain.FullNodeConf{
		Addr:              c.String("addr"),
		PrivateKey:        key,
		Bootstrap:         block.NewBlockChainWithGenesis(gen),
		KVFactory:         storage.CreateSimpleKV,
		Registry:          registry,
		BlockTransactions: c.Int("block-txns"),
		BlockInterval:     c.Duration("block-interval"),
		Difficulty:        c.Int("difficulty"),
		Sinks:             blockSinks,
	})
	node.Start()
	defer node.Stop()

	deploy, err := node.Deploy(streaming.Name)
	if err != nil {
		return err
	}
	if err := node.Submit(deploy); err != nil {
		return err
	}
	logger.Info().Msgf("node %s, platform at %s", node.Address(), deploy.Txn.To.String())

	srv := api.NewServer(api.ServerConf{Addr: c.String("addr"), Node: node.Miner})
	return srv.Serve(ctx)
}
