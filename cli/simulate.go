package main

import (
	"fmt"
	"io"
	"os"

	"github.com/disiqueira/gotree"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.dedis.ch/streamchain/blockchain"
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/blockchain/transaction"
	"go.dedis.ch/streamchain/contract/parser"
	"go.dedis.ch/streamchain/contract/streaming"
	"go.dedis.ch/streamchain/contract/value"
	"go.dedis.ch/streamchain/logging"
)

const deployer = "deployer"

const defaultBalance uint64 = 100_000_000

var simulateCommand = &cli.Command{
	Name:      "simulate",
	Usage:     "run a YAML scenario against a fresh chain",
	ArgsUsage: "<scenario.yaml>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "difficulty", Usage: "leading zero bytes of block hashes", Value: 0},
		&cli.BoolFlag{Name: "chain", Usage: "also print the whole chain"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("simulate needs one scenario file", 2)
		}
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		sc, err := LoadScenario(f)
		if err != nil {
			return err
		}

		r, err := newRunner(sc, c.Int("difficulty"))
		if err != nil {
			return err
		}
		failures, err := r.run(sc, c.App.Writer)
		if err != nil {
			return err
		}
		if c.Bool("chain") {
			fmt.Fprintln(c.App.Writer, r.sim.GetChain().Display())
		}
		if failures > 0 {
			return cli.Exit(fmt.Sprintf("%d expectation(s) failed", failures), 1)
		}
		return nil
	},
}

// runner plays a scenario on an in-memory miner
type runner struct {
	logger   zerolog.Logger
	id       xid.ID
	sim      *blockchain.Simulation
	platform *account.Address
}

func newRunner(sc *Scenario, difficulty int) (*runner, error) {
	r := &runner{id: xid.New()}
	r.logger = logging.RootLogger.With().Str("Run", r.id.String()).Logger()

	balance := sc.Balance
	if balance == 0 {
		balance = defaultBalance
	}
	names := []string{deployer}
	for i := 1; i <= 8; i++ {
		names = append(names, fmt.Sprintf("wallet_%d", i))
	}

	sim, err := blockchain.NewSimulation(blockchain.SimulationConf{
		Addr:       "simulation",
		Accounts:   append(names, sc.Accounts...),
		Balance:    balance,
		Deployer:   deployer,
		Difficulty: difficulty,
		Contracts:  []blockchain.ContractCode{{Name: streaming.Name, Factory: streaming.New}},
	})
	if err != nil {
		return nil, err
	}
	r.sim = sim
	r.platform, err = sim.Contract(streaming.Name)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Msgf("platform deployed at %s", r.platform)
	return r, nil
}

func (r *runner) principal(name string) (string, error) {
	if name == "contract" {
		return r.platform.String(), nil
	}
	w, err := r.sim.Wallet(name)
	if err != nil {
		return "", err
	}
	return w.Address().String(), nil
}

func (r *runner) parseCall(plain string) (parser.Call, error) {
	expanded, err := expand(plain, r.principal)
	if err != nil {
		return parser.Call{}, err
	}
	return parser.ParseCall(expanded)
}

func (r *runner) sign(tx TxSpec) (*transaction.SignedTransaction, string, error) {
	w, err := r.sim.Wallet(tx.Sender)
	if err != nil {
		return nil, "", err
	}
	if tx.Call == "" {
		to, err := r.sim.Wallet(tx.TransferTo)
		if err != nil {
			return nil, "", err
		}
		txn, err := w.Transfer(to.Address(), tx.Amount)
		return txn, fmt.Sprintf("%s: transfer %d to %s", tx.Sender, tx.Amount, tx.TransferTo), err
	}
	call, err := r.parseCall(tx.Call)
	if err != nil {
		return nil, "", err
	}
	txn, err := w.Call(r.platform, call.Function, call.Args...)
	return txn, fmt.Sprintf("%s: %s", tx.Sender, call), err
}

// check compares got with the expectation want, if any
func (r *runner) check(want string, got value.Value) (string, bool, error) {
	if want == "" {
		return "", true, nil
	}
	expanded, err := expand(want, r.principal)
	if err != nil {
		return "", false, err
	}
	expected, err := parser.ParseValue(expanded)
	if err != nil {
		return "", false, fmt.Errorf("expectation %q: %w", want, err)
	}
	if value.Equal(expected, got) {
		return "", true, nil
	}
	return fmt.Sprintf("FAIL: expected %s", expected), false, nil
}

func expectation(step Step, i int) string {
	if len(step.Expect) == 0 {
		return ""
	}
	return step.Expect[i]
}

// run plays every step, prints the result tree and counts failed expectations
func (r *runner) run(sc *Scenario, out io.Writer) (int, error) {
	tree := gotree.New(fmt.Sprintf("run %s", r.id))
	failures := 0

	for i, step := range sc.Steps {
		switch {
		case step.Empty > 0:
			b, err := r.sim.MineEmptyBlocks(step.Empty)
			if err != nil {
				return failures, err
			}
			tree.Add(fmt.Sprintf("mined %d empty block(s), height %d", step.Empty, b.Header.Number))

		case step.Read != nil:
			sender, err := r.sim.Wallet(step.Read.Sender)
			if err != nil {
				return failures, fmt.Errorf("step %d: %w", i, err)
			}
			call, err := r.parseCall(step.Read.Call)
			if err != nil {
				return failures, fmt.Errorf("step %d: %w", i, err)
			}
			node := tree.Add(fmt.Sprintf("read %s: %s", step.Read.Sender, call))
			result, err := r.sim.CallReadOnly(r.platform, sender.Address(), call.Function, call.Args...)
			if err != nil {
				node.Add("error: " + err.Error())
				failures++
				continue
			}
			node.Add(streaming.Describe(result))
			msg, ok, err := r.check(expectation(step, 0), result)
			if err != nil {
				return failures, fmt.Errorf("step %d: %w", i, err)
			}
			if !ok {
				node.Add(msg)
				failures++
			}

		default:
			txns := make([]*transaction.SignedTransaction, 0, len(step.Block))
			labels := make([]string, 0, len(step.Block))
			for j, tx := range step.Block {
				txn, label, err := r.sign(tx)
				if err != nil {
					return failures, fmt.Errorf("step %d txn %d: %w", i, j, err)
				}
				txns = append(txns, txn)
				labels = append(labels, label)
			}
			b, err := r.sim.MineBlock(txns...)
			if err != nil {
				return failures, fmt.Errorf("step %d: %w", i, err)
			}
			if err := r.sim.SyncNonces(); err != nil {
				return failures, err
			}

			blockNode := tree.Add(fmt.Sprintf("block %d", b.Header.Number))
			for j, receipt := range b.Receipts {
				node := blockNode.Add(labels[j])
				if receipt.Result == nil {
					node.Add("rejected: " + receipt.Error)
					if expectation(step, j) != "" {
						failures++
					}
					continue
				}
				node.Add(streaming.Describe(receipt.Result))
				for _, ev := range receipt.Events {
					node.Add(fmt.Sprintf("event %s %s", ev.Type, ev.Data))
				}
				msg, ok, err := r.check(expectation(step, j), receipt.Result)
				if err != nil {
					return failures, fmt.Errorf("step %d: %w", i, err)
				}
				if !ok {
					node.Add(msg)
					failures++
				}
			}
		}
	}

	fmt.Fprint(out, tree.Print())
	r.logger.Info().Int("failures", failures).Msgf("run finished at height %d", r.sim.GetChain().Height())
	return failures, nil
}
