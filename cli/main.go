package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.dedis.ch/streamchain/logging"
)

func main() {
	app := &cli.App{
		Name:  "streamchain",
		Usage: "simulate and serve the streaming platform contract",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "trace, debug, info, warn or error",
				EnvVars: []string{logging.LevelEnv},
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			return logging.SetLevel(c.String("log-level"))
		},
		Commands: []*cli.Command{
			simulateCommand,
			serveCommand,
			callCommand,
			receiptsCommand,
			keygenCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
