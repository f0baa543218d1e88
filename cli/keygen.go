package main

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
	"go.dedis.ch/streamchain/blockchain/account"
)

var keygenCommand = &cli.Command{
	Name:  "keygen",
	Usage: "generate a secp256k1 key and print its principal",
	Action: func(c *cli.Context) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		addr := account.NewAddressFromPublicKey(crypto.FromECDSAPub(&key.PublicKey))
		fmt.Fprintf(c.App.Writer, "principal:   %s\n", addr)
		fmt.Fprintf(c.App.Writer, "private key: %s\n", hex.EncodeToString(crypto.FromECDSA(key)))
		return nil
	},
}
