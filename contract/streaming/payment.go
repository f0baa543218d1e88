package streaming

import (
	"math/big"

	"github.com/shopspring/decimal"
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

// splitFee returns floor(amount*percent/100) and the remainder
func splitFee(amount, percent uint64) (platform, rest uint64) {
	total := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	cut := total.Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(percent), 0)).
		Div(decimal.NewFromInt(100)).
		Floor()
	platform = cut.BigInt().Uint64()
	return platform, amount - platform
}

// pay moves amount from payer: the platform fee to the platform owner and
// the rest to payee. It returns a non-zero error code when the payer cannot
// cover amount.
func pay(ctx *contract.Context, amount uint64, payer, payee value.Principal) (uint64, error) {
	if amount == 0 {
		return 0, nil
	}
	balance, err := ctx.Balance(payer)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return ErrInsufficientBalance, nil
	}
	percent, err := fee(ctx)
	if err != nil {
		return 0, err
	}
	recipient, err := owner(ctx)
	if err != nil {
		return 0, err
	}
	platformCut, rest := splitFee(amount, percent)
	if err := ctx.Transfer(platformCut, payer, recipient); err != nil {
		return 0, err
	}
	if err := ctx.Transfer(rest, payer, payee); err != nil {
		return 0, err
	}
	return 0, nil
}
