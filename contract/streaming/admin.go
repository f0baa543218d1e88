package streaming

import (
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

func isOwner(ctx *contract.Context) (bool, error) {
	o, err := owner(ctx)
	if err != nil {
		return false, err
	}
	return o == ctx.Sender, nil
}

func setPlatformFee(ctx *contract.Context, args []value.Value) (value.Value, error) {
	ok, err := isOwner(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrNotAuthorized)
	}
	newFee := argUInt(args, 0)
	if newFee > MaxPlatformFee {
		return fail(ErrInvalidInput)
	}
	if err := platformFee.Set(ctx.Storage, value.UInt(newFee)); err != nil {
		return nil, err
	}
	ctx.Print(event("set-platform-fee", value.Tuple{"fee": value.UInt(newFee)}))
	return okTrue()
}

func setPlatformOwner(ctx *contract.Context, args []value.Value) (value.Value, error) {
	ok, err := isOwner(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrNotAuthorized)
	}
	newOwner := argPrincipal(args, 0)
	if err := platformOwner.Set(ctx.Storage, newOwner); err != nil {
		return nil, err
	}
	ctx.Print(event("set-platform-owner", value.Tuple{"owner": newOwner}))
	return okTrue()
}

func getPlatformFee(ctx *contract.Context, args []value.Value) (value.Value, error) {
	return platformFee.Get(ctx.Storage)
}

func getPlatformOwner(ctx *contract.Context, args []value.Value) (value.Value, error) {
	return platformOwner.Get(ctx.Storage)
}
