package streaming

import (
	"fmt"
	"math/bits"
	"strings"

	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

func subscriptionKey(subscriber, creator value.Principal) value.Tuple {
	return value.Tuple{"subscriber": subscriber, "creator": creator}
}

func loadSubscription(ctx *contract.Context, subscriber, creator value.Principal) (Subscription, bool, error) {
	t, ok, err := subscriptions.GetTuple(ctx.Storage, subscriptionKey(subscriber, creator))
	if err != nil || !ok {
		return Subscription{}, ok, err
	}
	sub, err := subscriptionFromTuple(t)
	if err != nil {
		return Subscription{}, false, fmt.Errorf("subscription %s -> %s: %w", subscriber, creator, err)
	}
	return sub, true, nil
}

func pricePerBlock(ctx *contract.Context, creator value.Principal) (uint64, error) {
	v, ok, err := subscriptionPrices.Get(ctx.Storage, creator)
	if err != nil || !ok {
		return 0, err
	}
	return value.AsUInt(v)
}

func setSubscriptionPrice(ctx *contract.Context, args []value.Value) (value.Value, error) {
	price := argUInt(args, 0)
	if err := subscriptionPrices.Set(ctx.Storage, ctx.Sender, value.UInt(price)); err != nil {
		return nil, err
	}
	ctx.Print(event("set-subscription-price", value.Tuple{
		"creator": ctx.Sender,
		"price":   value.UInt(price),
	}))
	return okTrue()
}

// subscribe-to-creator: an active subscription is reported before any
// other check, so a repeat call always yields ERR-ALREADY-SUBSCRIBED
func subscribeToCreator(ctx *contract.Context, args []value.Value) (value.Value, error) {
	creator := argPrincipal(args, 0)
	duration := argUInt(args, 1)
	label := argString(args, 2)
	subscriber := ctx.Sender

	current, found, err := loadSubscription(ctx, subscriber, creator)
	if err != nil {
		return nil, err
	}
	if found && current.IsActive(ctx.BlockHeight) {
		return fail(ErrAlreadySubscribed)
	}
	if creator == subscriber {
		return fail(ErrSelfAction)
	}
	if duration == 0 || strings.TrimSpace(label) == "" {
		return fail(ErrInvalidInput)
	}
	expiry, carry := bits.Add64(ctx.BlockHeight, duration, 0)
	if carry != 0 {
		return fail(ErrInvalidInput)
	}

	price, err := pricePerBlock(ctx, creator)
	if err != nil {
		return nil, err
	}
	hi, total := bits.Mul64(price, duration)
	if hi != 0 {
		return fail(ErrInvalidInput)
	}
	code, err := pay(ctx, total, subscriber, creator)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fail(code)
	}

	sub := Subscription{
		Duration: duration,
		Type:     label,
		Start:    ctx.BlockHeight,
		Expiry:   expiry,
		Active:   true,
		Paid:     total,
	}
	if err := subscriptions.Set(ctx.Storage, subscriptionKey(subscriber, creator), sub.Tuple()); err != nil {
		return nil, err
	}
	ctx.Print(event("subscribe-to-creator", value.Tuple{
		"subscriber": subscriber,
		"creator":    creator,
		"expiry":     value.UInt(expiry),
	}))
	return okTrue()
}

func cancelSubscription(ctx *contract.Context, args []value.Value) (value.Value, error) {
	creator := argPrincipal(args, 0)
	sub, found, err := loadSubscription(ctx, ctx.Sender, creator)
	if err != nil {
		return nil, err
	}
	if !found || !sub.IsActive(ctx.BlockHeight) {
		return fail(ErrNotSubscribed)
	}
	sub.Active = false
	if err := subscriptions.Set(ctx.Storage, subscriptionKey(ctx.Sender, creator), sub.Tuple()); err != nil {
		return nil, err
	}
	ctx.Print(event("cancel-subscription", value.Tuple{
		"subscriber": ctx.Sender,
		"creator":    creator,
	}))
	return okTrue()
}

func getSubscriptionStatus(ctx *contract.Context, args []value.Value) (value.Value, error) {
	sub, _, err := loadSubscription(ctx, argPrincipal(args, 0), argPrincipal(args, 1))
	if err != nil {
		return nil, err
	}
	return value.Tuple{
		"is-active":         value.Bool(sub.IsActive(ctx.BlockHeight)),
		"expiry":            value.UInt(sub.Expiry),
		"duration":          value.UInt(sub.Duration),
		"subscription-type": value.UTF8(sub.Type),
	}, nil
}

func getSubscriptionPrice(ctx *contract.Context, args []value.Value) (value.Value, error) {
	price, err := pricePerBlock(ctx, argPrincipal(args, 0))
	if err != nil {
		return nil, err
	}
	return value.UInt(price), nil
}
