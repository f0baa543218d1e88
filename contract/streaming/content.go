package streaming

import (
	"strings"

	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

func purchaseKey(id uint64, buyer value.Principal) value.Tuple {
	return value.Tuple{"content-id": value.UInt(id), "buyer": buyer}
}

// publish-content: a duplicate id fails before anything else is looked at
func publishContent(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	_, exists, err := contents.Get(ctx.Storage, value.UInt(id))
	if err != nil {
		return nil, err
	}
	if exists {
		return fail(ErrContentExists)
	}

	c := Content{
		Creator:     ctx.Sender,
		Owner:       ctx.Sender,
		Title:       argString(args, 1),
		Description: argString(args, 2),
		Price:       argUInt(args, 3),
		IsNFT:       argBool(args, 4),
		Category:    argString(args, 5),
		IsPremium:   argBool(args, 6),
		CreatedAt:   ctx.BlockHeight,
	}
	if strings.TrimSpace(c.Title) == "" {
		return fail(ErrInvalidInput)
	}
	if err := storeContent(ctx, id, c); err != nil {
		return nil, err
	}
	ctx.Print(event("publish-content", value.Tuple{
		"content-id": value.UInt(id),
		"creator":    c.Creator,
		"price":      value.UInt(c.Price),
	}))
	return okTrue()
}

func updateContentPrice(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	c, ok, err := loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrContentNotFound)
	}
	if c.Owner != ctx.Sender {
		return fail(ErrNotAuthorized)
	}
	c.Price = argUInt(args, 1)
	if err := storeContent(ctx, id, c); err != nil {
		return nil, err
	}
	ctx.Print(event("update-content-price", value.Tuple{
		"content-id": value.UInt(id),
		"price":      value.UInt(c.Price),
	}))
	return okTrue()
}

// purchase-content pays the current owner; an NFT changes hands, any other
// item records a purchase for the buyer
func purchaseContent(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	c, ok, err := loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrContentNotFound)
	}
	buyer := ctx.Sender
	if buyer == c.Owner {
		if c.Owner == c.Creator {
			return fail(ErrSelfAction)
		}
		return fail(ErrAlreadyPurchased)
	}
	if !c.IsNFT {
		_, bought, err := purchases.Get(ctx.Storage, purchaseKey(id, buyer))
		if err != nil {
			return nil, err
		}
		if bought {
			return fail(ErrAlreadyPurchased)
		}
	}

	seller := c.Owner
	code, err := pay(ctx, c.Price, buyer, seller)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fail(code)
	}

	if c.IsNFT {
		c.Owner = buyer
	} else {
		err := purchases.Set(ctx.Storage, purchaseKey(id, buyer), value.Tuple{
			"price": value.UInt(c.Price),
			"block": value.UInt(ctx.BlockHeight),
		})
		if err != nil {
			return nil, err
		}
	}
	c.PurchaseCount++
	if err := storeContent(ctx, id, c); err != nil {
		return nil, err
	}
	ctx.Print(event("purchase-content", value.Tuple{
		"content-id": value.UInt(id),
		"buyer":      buyer,
		"seller":     seller,
		"price":      value.UInt(c.Price),
	}))
	return okTrue()
}

func getContent(ctx *contract.Context, args []value.Value) (value.Value, error) {
	t, ok, err := contents.GetTuple(ctx.Storage, args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.None(), nil
	}
	return value.Some(t), nil
}

func hasAccess(ctx *contract.Context, args []value.Value) (value.Value, error) {
	user := argPrincipal(args, 0)
	id := argUInt(args, 1)
	c, ok, err := loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Bool(false), nil
	}
	access, err := canAccess(ctx, user, id, c)
	if err != nil {
		return nil, err
	}
	return value.Bool(access), nil
}

// canAccess: creator and owner always; buyers; free regular items for
// everyone; premium items for active subscribers of the creator
func canAccess(ctx *contract.Context, user value.Principal, id uint64, c Content) (bool, error) {
	if user == c.Creator || user == c.Owner {
		return true, nil
	}
	_, bought, err := purchases.Get(ctx.Storage, purchaseKey(id, user))
	if err != nil || bought {
		return bought, err
	}
	if c.IsPremium {
		sub, found, err := loadSubscription(ctx, user, c.Creator)
		if err != nil || !found {
			return false, err
		}
		return sub.IsActive(ctx.BlockHeight), nil
	}
	return c.Price == 0, nil
}
