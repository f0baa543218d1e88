package streaming

import (
	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

func ratingKey(id uint64, rater value.Principal) value.Tuple {
	return value.Tuple{"content-id": value.UInt(id), "rater": rater}
}

func rateContent(ctx *contract.Context, args []value.Value) (value.Value, error) {
	id := argUInt(args, 0)
	rating := argUInt(args, 1)
	c, ok, err := loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail(ErrContentNotFound)
	}
	if rating < MinRating || rating > MaxRating {
		return fail(ErrInvalidRating)
	}
	inserted, err := ratings.Insert(ctx.Storage, ratingKey(id, ctx.Sender), value.UInt(rating))
	if err != nil {
		return nil, err
	}
	if !inserted {
		return fail(ErrAlreadyRated)
	}
	c.TotalRating += rating
	c.RatingCount++
	if err := storeContent(ctx, id, c); err != nil {
		return nil, err
	}
	ctx.Print(event("rate-content", value.Tuple{
		"content-id": value.UInt(id),
		"rater":      ctx.Sender,
		"rating":     value.UInt(rating),
	}))
	return okTrue()
}

func getRating(ctx *contract.Context, args []value.Value) (value.Value, error) {
	v, ok, err := ratings.Get(ctx.Storage, ratingKey(argUInt(args, 0), argPrincipal(args, 1)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.None(), nil
	}
	return value.Some(v), nil
}

// get-content-rating: integer average, u0 when unrated
func getContentRating(ctx *contract.Context, args []value.Value) (value.Value, error) {
	c, ok, err := loadContent(ctx, argUInt(args, 0))
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.ErrCode(ErrContentNotFound), nil
	}
	var average uint64
	if c.RatingCount > 0 {
		average = c.TotalRating / c.RatingCount
	}
	return value.Ok(value.Tuple{
		"average": value.UInt(average),
		"count":   value.UInt(c.RatingCount),
	}), nil
}
