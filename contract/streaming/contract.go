// Package streaming implements the streaming_platform contract: creators
// publish content, listeners buy it, subscribe to creators, rate content and
// keep playlists. The platform owner takes a percentage fee on every sale.
package streaming

import (
	"fmt"

	"go.dedis.ch/streamchain/contract"
	"go.dedis.ch/streamchain/contract/value"
)

// Name is the code name the contract is registered and deployed under
const Name = "streaming_platform"

const (
	DefaultPlatformFee uint64 = 5 // percent
	MaxPlatformFee     uint64 = 100
	MaxPlaylistSize           = 50
	MinRating          uint64 = 1
	MaxRating          uint64 = 5
)

var (
	platformFee   = contract.Var{Name: "platform-fee", Default: value.UInt(DefaultPlatformFee)}
	platformOwner = contract.Var{Name: "platform-owner"}

	contents           = contract.Map{Name: "contents"}
	purchases          = contract.Map{Name: "purchases"}
	subscriptions      = contract.Map{Name: "subscriptions"}
	subscriptionPrices = contract.Map{Name: "subscription-prices"}
	ratings            = contract.Map{Name: "ratings"}
	playlists          = contract.Map{Name: "playlists"}
)

var (
	uintT      = value.KindUInt
	boolT      = value.KindBool
	strT       = value.KindUTF8
	principalT = value.KindPrincipal
)

// Contract implements contract.SmartContract
type Contract struct {
	*contract.Dispatcher
}

// New is a contract.Factory
func New() contract.SmartContract {
	return &Contract{Dispatcher: contract.NewDispatcher(
		// admin
		contract.Function{Name: "set-platform-fee", Params: []value.Kind{uintT}, Handler: setPlatformFee},
		contract.Function{Name: "set-platform-owner", Params: []value.Kind{principalT}, Handler: setPlatformOwner},
		contract.Function{Name: "get-platform-fee", ReadOnly: true, Handler: getPlatformFee},
		contract.Function{Name: "get-platform-owner", ReadOnly: true, Handler: getPlatformOwner},
		// content
		contract.Function{Name: "publish-content", Params: []value.Kind{uintT, strT, strT, uintT, boolT, strT, boolT}, Handler: publishContent},
		contract.Function{Name: "update-content-price", Params: []value.Kind{uintT, uintT}, Handler: updateContentPrice},
		contract.Function{Name: "purchase-content", Params: []value.Kind{uintT}, Handler: purchaseContent},
		contract.Function{Name: "get-content", Params: []value.Kind{uintT}, ReadOnly: true, Handler: getContent},
		contract.Function{Name: "has-access", Params: []value.Kind{principalT, uintT}, ReadOnly: true, Handler: hasAccess},
		// subscriptions
		contract.Function{Name: "set-subscription-price", Params: []value.Kind{uintT}, Handler: setSubscriptionPrice},
		contract.Function{Name: "subscribe-to-creator", Params: []value.Kind{principalT, uintT, strT}, Handler: subscribeToCreator},
		contract.Function{Name: "cancel-subscription", Params: []value.Kind{principalT}, Handler: cancelSubscription},
		contract.Function{Name: "get-subscription-status", Params: []value.Kind{principalT, principalT}, ReadOnly: true, Handler: getSubscriptionStatus},
		contract.Function{Name: "get-subscription-price", Params: []value.Kind{principalT}, ReadOnly: true, Handler: getSubscriptionPrice},
		// ratings
		contract.Function{Name: "rate-content", Params: []value.Kind{uintT, uintT}, Handler: rateContent},
		contract.Function{Name: "get-rating", Params: []value.Kind{uintT, principalT}, ReadOnly: true, Handler: getRating},
		contract.Function{Name: "get-content-rating", Params: []value.Kind{uintT}, ReadOnly: true, Handler: getContentRating},
		// playlists
		contract.Function{Name: "create-playlist", Params: []value.Kind{uintT, strT, boolT}, Handler: createPlaylist},
		contract.Function{Name: "add-to-playlist", Params: []value.Kind{uintT, uintT}, Handler: addToPlaylist},
		contract.Function{Name: "remove-from-playlist", Params: []value.Kind{uintT, uintT}, Handler: removeFromPlaylist},
		contract.Function{Name: "get-playlist", Params: []value.Kind{principalT, uintT}, ReadOnly: true, Handler: getPlaylist},
	)}
}

func (c *Contract) Name() string {
	return Name
}

// Init makes the deployer the platform owner
func (c *Contract) Init(ctx *contract.Context) error {
	if err := platformOwner.Set(ctx.Storage, ctx.Sender); err != nil {
		return err
	}
	return platformFee.Set(ctx.Storage, value.UInt(DefaultPlatformFee))
}

// argument accessors; kinds are already checked by the dispatcher

func argUInt(args []value.Value, i int) uint64 {
	return uint64(args[i].(value.UInt))
}

func argBool(args []value.Value, i int) bool {
	return bool(args[i].(value.Bool))
}

func argPrincipal(args []value.Value, i int) value.Principal {
	return args[i].(value.Principal)
}

func argString(args []value.Value, i int) string {
	str, _ := value.AsString(args[i])
	return str
}

func event(name string, fields value.Tuple) value.Tuple {
	fields["event"] = value.ASCII(name)
	return fields
}

func loadContent(ctx *contract.Context, id uint64) (Content, bool, error) {
	t, ok, err := contents.GetTuple(ctx.Storage, value.UInt(id))
	if err != nil || !ok {
		return Content{}, ok, err
	}
	c, err := contentFromTuple(t)
	if err != nil {
		return Content{}, false, fmt.Errorf("content %d: %w", id, err)
	}
	return c, true, nil
}

func storeContent(ctx *contract.Context, id uint64, c Content) error {
	return contents.Set(ctx.Storage, value.UInt(id), c.Tuple())
}

func owner(ctx *contract.Context) (value.Principal, error) {
	v, err := platformOwner.Get(ctx.Storage)
	if err != nil {
		return "", err
	}
	return value.AsPrincipal(v)
}

func fee(ctx *contract.Context) (uint64, error) {
	v, err := platformFee.Get(ctx.Storage)
	if err != nil {
		return 0, err
	}
	return value.AsUInt(v)
}
