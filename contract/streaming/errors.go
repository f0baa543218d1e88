package streaming

import "go.dedis.ch/streamchain/contract/value"

// Error codes returned as (err uN)
const (
	ErrNotAuthorized       uint64 = 100
	ErrContentExists       uint64 = 101
	ErrContentNotFound     uint64 = 102
	ErrInsufficientBalance uint64 = 103
	ErrInvalidInput        uint64 = 104
	ErrAlreadyPurchased    uint64 = 105
	ErrAlreadySubscribed   uint64 = 106
	ErrNotSubscribed       uint64 = 107
	ErrInvalidRating       uint64 = 108
	ErrPlaylistNotFound    uint64 = 109
	ErrAlreadyRated        uint64 = 110
	ErrPlaylistExists      uint64 = 111
	ErrPlaylistFull        uint64 = 112
	ErrSelfAction          uint64 = 114
)

var errorNames = map[uint64]string{
	ErrNotAuthorized:       "ERR-NOT-AUTHORIZED",
	ErrContentExists:       "ERR-CONTENT-EXISTS",
	ErrContentNotFound:     "ERR-CONTENT-NOT-FOUND",
	ErrInsufficientBalance: "ERR-INSUFFICIENT-BALANCE",
	ErrInvalidInput:        "ERR-INVALID-INPUT",
	ErrAlreadyPurchased:    "ERR-ALREADY-PURCHASED",
	ErrAlreadySubscribed:   "ERR-ALREADY-SUBSCRIBED",
	ErrNotSubscribed:       "ERR-NOT-SUBSCRIBED",
	ErrInvalidRating:       "ERR-INVALID-RATING",
	ErrPlaylistNotFound:    "ERR-PLAYLIST-NOT-FOUND",
	ErrAlreadyRated:        "ERR-ALREADY-RATED",
	ErrPlaylistExists:      "ERR-PLAYLIST-EXISTS",
	ErrPlaylistFull:        "ERR-PLAYLIST-FULL",
	ErrSelfAction:          "ERR-SELF-ACTION",
}

// ErrorName maps a code to its constant name, or "" if unknown
func ErrorName(code uint64) string {
	return errorNames[code]
}

// Describe renders a response with the error name appended for failures
func Describe(res value.Value) string {
	r, ok := res.(value.Response)
	if !ok || r.Ok {
		return res.String()
	}
	code, ok := r.Inner.(value.UInt)
	if !ok {
		return res.String()
	}
	if name := ErrorName(uint64(code)); name != "" {
		return res.String() + " " + name
	}
	return res.String()
}

func fail(code uint64) (value.Value, error) {
	return value.ErrCode(code), nil
}

func okTrue() (value.Value, error) {
	return value.Ok(value.Bool(true)), nil
}
