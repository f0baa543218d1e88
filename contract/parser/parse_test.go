package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/contract/value"
)

// Test parsing scalar literals
func Test_Parser_Value(t *testing.T) {
	cases := map[string]value.Value{
		"u0":                     value.UInt(0),
		"u42":                    value.UInt(42),
		"-7":                     value.Int(-7),
		"12":                     value.Int(12),
		"true":                   value.Bool(true),
		"false":                  value.Bool(false),
		"none":                   value.None(),
		`"Hello World"`:          value.ASCII("Hello World"),
		`u"Lausanne \"EPFL\""`:   value.UTF8(`Lausanne "EPFL"`),
		"'0x5B38Da6a701c568545dCfcB03FcB875f56beddC4": value.Principal("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
		"'0x5B38Da6a701c568545dCfcB03FcB875f56beddC4.streaming_platform": value.Principal(
			"0x5B38Da6a701c568545dCfcB03FcB875f56beddC4.streaming_platform"),
	}
	for plain, expected := range cases {
		parsed, err := ParseValue(plain)
		require.NoError(t, err, plain)
		require.Equal(t, expected, parsed, plain)
	}
}

// Test parsing composite literals
func Test_Parser_Composite(t *testing.T) {
	parsed, err := ParseValue(`{is-active: true, expiry: u20}`)
	require.NoError(t, err)
	require.Equal(t, value.Tuple{"is-active": value.Bool(true), "expiry": value.UInt(20)}, parsed)

	parsed, err = ParseValue(`(list u1 u2 u3)`)
	require.NoError(t, err)
	require.Equal(t, value.List{value.UInt(1), value.UInt(2), value.UInt(3)}, parsed)

	parsed, err = ParseValue(`(some (ok u1))`)
	require.NoError(t, err)
	require.Equal(t, value.Some(value.Ok(value.UInt(1))), parsed)

	parsed, err = ParseValue(`(err u100)`)
	require.NoError(t, err)
	require.Equal(t, value.ErrCode(100), parsed)
}

// Literal forms printed by value.Value parse back to the same value
func Test_Parser_RoundTrip(t *testing.T) {
	values := []value.Value{
		value.Ok(value.Bool(true)),
		value.ErrCode(110),
		value.Some(value.Tuple{
			"title":    value.UTF8("Song"),
			"creator":  value.Principal("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
			"contents": value.List{value.UInt(1)},
			"price":    value.UInt(10),
		}),
		value.List{},
	}
	for _, v := range values {
		parsed, err := ParseValue(v.String())
		require.NoError(t, err, v.String())
		require.True(t, value.Equal(v, parsed), v.String())
	}
}

// Any spelling of an address parses to the checksummed principal
func Test_Parser_PrincipalCanonical(t *testing.T) {
	for _, plain := range []string{
		"'0x5b38da6a701c568545dcfcb03fcb875f56beddc4",
		"'0X5B38DA6A701C568545DCFCB03FCB875F56BEDDC4",
		"'5b38da6a701c568545dcfcb03fcb875f56beddc4",
	} {
		parsed, err := ParseValue(plain)
		require.NoError(t, err, plain)
		require.Equal(t, value.Principal("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"), parsed, plain)
	}

	parsed, err := ParseValue("'0x5b38da6a701c568545dcfcb03fcb875f56beddc4.streaming_platform")
	require.NoError(t, err)
	require.Equal(t, value.Principal("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4.streaming_platform"), parsed)

	_, err = ParseValue("'zz")
	require.Error(t, err)
	_, err = ParseValue("'0x5B38Da6a701c568545d")
	require.Error(t, err)
}

func Test_Parser_Call(t *testing.T) {
	call, err := ParseCall(`(publish-content u1 u"Title" u"Desc" u100 false u"music" true)`)
	require.NoError(t, err)
	require.Equal(t, "publish-content", call.Function)
	require.Equal(t, []value.Value{
		value.UInt(1), value.UTF8("Title"), value.UTF8("Desc"), value.UInt(100),
		value.Bool(false), value.UTF8("music"), value.Bool(true),
	}, call.Args)
	require.Equal(t, `(publish-content u1 u"Title" u"Desc" u100 false u"music" true)`, call.String())
}

func Test_Parser_Program(t *testing.T) {
	calls, err := ParseProgram(`
		;; admin
		(set-platform-fee u10)
		(create-playlist u1 u"Favorites" true)
	`)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.Equal(t, "set-platform-fee", calls[0].Function)
	require.Equal(t, "create-playlist", calls[1].Function)
}

func Test_Parser_Errors(t *testing.T) {
	_, err := ParseValue(`(publish-content u1)`)
	require.Error(t, err)

	_, err = ParseValue(`(some u1 u2)`)
	require.Error(t, err)

	_, err = ParseValue(`{a: u1, a: u2}`)
	require.Error(t, err)

	_, err = ParseCall(`(a) (b)`)
	require.Error(t, err)

	_, err = ParseValue(`u99999999999999999999999`)
	require.Error(t, err)
}
