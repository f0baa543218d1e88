package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the dynamic type of a Value
type Kind int

const (
	KindUInt Kind = iota
	KindInt
	KindBool
	KindPrincipal
	KindASCII
	KindUTF8
	KindTuple
	KindOptional
	KindResponse
	KindList
)

var kindNames = map[Kind]string{
	KindUInt:      "uint",
	KindInt:       "int",
	KindBool:      "bool",
	KindPrincipal: "principal",
	KindASCII:     "string-ascii",
	KindUTF8:      "string-utf8",
	KindTuple:     "tuple",
	KindOptional:  "optional",
	KindResponse:  "response",
	KindList:      "list",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return name
}

// Value is a typed contract value. String returns its literal form, which
// the parser accepts back.
type Value interface {
	Kind() Kind
	String() string
}

type UInt uint64

func (UInt) Kind() Kind { return KindUInt }

func (u UInt) String() string { return "u" + strconv.FormatUint(uint64(u), 10) }

type Int int64

func (Int) Kind() Kind { return KindInt }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

type Bool bool

func (Bool) Kind() Kind { return KindBool }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Principal is an account address, or "<address>.<name>" for a contract
type Principal string

func (Principal) Kind() Kind { return KindPrincipal }

func (p Principal) String() string { return "'" + string(p) }

type ASCII string

func (ASCII) Kind() Kind { return KindASCII }

func (s ASCII) String() string { return strconv.Quote(string(s)) }

type UTF8 string

func (UTF8) Kind() Kind { return KindUTF8 }

func (s UTF8) String() string { return "u" + strconv.Quote(string(s)) }

// Tuple is a record of named fields, printed with sorted keys
type Tuple map[string]Value

func (Tuple) Kind() Kind { return KindTuple }

func (t Tuple) String() string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+t[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Optional with a nil Inner is none
type Optional struct {
	Inner Value
}

func (Optional) Kind() Kind { return KindOptional }

func (o Optional) String() string {
	if o.Inner == nil {
		return "none"
	}
	return "(some " + o.Inner.String() + ")"
}

// IsSome reports whether the optional holds a value
func (o Optional) IsSome() bool {
	return o.Inner != nil
}

type Response struct {
	Ok    bool
	Inner Value
}

func (Response) Kind() Kind { return KindResponse }

func (r Response) String() string {
	if r.Ok {
		return "(ok " + r.Inner.String() + ")"
	}
	return "(err " + r.Inner.String() + ")"
}

type List []Value

func (List) Kind() Kind { return KindList }

func (l List) String() string {
	if len(l) == 0 {
		return "(list)"
	}
	parts := make([]string, 0, len(l))
	for _, v := range l {
		parts = append(parts, v.String())
	}
	return "(list " + strings.Join(parts, " ") + ")"
}

func Ok(v Value) Response { return Response{Ok: true, Inner: v} }

func Err(v Value) Response { return Response{Ok: false, Inner: v} }

// ErrCode is the usual (err uN) failure
func ErrCode(code uint64) Response { return Err(UInt(code)) }

func Some(v Value) Optional { return Optional{Inner: v} }

func None() Optional { return Optional{} }

// Equal compares two values by their literal form
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
}
