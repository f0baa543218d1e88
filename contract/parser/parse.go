package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"       // lib for building the parser
	"github.com/alecthomas/participle/v2/lexer" // lib for building the lexer
	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/contract/value"
)

// This module parses value literals and call expressions from plain text.
//
// Literals:   u10  -3  true  none  "ascii"  u"utf8"  'ADDR  'ADDR.contract
//             {key: value, ...}  (list a b)  (some v)  (ok v)  (err v)
// Call:       (publish-content u1 u"title" u"desc" u10 false u"music" false)
// Comments start with ";;" and run to the end of the line.

// Lexer for literals. Order matters: UTF8 before String, UInt before Ident.
// Rules with a lowercase name are elided.
var ExprLexer = lexer.MustSimple([]lexer.Rule{
	{"comment", `;;[^\n]*`, nil},
	{"UTF8", `u"(\\.|[^"\\])*"`, nil},
	{"String", `"(\\.|[^"\\])*"`, nil},
	{"UInt", `u\d+\b`, nil},
	{"Int", `-?\d+`, nil},
	{"Principal", `'[0-9A-Za-z]+(\.[a-zA-Z][a-zA-Z0-9_\-]*)?`, nil},
	{"Ident", `[a-zA-Z][a-zA-Z0-9_\-?!]*`, nil},
	{"Punct", `[(){}:,]`, nil},
	{"whitespace", `\s+`, nil},
})

// Expr is a single literal or a parenthesized form
type Expr struct {
	UInt      *string    `  @UInt`
	Int       *string    `| @Int`
	UTF8      *string    `| @UTF8`
	String    *string    `| @String`
	Principal *string    `| @Principal`
	Bool      *string    `| @( "true" | "false" )`
	None      bool       `| @"none"`
	Tuple     *TupleExpr `| "{" @@ "}"`
	Form      *Form      `| "(" @@ ")"`
}

type TupleExpr struct {
	Entries []*Entry `( @@ ( "," @@ )* )?`
}

type Entry struct {
	Key   string `@Ident ":"`
	Value *Expr  `@@`
}

// Form is "(head args...)": a list/some/ok/err constructor or a call
type Form struct {
	Head string  `@Ident`
	Args []*Expr `@@*`
}

// Program is a sequence of forms, one call per form
type Program struct {
	Forms []*Form `( "(" @@ ")" )*`
}

var exprParser = participle.MustBuild(&Expr{},
	participle.Lexer(ExprLexer),
	participle.Unquote("String"),
)

var programParser = participle.MustBuild(&Program{},
	participle.Lexer(ExprLexer),
	participle.Unquote("String"),
)

// Call is a parsed function invocation
type Call struct {
	Function string
	Args     []value.Value
}

func (c Call) String() string {
	out := "(" + c.Function
	for _, a := range c.Args {
		out += " " + a.String()
	}
	return out + ")"
}

// ParseValue parses a single literal
func ParseValue(plain string) (value.Value, error) {
	ast := &Expr{}
	if err := exprParser.ParseString("", plain, ast); err != nil {
		return nil, fmt.Errorf("parse value %q: %w", plain, err)
	}
	return ast.ToValue()
}

// ParseValues parses each literal in order
func ParseValues(plain ...string) ([]value.Value, error) {
	ret := make([]value.Value, 0, len(plain))
	for _, p := range plain {
		v, err := ParseValue(p)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// ParseCall parses one call expression
func ParseCall(plain string) (Call, error) {
	calls, err := ParseProgram(plain)
	if err != nil {
		return Call{}, err
	}
	if len(calls) != 1 {
		return Call{}, fmt.Errorf("expected exactly one call, got %d", len(calls))
	}
	return calls[0], nil
}

// ParseProgram parses a sequence of call expressions
func ParseProgram(plain string) ([]Call, error) {
	ast := &Program{}
	if err := programParser.ParseString("", plain, ast); err != nil {
		return nil, fmt.Errorf("parse program: %w", err)
	}
	calls := make([]Call, 0, len(ast.Forms))
	for _, f := range ast.Forms {
		args, err := exprsToValues(f.Args)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", f.Head, err)
		}
		calls = append(calls, Call{Function: f.Head, Args: args})
	}
	return calls, nil
}

// ToValue converts the parsed literal into a value.Value
func (e *Expr) ToValue() (value.Value, error) {
	switch {
	case e.UInt != nil:
		u, err := strconv.ParseUint((*e.UInt)[1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad uint %s: %w", *e.UInt, err)
		}
		return value.UInt(u), nil
	case e.Int != nil:
		i, err := strconv.ParseInt(*e.Int, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int %s: %w", *e.Int, err)
		}
		return value.Int(i), nil
	case e.UTF8 != nil:
		s, err := strconv.Unquote((*e.UTF8)[1:])
		if err != nil {
			return nil, fmt.Errorf("bad utf8 string %s: %w", *e.UTF8, err)
		}
		return value.UTF8(s), nil
	case e.String != nil:
		return value.ASCII(*e.String), nil
	case e.Principal != nil:
		p, err := account.CanonicalPrincipal((*e.Principal)[1:])
		if err != nil {
			return nil, fmt.Errorf("bad principal %s: %w", *e.Principal, err)
		}
		return value.Principal(p), nil
	case e.Bool != nil:
		return value.Bool(*e.Bool == "true"), nil
	case e.None:
		return value.None(), nil
	case e.Tuple != nil:
		return e.Tuple.toValue()
	case e.Form != nil:
		return e.Form.toValue()
	}
	return nil, fmt.Errorf("empty expression")
}

func (t *TupleExpr) toValue() (value.Value, error) {
	tup := value.Tuple{}
	for _, entry := range t.Entries {
		if _, dup := tup[entry.Key]; dup {
			return nil, fmt.Errorf("duplicate tuple key %s", entry.Key)
		}
		v, err := entry.Value.ToValue()
		if err != nil {
			return nil, err
		}
		tup[entry.Key] = v
	}
	return tup, nil
}

func (f *Form) toValue() (value.Value, error) {
	args, err := exprsToValues(f.Args)
	if err != nil {
		return nil, err
	}
	one := func() (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s takes exactly one argument, got %d", f.Head, len(args))
		}
		return args[0], nil
	}
	switch f.Head {
	case "list":
		return value.List(args), nil
	case "some":
		v, err := one()
		if err != nil {
			return nil, err
		}
		return value.Some(v), nil
	case "ok":
		v, err := one()
		if err != nil {
			return nil, err
		}
		return value.Ok(v), nil
	case "err":
		v, err := one()
		if err != nil {
			return nil, err
		}
		return value.Err(v), nil
	}
	return nil, fmt.Errorf("(%s ...) is a call, not a value", f.Head)
}

func exprsToValues(exprs []*Expr) ([]value.Value, error) {
	ret := make([]value.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := e.ToValue()
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}
