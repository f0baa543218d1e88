package contract

import (
	"fmt"
	"sort"

	"go.dedis.ch/streamchain/blockchain/account"
	"go.dedis.ch/streamchain/contract/value"
)

// Handler implements one contract function
type Handler func(ctx *Context, args []value.Value) (value.Value, error)

// Function describes a public or read-only function
type Function struct {
	Name     string
	Params   []value.Kind
	ReadOnly bool
	Handler  Handler
}

// Dispatcher routes calls by function name, checking arity and argument
// kinds. ascii and utf8 strings are interchangeable. Principal arguments
// reach handlers in their canonical form, so handlers may compare them.
type Dispatcher struct {
	functions map[string]Function
}

func NewDispatcher(functions ...Function) *Dispatcher {
	d := &Dispatcher{functions: make(map[string]Function, len(functions))}
	for _, f := range functions {
		if _, dup := d.functions[f.Name]; dup {
			panic(fmt.Errorf("function %s defined twice", f.Name))
		}
		d.functions[f.Name] = f
	}
	return d
}

func (d *Dispatcher) Call(ctx *Context, function string, args []value.Value) (value.Value, error) {
	f, ok := d.functions[function]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
	}
	if ctx.ReadOnly && !f.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, function)
	}
	if len(args) != len(f.Params) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d",
			ErrBadArguments, function, len(f.Params), len(args))
	}
	checked := make([]value.Value, len(args))
	for i, want := range f.Params {
		if !kindMatches(want, args[i]) {
			return nil, fmt.Errorf("%w: %s argument %d: want %s, got %s",
				ErrBadArguments, function, i, want, args[i])
		}
		checked[i] = args[i]
		if p, ok := args[i].(value.Principal); ok {
			canonical, err := account.CanonicalPrincipal(string(p))
			if err != nil {
				return nil, fmt.Errorf("%w: %s argument %d: %v", ErrBadArguments, function, i, err)
			}
			checked[i] = value.Principal(canonical)
		}
	}
	return f.Handler(ctx, checked)
}

func (d *Dispatcher) IsReadOnly(function string) bool {
	f, ok := d.functions[function]
	return ok && f.ReadOnly
}

func (d *Dispatcher) Functions() []string {
	names := make([]string, 0, len(d.functions))
	for name := range d.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func kindMatches(want value.Kind, v value.Value) bool {
	if v == nil {
		return false
	}
	got := v.Kind()
	if want == value.KindUTF8 || want == value.KindASCII {
		return got == value.KindUTF8 || got == value.KindASCII
	}
	return got == want
}
