package value

import (
	"errors"
	"fmt"
)

// ErrType is returned when a value does not have the expected kind
var ErrType = errors.New("type mismatch")

func typeError(want Kind, got Value) error {
	if got == nil {
		return fmt.Errorf("%w: want %s, got nothing", ErrType, want)
	}
	return fmt.Errorf("%w: want %s, got %s %s", ErrType, want, got.Kind(), got)
}

func AsUInt(v Value) (uint64, error) {
	u, ok := v.(UInt)
	if !ok {
		return 0, typeError(KindUInt, v)
	}
	return uint64(u), nil
}

func AsBool(v Value) (bool, error) {
	b, ok := v.(Bool)
	if !ok {
		return false, typeError(KindBool, v)
	}
	return bool(b), nil
}

func AsPrincipal(v Value) (Principal, error) {
	p, ok := v.(Principal)
	if !ok {
		return "", typeError(KindPrincipal, v)
	}
	return p, nil
}

// AsString accepts both ascii and utf8 strings
func AsString(v Value) (string, error) {
	switch s := v.(type) {
	case ASCII:
		return string(s), nil
	case UTF8:
		return string(s), nil
	}
	return "", typeError(KindUTF8, v)
}

func AsTuple(v Value) (Tuple, error) {
	t, ok := v.(Tuple)
	if !ok {
		return nil, typeError(KindTuple, v)
	}
	return t, nil
}

func AsList(v Value) (List, error) {
	l, ok := v.(List)
	if !ok {
		return nil, typeError(KindList, v)
	}
	return l, nil
}

func AsOptional(v Value) (Optional, error) {
	o, ok := v.(Optional)
	if !ok {
		return Optional{}, typeError(KindOptional, v)
	}
	return o, nil
}

func AsResponse(v Value) (Response, error) {
	r, ok := v.(Response)
	if !ok {
		return Response{}, typeError(KindResponse, v)
	}
	return r, nil
}
