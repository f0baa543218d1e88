package contract

import (
	"errors"
	"fmt"

	"go.dedis.ch/streamchain/blockchain/storage"
	"go.dedis.ch/streamchain/contract/value"
)

// Var is a named data-var in contract storage
type Var struct {
	Name    string
	Default value.Value
}

func (v Var) key() string {
	return "var:" + v.Name
}

// Get returns the stored value, or Default when unset
func (v Var) Get(kv storage.KV) (value.Value, error) {
	raw, err := kv.Get(v.key())
	if errors.Is(err, storage.ErrKeyNotFound) {
		return v.Default, nil
	}
	if err != nil {
		return nil, err
	}
	return asValue(raw)
}

func (v Var) Set(kv storage.KV, val value.Value) error {
	return kv.Put(v.key(), val)
}

// Map is a named data-map in contract storage, keyed by a value's literal form
type Map struct {
	Name string
}

func (m Map) key(k value.Value) string {
	return "map:" + m.Name + ":" + k.String()
}

// Get returns the entry and whether it exists
func (m Map) Get(kv storage.KV, k value.Value) (value.Value, bool, error) {
	raw, err := kv.Get(m.key(k))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := asValue(raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (m Map) Set(kv storage.KV, k, v value.Value) error {
	return kv.Put(m.key(k), v)
}

// Insert stores v only if k is absent and reports whether it did
func (m Map) Insert(kv storage.KV, k, v value.Value) (bool, error) {
	_, exists, err := m.Get(kv, k)
	if err != nil || exists {
		return false, err
	}
	return true, m.Set(kv, k, v)
}

// GetTuple is Get for maps holding tuples
func (m Map) GetTuple(kv storage.KV, k value.Value) (value.Tuple, bool, error) {
	v, ok, err := m.Get(kv, k)
	if err != nil || !ok {
		return nil, ok, err
	}
	t, err := value.AsTuple(v)
	if err != nil {
		return nil, false, fmt.Errorf("map %s: %w", m.Name, err)
	}
	return t, true, nil
}

func asValue(raw interface{}) (value.Value, error) {
	v, ok := raw.(value.Value)
	if !ok {
		return nil, fmt.Errorf("corrupted contract storage: %v is not a value", raw)
	}
	return v, nil
}
