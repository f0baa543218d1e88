package storage

import (
	"errors"
)

var ErrKeyNotFound error = errors.New("key not found")

type KV interface {
	// methods as a basic key-value mapping
	Get(key string) (interface{}, error)
	Put(key string, value interface{}) error
	Del(key string) error
	// For visits every pair in key order, stopping at the first error
	For(f func(key string, value interface{}) error) error
	// Copy returns an independent KV; values implementing Copier are deep-copied
	Copy() KV
	Len() int
	Hash() string
}

// Copier is implemented by mutable values stored in a KV
type Copier interface {
	Copy() interface{}
}

type KVFactory func() KV

func CreateSimpleKV() KV {
	return NewSimpleKV()
}
