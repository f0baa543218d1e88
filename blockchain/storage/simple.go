package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.dedis.ch/streamchain/contract/value"
)

type SimpleKV struct {
	Internal map[string]interface{}
}

func NewSimpleKV() *SimpleKV {
	return &SimpleKV{Internal: make(map[string]interface{})}
}

func (skv *SimpleKV) Get(key string) (interface{}, error) {
	value, ok := skv.Internal[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

func (skv *SimpleKV) Put(key string, value interface{}) error {
	skv.Internal[key] = value
	return nil
}

func (skv *SimpleKV) Del(key string) error {
	_, ok := skv.Internal[key]
	if !ok {
		return ErrKeyNotFound
	}

	delete(skv.Internal, key)
	return nil
}

func (skv *SimpleKV) keys() []string {
	keys := make([]string, 0, len(skv.Internal))
	for key := range skv.Internal {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (skv *SimpleKV) For(f func(key string, value interface{}) error) error {
	for _, key := range skv.keys() {
		if err := f(key, skv.Internal[key]); err != nil {
			return err
		}
	}
	return nil
}

func (skv *SimpleKV) Copy() KV {
	ret := &SimpleKV{Internal: make(map[string]interface{}, len(skv.Internal))}
	for key, value := range skv.Internal {
		if c, ok := value.(Copier); ok {
			value = c.Copy()
		}
		ret.Internal[key] = value
	}
	return ret
}

func (skv *SimpleKV) Len() int {
	return len(skv.Internal)
}

func (skv *SimpleKV) String() string {
	parts := make([]string, 0, len(skv.Internal))
	for _, key := range skv.keys() {
		parts = append(parts, fmt.Sprintf("%s->%v", key, skv.Internal[key]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Hash is the hex sha256 over keys and encoded values, in key order.
// Contract values are encoded as literals so their kind is part of the hash.
func (skv *SimpleKV) Hash() string {
	h := sha256.New()
	for _, key := range skv.keys() {
		_, err := h.Write([]byte(key))
		if err != nil {
			panic(err)
		}

		bytes, err := encodeValue(skv.Internal[key])
		if err != nil {
			panic(err)
		}
		_, err = h.Write(bytes)
		if err != nil {
			panic(err)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func encodeValue(v interface{}) ([]byte, error) {
	if lit, ok := v.(value.Value); ok {
		return []byte(lit.String()), nil
	}
	return json.Marshal(v)
}
