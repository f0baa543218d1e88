package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/streamchain/contract/value"
)

type counter struct {
	N int
}

func (c *counter) Copy() interface{} {
	return &counter{N: c.N}
}

func TestSimpleKV(t *testing.T) {
	kv := NewSimpleKV()
	_, err := kv.Get("a")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Put("a", 1))
	v, err := kv.Get("a")
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, 1, kv.Len())

	require.NoError(t, kv.Del("a"))
	require.ErrorIs(t, kv.Del("a"), ErrKeyNotFound)
}

func TestSimpleKVHashIsOrderIndependent(t *testing.T) {
	kv1 := NewSimpleKV()
	kv2 := NewSimpleKV()
	for _, k := range []string{"x", "y", "z"} {
		require.NoError(t, kv1.Put(k, k+"v"))
	}
	for _, k := range []string{"z", "x", "y"} {
		require.NoError(t, kv2.Put(k, k+"v"))
	}
	require.Equal(t, kv1.Hash(), kv2.Hash())

	require.NoError(t, kv2.Put("x", "changed"))
	require.NotEqual(t, kv1.Hash(), kv2.Hash())
}

func TestSimpleKVHashKeepsValueKind(t *testing.T) {
	ascii := NewSimpleKV()
	utf8 := NewSimpleKV()
	require.NoError(t, ascii.Put("var:title", value.ASCII("x")))
	require.NoError(t, utf8.Put("var:title", value.UTF8("x")))
	require.NotEqual(t, ascii.Hash(), utf8.Hash())

	unsigned := NewSimpleKV()
	require.NoError(t, unsigned.Put("var:n", value.UInt(1)))
	signed := NewSimpleKV()
	require.NoError(t, signed.Put("var:n", value.Int(1)))
	require.NotEqual(t, unsigned.Hash(), signed.Hash())
}

func TestSimpleKVCopyIsDeep(t *testing.T) {
	kv := NewSimpleKV()
	require.NoError(t, kv.Put("c", &counter{N: 1}))
	require.NoError(t, kv.Put("s", "shared"))

	cp := kv.Copy()
	v, err := cp.Get("c")
	require.NoError(t, err)
	v.(*counter).N = 5
	require.NoError(t, cp.Put("new", true))

	orig, err := kv.Get("c")
	require.NoError(t, err)
	require.Equal(t, 1, orig.(*counter).N)
	require.Equal(t, 2, kv.Len())
	require.Equal(t, 3, cp.Len())
}

func TestSimpleKVFor(t *testing.T) {
	kv := NewSimpleKV()
	require.NoError(t, kv.Put("b", 2))
	require.NoError(t, kv.Put("a", 1))

	var keys []string
	require.NoError(t, kv.For(func(key string, value interface{}) error {
		keys = append(keys, key)
		return nil
	}))
	require.Equal(t, []string{"a", "b"}, keys)

	stop := errors.New("stop")
	err := kv.For(func(key string, value interface{}) error { return stop })
	require.ErrorIs(t, err, stop)
}
