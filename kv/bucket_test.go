// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

type memStore map[string]string

func (m memStore) Get(key []byte) ([]byte, error) {
	v, ok := m[string(key)]
	if !ok {
		return nil, errNotFound
	}
	return []byte(v), nil
}

func (m memStore) Has(key []byte) (bool, error) {
	_, ok := m[string(key)]
	return ok, nil
}

func (m memStore) IsNotFound(err error) bool { return err == errNotFound }

func (m memStore) Put(key, value []byte) error {
	m[string(key)] = string(value)
	return nil
}

func (m memStore) Delete(key []byte) error {
	delete(m, string(key))
	return nil
}

func (m memStore) NewBatch() Batch { return &memBatch{store: m} }

type memBatch struct {
	store memStore
	ops   []func()
}

func (b *memBatch) Put(key, value []byte) error {
	k, v := string(key), string(value)
	b.ops = append(b.ops, func() { b.store[k] = v })
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	k := string(key)
	b.ops = append(b.ops, func() { delete(b.store, k) })
	return nil
}

func (b *memBatch) NewBatch() Batch { return &memBatch{store: b.store} }
func (b *memBatch) Len() int        { return len(b.ops) }

func (b *memBatch) Write() error {
	for _, op := range b.ops {
		op()
	}
	return nil
}

func TestBucket(t *testing.T) {
	src := memStore{}
	a := Bucket("a:").NewStore(src)
	b := Bucket("b:").NewStore(src)

	require.NoError(t, a.Put([]byte("k"), []byte("va")))
	require.NoError(t, b.Put([]byte("k"), []byte("vb")))

	v, err := a.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("va"), v)
	v, err = b.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("vb"), v)

	// raw keys carry the prefix
	assert.Equal(t, "va", src["a:k"])

	_, err = a.Get([]byte("missing"))
	assert.True(t, a.IsNotFound(err))

	require.NoError(t, a.Delete([]byte("k")))
	has, err := a.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBucketBatch(t *testing.T) {
	src := memStore{}
	bucket := Bucket("x:").NewStore(src)

	batch := bucket.NewBatch()
	require.NoError(t, batch.Put([]byte("k1"), []byte("1")))
	require.NoError(t, batch.Put([]byte("k2"), []byte("2")))
	assert.Equal(t, 2, batch.Len())
	require.NoError(t, batch.Write())

	assert.Equal(t, "1", src["x:k1"])
	assert.Equal(t, "2", src["x:k2"])
}
