// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Key is implemented by types usable as mapping keys.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction over a Store, similar to a
// mapping in Solidity. Values are RLP encoded; entry positions are derived
// from the key and the mapping's base slot.
type Mapping[K Key, V any] struct {
	store   *Store
	basePos common.Hash
}

// NewMapping creates a mapping rooted at the given base slot.
func NewMapping[K Key, V any](store *Store, basePos common.Hash) *Mapping[K, V] {
	return &Mapping[K, V]{store: store, basePos: basePos}
}

// Get retrieves the value for key. A missing entry decodes to the zero
// value; pointer-typed values are allocated so callers always receive a
// usable, possibly-empty value.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := m.store.Get(m.position(key))
	if err != nil {
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "failed to decode mapping entry")
	}
	return value, nil
}

// Has returns whether a non-empty entry exists for key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.store.Get(m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Set stores the value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "failed to encode mapping entry")
	}
	m.store.Set(m.position(key), raw)
	return nil
}

// Delete fully erases the entry for key.
func (m *Mapping[K, V]) Delete(key K) {
	m.store.Set(m.position(key), nil)
}

func (m *Mapping[K, V]) position(key K) common.Hash {
	return Blake2b(key.Bytes(), m.basePos.Bytes())
}
