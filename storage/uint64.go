// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// Uint64 is a wrapper for storage and retrieval of a single 64-bit counter
// or timestamp.
type Uint64 struct {
	store *Store
	pos   common.Hash
}

// NewUint64 creates a uint64 accessor at the given slot.
func NewUint64(store *Store, slot common.Hash) *Uint64 {
	return &Uint64{store: store, pos: slot}
}

// Get returns the stored value. An unset slot reads as zero.
func (u *Uint64) Get() (uint64, error) {
	raw, err := u.store.Get(u.pos)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Set stores the value. Zero erases the slot.
func (u *Uint64) Set(value uint64) {
	if value == 0 {
		u.store.Set(u.pos, nil)
		return
	}
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, value)
	u.store.Set(u.pos, raw)
}
