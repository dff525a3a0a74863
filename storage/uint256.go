// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Uint256 is a wrapper for storage and retrieval of a single 256-bit
// unsigned integer, similar to storing a uint256 in a smart contract.
type Uint256 struct {
	store *Store
	pos   common.Hash
}

// NewUint256 creates a uint256 accessor at the given slot.
func NewUint256(store *Store, slot common.Hash) *Uint256 {
	return &Uint256{store: store, pos: slot}
}

// Get returns the stored value. An unset slot reads as zero.
func (u *Uint256) Get() (*uint256.Int, error) {
	raw, err := u.store.Get(u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(raw), nil
}

// Set stores the value. Zero erases the slot.
func (u *Uint256) Set(value *uint256.Int) {
	if value.IsZero() {
		u.store.Set(u.pos, nil)
		return
	}
	u.store.Set(u.pos, value.Bytes())
}
