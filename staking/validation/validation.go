// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ID identifies a validator. IDs are allocated sequentially starting at 1
// and are never reused; 0 is reserved as "does not exist".
type ID uint64

// Bytes returns the big-endian encoding used for storage positions.
func (id ID) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// Status is a single lifecycle flag of a validator.
type Status uint8

const (
	StatusCreated Status = iota + 1 // set once at registration
	StatusSynced                    // the validator node has caught up with the network
	StatusWithdrawn                 // the validator has deactivated; one-way
	StatusOffline                   // the validator node is unreachable
	StatusJailed                    // the validator has been penalized
)

// StatusSet holds the lifecycle flags of a validator as a set.
// The zero set means the validator does not exist.
type StatusSet []Status

// Has reports set membership.
func (s StatusSet) Has(status Status) bool {
	for _, st := range s {
		if st == status {
			return true
		}
	}
	return false
}

// Add inserts status into the set. Adding an already-present status is a no-op.
func (s *StatusSet) Add(status Status) {
	if !s.Has(status) {
		*s = append(*s, status)
	}
}

// Remove deletes status from the set if present.
func (s *StatusSet) Remove(status Status) {
	for i, st := range *s {
		if st == status {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return
		}
	}
}

// Validation is the stored state of a validator.
type Validation struct {
	Auth          common.Address // the address controlling the validator and providing its self-stake
	Status        StatusSet
	ReceivedStake *uint256.Int // self-stake plus all delegated stake
	CreatedAt     uint64
	DeactivatedAt uint64 // 0 until deactivated
}

// IsEmpty returns whether the entry can be treated as empty.
func (v *Validation) IsEmpty() bool {
	return len(v.Status) == 0
}

// IsActive returns whether the validator can receive stake. A validator is
// active while none of the Withdrawn/Offline/Jailed flags are set.
func (v *Validation) IsActive() bool {
	if v.IsEmpty() {
		return false
	}
	return !v.Status.Has(StatusWithdrawn) && !v.Status.Has(StatusOffline) && !v.Status.Has(StatusJailed)
}

// IsJailed returns whether the validator has been penalized.
func (v *Validation) IsJailed() bool {
	return v.Status.Has(StatusJailed)
}

// Weight returns the validator's effective weight: its received stake while
// active, zero otherwise.
func (v *Validation) Weight() *uint256.Int {
	if !v.IsActive() {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(v.ReceivedStake)
}
