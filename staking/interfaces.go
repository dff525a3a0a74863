// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

// TokenPool moves staked assets between stakers and the pool that escrows
// them. Implementations must be atomic per call; the ledger orders calls so
// that a failure leaves nothing half-moved.
type TokenPool interface {
	// BalanceAvailable reports how much the owner can currently transfer in.
	BalanceAvailable(owner common.Address) (*uint256.Int, error)

	// TransferIn pulls amount from the owner into the pool.
	TransferIn(owner common.Address, amount *uint256.Int) error

	// TransferOut pushes amount from the pool back to the recipient.
	TransferOut(recipient common.Address, amount *uint256.Int) error
}

// AccessControl answers who may call the administrative operations.
type AccessControl interface {
	CurrentOwner() (common.Address, error)
}

// WeightSubscriber is notified after a commit whenever a validator's voting
// weight changed. Notifications never fire for reverted operations.
type WeightSubscriber interface {
	ValidatorWeightChanged(id validation.ID, weight *uint256.Int)
}

// Recorder persists staking events for later querying. A nil recorder
// disables history.
type Recorder interface {
	Record(ev *Event) error
}
