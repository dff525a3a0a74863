// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

// EventKind tags what happened.
type EventKind string

const (
	EventValidatorCreated  EventKind = "validator-created"
	EventStaked            EventKind = "staked"
	EventUnstaked          EventKind = "unstaked"
	EventWithdrawn         EventKind = "withdrawn"
	EventSlashed           EventKind = "slashed"
	EventRewardClaimed     EventKind = "reward-claimed"
	EventRewardRateChanged EventKind = "reward-rate-changed"
	EventJailed            EventKind = "jailed"
	EventStatusChanged     EventKind = "status-changed"
	EventDeactivated       EventKind = "deactivated"
)

// Event is a single ledger state change, recorded after the operation that
// produced it committed.
type Event struct {
	Kind      EventKind
	Validator validation.ID
	Staker    common.Address
	Amount    *uint256.Int
	Time      uint64
}
