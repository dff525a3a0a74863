// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
)

// Params holds the protocol constants of the staking ledger. They are fixed at
// construction time; SetRewardRate is the only knob that moves afterwards.
type Params struct {
	// MinSelfStake is the lowest self-stake a validator may hold while staying
	// active. Dropping below it is only possible by unstaking to exactly zero.
	MinSelfStake *uint256.Int

	// MaxDelegatedRatio caps received delegations at
	// selfStake * MaxDelegatedRatio / Precision. Zero disables delegation.
	MaxDelegatedRatio *uint256.Int

	// UnstakePeriod is the lock, in seconds, between an unstake request and
	// the moment its amount becomes withdrawable.
	UnstakePeriod uint64

	// RewardReserve is the account reward claims are funded from. Claims
	// fail when its transferable balance cannot cover the payout.
	RewardReserve common.Address
}

// DefaultParams returns the production parameter set.
func DefaultParams() *Params {
	return &Params{
		MinSelfStake:      new(uint256.Int).Mul(uint256.NewInt(3_175_000), stakes.Precision),
		MaxDelegatedRatio: new(uint256.Int).Mul(uint256.NewInt(16), stakes.Precision),
		UnstakePeriod:     7 * 24 * 60 * 60,
	}
}
