// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

// Validator is the JSON shape of a validator entry. Amounts are decimal
// strings to survive javascript number precision.
type Validator struct {
	ID            uint64         `json:"id"`
	Auth          common.Address `json:"auth"`
	Active        bool           `json:"active"`
	Jailed        bool           `json:"jailed"`
	ReceivedStake string         `json:"receivedStake"`
	Weight        string         `json:"weight"`
	CreatedAt     uint64         `json:"createdAt"`
	DeactivatedAt uint64         `json:"deactivatedAt"`
}

func convertValidator(id validation.ID, v *validation.Validation) *Validator {
	return &Validator{
		ID:            uint64(id),
		Auth:          v.Auth,
		Active:        v.IsActive(),
		Jailed:        v.IsJailed(),
		ReceivedStake: v.ReceivedStake.Dec(),
		Weight:        v.Weight().Dec(),
		CreatedAt:     v.CreatedAt,
		DeactivatedAt: v.DeactivatedAt,
	}
}

// Stats is the JSON shape of the engine-wide totals.
type Stats struct {
	TotalStake   string `json:"totalStake"`
	TotalSlashed string `json:"totalSlashed"`
	RewardRate   string `json:"rewardRate"`
	LastID       uint64 `json:"lastValidatorId"`
}

// CreateValidatorRequest is the body of POST /stakers.
type CreateValidatorRequest struct {
	Auth  common.Address `json:"auth"`
	Stake string         `json:"stake"`
}

// StakeRequest is the body of POST /stakers/{id}/stake.
type StakeRequest struct {
	Staker common.Address `json:"staker"`
	Amount string         `json:"amount"`
}

// UnstakeRequest is the body of POST /stakers/{id}/unstake.
type UnstakeRequest struct {
	Staker    common.Address `json:"staker"`
	RequestID uint64         `json:"requestId"`
	Amount    string         `json:"amount"`
}

// WithdrawRequest is the body of POST /stakers/{id}/withdraw.
type WithdrawRequest struct {
	Staker    common.Address `json:"staker"`
	RequestID uint64         `json:"requestId"`
}

// ClaimRequest is the body of POST /stakers/{id}/rewards/claim.
type ClaimRequest struct {
	Staker common.Address `json:"staker"`
}

// AdminRequest carries the caller of an administrative operation.
type AdminRequest struct {
	Caller common.Address `json:"caller"`
	Rate   string         `json:"rate,omitempty"`
	Online *bool          `json:"online,omitempty"`
}
