// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var (
	slotTotalStake   = storage.NameToSlot("total-stake")
	slotTotalSlashed = storage.NameToSlot("total-slashed-stake")
)

// Service manages engine-wide staking totals. The total stake is the
// denominator of every reward calculation and always equals the sum of all
// delegation balances.
type Service struct {
	totalStake   *storage.Uint256
	totalSlashed *storage.Uint256
}

func New(store *storage.Store) *Service {
	return &Service{
		totalStake:   storage.NewUint256(store, slotTotalStake),
		totalSlashed: storage.NewUint256(store, slotTotalSlashed),
	}
}

// TotalStake returns the total staked value across all validators.
func (s *Service) TotalStake() (*uint256.Int, error) {
	return s.totalStake.Get()
}

// AddTotal increases the total stake.
func (s *Service) AddTotal(amount *uint256.Int) error {
	total, err := s.totalStake.Get()
	if err != nil {
		return err
	}
	if total, err = stakes.Add(total, amount); err != nil {
		return err
	}
	s.totalStake.Set(total)
	return nil
}

// SubTotal decreases the total stake.
func (s *Service) SubTotal(amount *uint256.Int) error {
	total, err := s.totalStake.Get()
	if err != nil {
		return err
	}
	if amount.Gt(total) {
		return reverts.ErrArithmeticOverflow
	}
	if total, err = stakes.Sub(total, amount); err != nil {
		return err
	}
	s.totalStake.Set(total)
	return nil
}

// TotalSlashed returns the total of forfeited withdrawals.
func (s *Service) TotalSlashed() (*uint256.Int, error) {
	return s.totalSlashed.Get()
}

// AddSlashed routes a forfeited withdrawal amount into the slashed total.
func (s *Service) AddSlashed(amount *uint256.Int) error {
	slashed, err := s.totalSlashed.Get()
	if err != nil {
		return err
	}
	if slashed, err = stakes.Add(slashed, amount); err != nil {
		return err
	}
	s.totalSlashed.Set(slashed)
	return nil
}
