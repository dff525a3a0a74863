// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegation owns the per-(staker, validator) stake balances.
// A delegation whose staker is the validator's controlling address is the
// validator's self-stake; all other stakers are delegators.
package delegation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var slotDelegations = storage.NameToSlot("delegations")

// key addresses one (staker, validator) balance.
type key struct {
	staker common.Address
	id     validation.ID
}

func (k key) Bytes() []byte {
	return append(k.staker.Bytes(), k.id.Bytes()...)
}

// Service owns delegation balances. Ratio and minimum-stake policy checks
// are orchestrated by the staking facade, which sees both ledgers.
type Service struct {
	delegations *storage.Mapping[key, *uint256.Int]
}

func New(store *storage.Store) *Service {
	return &Service{
		delegations: storage.NewMapping[key, *uint256.Int](store, slotDelegations),
	}
}

// Balance returns the stake delegated by staker to the validator.
func (s *Service) Balance(staker common.Address, id validation.ID) (*uint256.Int, error) {
	balance, err := s.delegations.Get(key{staker, id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delegation")
	}
	return balance, nil
}

// Increase adds amount to the pair balance, creating the delegation on
// first stake.
func (s *Service) Increase(staker common.Address, id validation.ID, amount *uint256.Int) error {
	balance, err := s.Balance(staker, id)
	if err != nil {
		return err
	}
	if balance, err = stakes.Add(balance, amount); err != nil {
		return err
	}
	return s.setBalance(staker, id, balance)
}

// Decrease subtracts amount from the pair balance. The balance never
// underflows; a zeroed delegation is fully erased.
func (s *Service) Decrease(staker common.Address, id validation.ID, amount *uint256.Int) error {
	balance, err := s.Balance(staker, id)
	if err != nil {
		return err
	}
	if amount.Gt(balance) {
		return reverts.ErrInsufficientStake
	}
	if balance, err = stakes.Sub(balance, amount); err != nil {
		return err
	}
	return s.setBalance(staker, id, balance)
}

func (s *Service) setBalance(staker common.Address, id validation.ID, balance *uint256.Int) error {
	k := key{staker, id}
	if balance.IsZero() {
		s.delegations.Delete(k)
		return nil
	}
	if err := s.delegations.Set(k, balance); err != nil {
		return errors.Wrap(err, "failed to set delegation")
	}
	return nil
}
