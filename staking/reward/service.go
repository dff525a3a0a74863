// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward maintains the global reward-per-unit-stake accumulator and
// the per-(staker, validator) checkpoints it is settled against.
//
// The accumulator is a monotonically non-decreasing fixed-point value (1e18
// scale) representing cumulative reward earned per unit of stake since
// inception. The pending reward of a pair at any moment is
//
//	(accumulator - checkpoint) * balance / Precision + stash
//
// which holds regardless of how often the accumulator was refreshed in
// between, as long as the pair is settled before every balance change.
package reward

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var (
	slotAccumulator = storage.NameToSlot("reward-accumulator")
	slotLastUpdate  = storage.NameToSlot("reward-last-update")
	slotRate        = storage.NameToSlot("reward-rate")
	slotPositions   = storage.NameToSlot("reward-positions")
)

// position is the per-(staker, validator) reward state.
type position struct {
	Checkpoint *uint256.Int // accumulator value already paid out into the stash
	Stash      *uint256.Int // computed but unclaimed reward
}

func (p *position) ensure() {
	if p.Checkpoint == nil {
		p.Checkpoint = uint256.NewInt(0)
	}
	if p.Stash == nil {
		p.Stash = uint256.NewInt(0)
	}
}

// key addresses one (staker, validator) reward position.
type key struct {
	staker common.Address
	id     validation.ID
}

func (k key) Bytes() []byte {
	return append(k.staker.Bytes(), k.id.Bytes()...)
}

// Service owns the reward accumulator and positions.
type Service struct {
	accumulator *storage.Uint256
	lastUpdate  *storage.Uint64
	rate        *storage.Uint256
	positions   *storage.Mapping[key, *position]
}

func New(store *storage.Store) *Service {
	return &Service{
		accumulator: storage.NewUint256(store, slotAccumulator),
		lastUpdate:  storage.NewUint64(store, slotLastUpdate),
		rate:        storage.NewUint256(store, slotRate),
		positions:   storage.NewMapping[key, *position](store, slotPositions),
	}
}

// RefreshGlobal advances the accumulator to time now:
//
//	accumulator += (now - lastUpdate) * rate * Precision / totalStake
//
// When totalStake is zero only the timestamp moves, so no rewards accrue
// while nothing is staked. Refreshing twice at the same timestamp is a
// no-op the second time.
func (s *Service) RefreshGlobal(totalStake *uint256.Int, now uint64) error {
	last, err := s.lastUpdate.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get last update")
	}
	if now < last {
		return reverts.ErrClockBackwards
	}
	if now == last {
		return nil
	}
	if totalStake.IsZero() {
		s.lastUpdate.Set(now)
		return nil
	}

	rate, err := s.rate.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get reward rate")
	}
	increment, err := accumulatorIncrement(rate, totalStake, now-last)
	if err != nil {
		return err
	}
	acc, err := s.accumulator.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get accumulator")
	}
	if acc, err = stakes.Add(acc, increment); err != nil {
		return err
	}
	s.accumulator.Set(acc)
	s.lastUpdate.Set(now)
	return nil
}

// Settle refreshes the accumulator, moves the pair's pending reward into
// its stash and advances the checkpoint. It must run before any change to
// the pair's balance or to the total stake, because the pending formula
// assumes the balance was constant since the last checkpoint.
func (s *Service) Settle(staker common.Address, id validation.ID, balance, totalStake *uint256.Int, now uint64) error {
	if err := s.RefreshGlobal(totalStake, now); err != nil {
		return err
	}
	acc, err := s.accumulator.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get accumulator")
	}
	pos, err := s.getPosition(staker, id)
	if err != nil {
		return err
	}
	pending, err := pendingAt(acc, pos, balance)
	if err != nil {
		return err
	}
	pos.Stash = pending
	pos.Checkpoint = acc
	if err := s.positions.Set(key{staker, id}, pos); err != nil {
		return errors.Wrap(err, "failed to set reward position")
	}
	return nil
}

// Pending computes the pair's pending reward at time now without mutating
// any state.
func (s *Service) Pending(staker common.Address, id validation.ID, balance, totalStake *uint256.Int, now uint64) (*uint256.Int, error) {
	acc, err := s.accumulator.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get accumulator")
	}
	last, err := s.lastUpdate.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get last update")
	}
	if now > last && !totalStake.IsZero() {
		rate, err := s.rate.Get()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get reward rate")
		}
		increment, err := accumulatorIncrement(rate, totalStake, now-last)
		if err != nil {
			return nil, err
		}
		if acc, err = stakes.Add(acc, increment); err != nil {
			return nil, err
		}
	}
	pos, err := s.getPosition(staker, id)
	if err != nil {
		return nil, err
	}
	return pendingAt(acc, pos, balance)
}

// TakeStash zeroes and returns the pair's stash. Callers transfer the
// returned amount only after this bookkeeping has completed.
func (s *Service) TakeStash(staker common.Address, id validation.ID) (*uint256.Int, error) {
	pos, err := s.getPosition(staker, id)
	if err != nil {
		return nil, err
	}
	stash := pos.Stash
	if stash.IsZero() {
		return stash, nil
	}
	pos.Stash = uint256.NewInt(0)
	if err := s.positions.Set(key{staker, id}, pos); err != nil {
		return nil, errors.Wrap(err, "failed to set reward position")
	}
	return stash, nil
}

// Rate returns the reward emission rate in tokens per second.
func (s *Service) Rate() (*uint256.Int, error) {
	return s.rate.Get()
}

// SetRate sets the reward emission rate. The caller settles the
// accumulator at the old rate first.
func (s *Service) SetRate(rate *uint256.Int) {
	s.rate.Set(rate)
}

// LastUpdate returns the timestamp of the last accumulator refresh.
func (s *Service) LastUpdate() (uint64, error) {
	return s.lastUpdate.Get()
}

// Accumulator returns the current reward-per-unit accumulator value.
func (s *Service) Accumulator() (*uint256.Int, error) {
	return s.accumulator.Get()
}

func (s *Service) getPosition(staker common.Address, id validation.ID) (*position, error) {
	pos, err := s.positions.Get(key{staker, id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward position")
	}
	pos.ensure()
	return pos, nil
}

func accumulatorIncrement(rate, totalStake *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	emitted, err := stakes.Mul(uint256.NewInt(elapsed), rate)
	if err != nil {
		return nil, err
	}
	return stakes.MulDiv(emitted, stakes.Precision, totalStake)
}

func pendingAt(acc *uint256.Int, pos *position, balance *uint256.Int) (*uint256.Int, error) {
	diff, err := stakes.Sub(acc, pos.Checkpoint)
	if err != nil {
		return nil, err
	}
	pending, err := stakes.MulDiv(diff, balance, stakes.Precision)
	if err != nil {
		return nil, err
	}
	return stakes.Add(pending, pos.Stash)
}
