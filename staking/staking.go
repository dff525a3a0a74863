// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the bridge staking ledger: validator
// registration, stake and delegation accounting, time-locked unstaking and
// continuous reward accrual.
//
// Every mutating operation is all-or-nothing. Writes go through a journaled
// store; a failed step reverts the whole operation and asset transfers run
// last so a revert never strands tokens in the pool.
package staking

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/metrics"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/delegation"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/globalstats"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reward"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/unstaking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var (
	logger = log.New("pkg", "staking")

	metricOpCount = metrics.LazyLoad(func() metrics.CountVecMeter {
		return metrics.CounterVec("staking_operation_count", []string{"op", "outcome"})
	})
	metricTotalStake = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("staking_total_stake_gwei")
	})
)

// Staking is the facade over the per-concern ledger services. All reads and
// writes of staking state go through it.
type Staking struct {
	params *Params
	pool   TokenPool
	access AccessControl

	store *storage.Store

	validationService  *validation.Service
	delegationService  *delegation.Service
	rewardService      *reward.Service
	unstakingService   *unstaking.Service
	globalStatsService *globalstats.Service

	subscriber WeightSubscriber
	recorder   Recorder
}

// New creates a staking ledger over the given store.
func New(store *storage.Store, pool TokenPool, access AccessControl, params *Params) *Staking {
	return &Staking{
		params: params,
		pool:   pool,
		access: access,
		store:  store,

		validationService:  validation.New(store),
		delegationService:  delegation.New(store),
		rewardService:      reward.New(store),
		unstakingService:   unstaking.New(store),
		globalStatsService: globalstats.New(store),
	}
}

// SetWeightSubscriber registers the consumer of post-commit weight changes.
func (s *Staking) SetWeightSubscriber(sub WeightSubscriber) {
	s.subscriber = sub
}

// SetRecorder registers the event history sink.
func (s *Staking) SetRecorder(rec Recorder) {
	s.recorder = rec
}

// CreateValidator registers a new validator controlled by auth and stakes
// its initial self-stake in the same operation. The self-stake must reach
// the configured minimum up front.
func (s *Staking) CreateValidator(auth common.Address, selfStake *uint256.Int, now uint64) (validation.ID, error) {
	var (
		id     validation.ID
		weight *uint256.Int
	)
	err := s.runAtomic("create_validator", func() error {
		if selfStake == nil || selfStake.IsZero() {
			return reverts.ErrZeroAmount
		}
		if selfStake.Lt(s.params.MinSelfStake) {
			return reverts.ErrStakeBelowMinimum
		}

		var err error
		if id, err = s.validationService.Register(auth, now); err != nil {
			return err
		}

		total, err := s.globalStatsService.TotalStake()
		if err != nil {
			return err
		}
		// checkpoint the fresh position so no past accrual leaks into it
		if err := s.rewardService.Settle(auth, id, uint256.NewInt(0), total, now); err != nil {
			return err
		}

		if err := s.delegationService.Increase(auth, id, selfStake); err != nil {
			return err
		}
		if err := s.validationService.AddStake(id, selfStake); err != nil {
			return err
		}
		if err := s.globalStatsService.AddTotal(selfStake); err != nil {
			return err
		}

		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}
		weight = v.Weight()

		return s.transferIn(auth, selfStake)
	})
	if err != nil {
		return 0, err
	}

	logger.Info("validator created", "id", id, "auth", auth, "stake", selfStake)
	s.notifyWeight(id, weight)
	s.record(&Event{Kind: EventValidatorCreated, Validator: id, Staker: auth, Amount: selfStake, Time: now})
	return id, nil
}

// Stake adds amount to the staker's balance with the validator. The
// validator must be active, and delegated stake may not exceed the
// validator's self-stake scaled by the delegation ratio.
func (s *Staking) Stake(staker common.Address, id validation.ID, amount *uint256.Int, now uint64) error {
	var weight *uint256.Int
	err := s.runAtomic("stake", func() error {
		if amount == nil || amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}
		if !v.IsActive() {
			return reverts.ErrValidatorInactive
		}

		if err := s.settle(staker, id, now); err != nil {
			return err
		}

		if err := s.delegationService.Increase(staker, id, amount); err != nil {
			return err
		}
		if err := s.validationService.AddStake(id, amount); err != nil {
			return err
		}
		if err := s.globalStatsService.AddTotal(amount); err != nil {
			return err
		}

		if v, err = s.validationService.GetExisting(id); err != nil {
			return err
		}
		if err := s.checkDelegationLimit(v, id); err != nil {
			return err
		}
		weight = v.Weight()

		return s.transferIn(staker, amount)
	})
	if err != nil {
		return err
	}

	logger.Debug("staked", "id", id, "staker", staker, "amount", amount)
	s.notifyWeight(id, weight)
	s.record(&Event{Kind: EventStaked, Validator: id, Staker: staker, Amount: amount, Time: now})
	return nil
}

// Unstake moves amount of the staker's balance into a time-locked request
// under the caller-chosen requestID. A validator unstaking its whole
// self-stake deactivates itself; a partial self-unstake may not drop the
// self-stake below the minimum.
func (s *Staking) Unstake(staker common.Address, id validation.ID, requestID uint64, amount *uint256.Int, now uint64) error {
	var (
		weight      *uint256.Int
		deactivated bool
	)
	err := s.runAtomic("unstake", func() error {
		if amount == nil || amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}

		if err := s.settle(staker, id, now); err != nil {
			return err
		}

		if err := s.delegationService.Decrease(staker, id, amount); err != nil {
			return err
		}
		if err := s.validationService.SubStake(id, amount); err != nil {
			return err
		}
		if err := s.globalStatsService.SubTotal(amount); err != nil {
			return err
		}
		if err := s.unstakingService.Open(staker, id, requestID, amount, now); err != nil {
			return err
		}

		if staker == v.Auth {
			selfStake, err := s.delegationService.Balance(staker, id)
			if err != nil {
				return err
			}
			switch {
			case selfStake.IsZero():
				if v.IsActive() {
					if err := s.validationService.Deactivate(id, now); err != nil {
						return err
					}
					deactivated = true
				}
			case selfStake.Lt(s.params.MinSelfStake):
				// deactivated and jailed validators can never return to
				// service, so their auth may exit in any number of steps
				if v.DeactivatedAt == 0 && !v.IsJailed() {
					return reverts.ErrStakeBelowMinimum
				}
			}
		}

		if v, err = s.validationService.GetExisting(id); err != nil {
			return err
		}
		if v.IsActive() {
			if err := s.checkDelegationLimit(v, id); err != nil {
				return err
			}
		}
		weight = v.Weight()
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("unstaked", "id", id, "staker", staker, "request", requestID, "amount", amount)
	s.notifyWeight(id, weight)
	s.record(&Event{Kind: EventUnstaked, Validator: id, Staker: staker, Amount: amount, Time: now})
	if deactivated {
		s.record(&Event{Kind: EventDeactivated, Validator: id, Staker: staker, Time: now})
	}
	return nil
}

// Withdraw closes a matured unstaking request and pays its amount out,
// unless the validator has been jailed, in which case the amount is
// forfeited into the slashed total.
func (s *Staking) Withdraw(staker common.Address, id validation.ID, requestID uint64, now uint64) (*uint256.Int, error) {
	var (
		amount  *uint256.Int
		slashed bool
	)
	err := s.runAtomic("withdraw", func() error {
		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}
		req, err := s.unstakingService.Get(staker, id, requestID)
		if err != nil {
			return err
		}
		if req.IsEmpty() {
			return reverts.ErrUnknownRequest
		}
		if !req.Withdrawable(v.DeactivatedAt, s.params.UnstakePeriod, now) {
			return reverts.ErrNotWithdrawable
		}

		if amount, err = s.unstakingService.Close(staker, id, requestID); err != nil {
			return err
		}
		if v.IsJailed() {
			slashed = true
			return s.globalStatsService.AddSlashed(amount)
		}
		return s.transferOut(staker, amount)
	})
	if err != nil {
		return nil, err
	}

	if slashed {
		logger.Info("withdrawal slashed", "id", id, "staker", staker, "amount", amount)
		s.record(&Event{Kind: EventSlashed, Validator: id, Staker: staker, Amount: amount, Time: now})
	} else {
		logger.Debug("withdrawn", "id", id, "staker", staker, "amount", amount)
		s.record(&Event{Kind: EventWithdrawn, Validator: id, Staker: staker, Amount: amount, Time: now})
	}
	return amount, nil
}

// ClaimReward settles and pays out the staker's accrued reward, funded from
// the reward reserve. Claims against a jailed validator are rejected.
func (s *Staking) ClaimReward(staker common.Address, id validation.ID, now uint64) (*uint256.Int, error) {
	var amount *uint256.Int
	err := s.runAtomic("claim_reward", func() error {
		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}
		if v.IsJailed() {
			return reverts.ErrClaimRejected
		}

		if err := s.settle(staker, id, now); err != nil {
			return err
		}
		if amount, err = s.rewardService.TakeStash(staker, id); err != nil {
			return err
		}
		if amount.IsZero() {
			return reverts.ErrNoRewardOwed
		}

		available, err := s.pool.BalanceAvailable(s.params.RewardReserve)
		if err != nil {
			return reverts.ErrAssetTransferFailed
		}
		if available.Lt(amount) {
			return reverts.ErrInsufficientRewardPool
		}
		if err := s.transferIn(s.params.RewardReserve, amount); err != nil {
			return err
		}
		return s.transferOut(staker, amount)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("reward claimed", "id", id, "staker", staker, "amount", amount)
	s.record(&Event{Kind: EventRewardClaimed, Validator: id, Staker: staker, Amount: amount, Time: now})
	return amount, nil
}

// PendingReward computes the staker's accrued reward at time now without
// mutating any state.
func (s *Staking) PendingReward(staker common.Address, id validation.ID, now uint64) (*uint256.Int, error) {
	if _, err := s.validationService.GetExisting(id); err != nil {
		return nil, err
	}
	balance, err := s.delegationService.Balance(staker, id)
	if err != nil {
		return nil, err
	}
	total, err := s.globalStatsService.TotalStake()
	if err != nil {
		return nil, err
	}
	return s.rewardService.Pending(staker, id, balance, total, now)
}

// SetRewardRate changes the reward emission rate. The accumulator is
// brought up to date at the old rate first, so the change never reaches
// back in time. Owner only.
func (s *Staking) SetRewardRate(caller common.Address, rate *uint256.Int, now uint64) error {
	err := s.runAtomic("set_reward_rate", func() error {
		if err := s.requireOwner(caller); err != nil {
			return err
		}
		total, err := s.globalStatsService.TotalStake()
		if err != nil {
			return err
		}
		if err := s.rewardService.RefreshGlobal(total, now); err != nil {
			return err
		}
		s.rewardService.SetRate(rate)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("reward rate changed", "rate", rate)
	s.record(&Event{Kind: EventRewardRateChanged, Amount: rate, Time: now})
	return nil
}

// Jail penalizes a validator. Its weight drops to zero, staking into it
// stops, pending withdrawals of its stakers are forfeited and reward claims
// against it are rejected. Owner only.
func (s *Staking) Jail(caller common.Address, id validation.ID, now uint64) error {
	var weight *uint256.Int
	err := s.runAtomic("jail", func() error {
		if err := s.requireOwner(caller); err != nil {
			return err
		}
		if err := s.validationService.AddStatus(id, validation.StatusJailed); err != nil {
			return err
		}
		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}
		weight = v.Weight()
		return nil
	})
	if err != nil {
		return err
	}

	logger.Warn("validator jailed", "id", id)
	s.notifyWeight(id, weight)
	s.record(&Event{Kind: EventJailed, Validator: id, Time: now})
	return nil
}

// SetOnline flips the validator's offline flag. Owner only.
func (s *Staking) SetOnline(caller common.Address, id validation.ID, online bool, now uint64) error {
	var weight *uint256.Int
	err := s.runAtomic("set_online", func() error {
		if err := s.requireOwner(caller); err != nil {
			return err
		}
		var err error
		if online {
			err = s.validationService.RemoveStatus(id, validation.StatusOffline)
		} else {
			err = s.validationService.AddStatus(id, validation.StatusOffline)
		}
		if err != nil {
			return err
		}
		v, err := s.validationService.GetExisting(id)
		if err != nil {
			return err
		}
		weight = v.Weight()
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("validator online flag set", "id", id, "online", online)
	s.notifyWeight(id, weight)
	s.record(&Event{Kind: EventStatusChanged, Validator: id, Time: now})
	return nil
}

// MarkSynced records that the validator's node has caught up with the
// network. Owner only.
func (s *Staking) MarkSynced(caller common.Address, id validation.ID, now uint64) error {
	err := s.runAtomic("mark_synced", func() error {
		if err := s.requireOwner(caller); err != nil {
			return err
		}
		return s.validationService.AddStatus(id, validation.StatusSynced)
	})
	if err != nil {
		return err
	}

	s.record(&Event{Kind: EventStatusChanged, Validator: id, Time: now})
	return nil
}

// GetValidator returns the validator entry, failing if the ID is unknown.
func (s *Staking) GetValidator(id validation.ID) (*validation.Validation, error) {
	return s.validationService.GetExisting(id)
}

// LookupValidator returns the validator ID controlled by auth, 0 if none.
func (s *Staking) LookupValidator(auth common.Address) (validation.ID, error) {
	return s.validationService.LookupID(auth)
}

// LastValidatorID returns the most recently allocated validator ID.
func (s *Staking) LastValidatorID() (validation.ID, error) {
	return s.validationService.LastID()
}

// DelegationBalance returns the stake the staker holds with the validator.
func (s *Staking) DelegationBalance(staker common.Address, id validation.ID) (*uint256.Int, error) {
	return s.delegationService.Balance(staker, id)
}

// UnstakingRequest returns the request, which is empty if it does not exist.
func (s *Staking) UnstakingRequest(staker common.Address, id validation.ID, requestID uint64) (*unstaking.Request, error) {
	return s.unstakingService.Get(staker, id, requestID)
}

// TotalStake returns the total staked value across all validators.
func (s *Staking) TotalStake() (*uint256.Int, error) {
	return s.globalStatsService.TotalStake()
}

// TotalSlashed returns the total of forfeited withdrawals.
func (s *Staking) TotalSlashed() (*uint256.Int, error) {
	return s.globalStatsService.TotalSlashed()
}

// RewardRate returns the emission rate in tokens per second.
func (s *Staking) RewardRate() (*uint256.Int, error) {
	return s.rewardService.Rate()
}

// Params returns the protocol constants the ledger was built with.
func (s *Staking) Params() *Params {
	return s.params
}

// settle brings the staker's reward position up to date. It must run
// before any change to the pair's balance or to the total stake.
func (s *Staking) settle(staker common.Address, id validation.ID, now uint64) error {
	balance, err := s.delegationService.Balance(staker, id)
	if err != nil {
		return err
	}
	total, err := s.globalStatsService.TotalStake()
	if err != nil {
		return err
	}
	return s.rewardService.Settle(staker, id, balance, total, now)
}

// checkDelegationLimit enforces delegated <= selfStake * ratio / Precision.
// A zero ratio disables delegation entirely.
func (s *Staking) checkDelegationLimit(v *validation.Validation, id validation.ID) error {
	selfStake, err := s.delegationService.Balance(v.Auth, id)
	if err != nil {
		return err
	}
	delegated, err := stakes.Sub(v.ReceivedStake, selfStake)
	if err != nil {
		return err
	}
	if delegated.IsZero() {
		return nil
	}
	limit, err := stakes.MulDiv(selfStake, s.params.MaxDelegatedRatio, stakes.Precision)
	if err != nil {
		return err
	}
	if delegated.Gt(limit) {
		return reverts.ErrDelegationLimitExceeded
	}
	return nil
}

func (s *Staking) requireOwner(caller common.Address) error {
	owner, err := s.access.CurrentOwner()
	if err != nil {
		return err
	}
	if caller != owner {
		return reverts.ErrAccessDenied
	}
	return nil
}

func (s *Staking) transferIn(owner common.Address, amount *uint256.Int) error {
	available, err := s.pool.BalanceAvailable(owner)
	if err != nil {
		return reverts.ErrAssetTransferFailed
	}
	if available.Lt(amount) {
		return reverts.ErrAllowanceTooLow
	}
	if err := s.pool.TransferIn(owner, amount); err != nil {
		return reverts.ErrAssetTransferFailed
	}
	return nil
}

func (s *Staking) transferOut(recipient common.Address, amount *uint256.Int) error {
	if err := s.pool.TransferOut(recipient, amount); err != nil {
		return reverts.ErrAssetTransferFailed
	}
	return nil
}

// runAtomic executes fn against a checkpoint and commits on success. Any
// error reverts every write fn made.
func (s *Staking) runAtomic(op string, fn func() error) error {
	cp := s.store.NewCheckpoint()
	if err := fn(); err != nil {
		s.store.RevertTo(cp)
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "outcome": "reverted"})
		return err
	}
	if err := s.store.Commit(); err != nil {
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "outcome": "failed"})
		return err
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "outcome": "committed"})
	s.observeTotalStake()
	return nil
}

func (s *Staking) observeTotalStake() {
	total, err := s.globalStatsService.TotalStake()
	if err != nil {
		return
	}
	gwei := new(uint256.Int).Div(total, uint256.NewInt(1_000_000_000))
	metricTotalStake().Set(int64(gwei.Uint64()))
}

func (s *Staking) notifyWeight(id validation.ID, weight *uint256.Int) {
	if s.subscriber == nil || weight == nil {
		return
	}
	s.subscriber.ValidatorWeightChanged(id, weight)
}

func (s *Staking) record(ev *Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ev); err != nil {
		logger.Warn("failed to record staking event", "kind", ev.Kind, "err", err)
	}
}
