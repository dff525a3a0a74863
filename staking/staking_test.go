// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

func TestCreateValidator(t *testing.T) {
	st, pool := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	assert.Equal(t, validation.ID(1), id)

	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.Equal(t, alice, v.Auth)
	assert.True(t, v.IsActive())
	assert.Equal(t, minStake, v.ReceivedStake)
	assert.Equal(t, uint64(10), v.CreatedAt)

	// the self-stake moved into escrow
	assert.Equal(t, M(uint256.NewInt(999_000), nil), M(pool.BalanceAvailable(alice)))
	assert.Equal(t, M(minStake, nil), M(pool.Escrowed()))
	assert.Equal(t, M(minStake, nil), M(st.TotalStake()))

	// the controlling address is taken
	_, err = st.CreateValidator(alice, minStake, 11)
	assert.ErrorIs(t, err, reverts.ErrAlreadyRegistered)

	// IDs are sequential
	id2, err := st.CreateValidator(bob, minStake, 12)
	require.NoError(t, err)
	assert.Equal(t, validation.ID(2), id2)
}

func TestCreateValidatorPreconditions(t *testing.T) {
	st, _ := newTestStaking(t)

	_, err := st.CreateValidator(alice, uint256.NewInt(0), 10)
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)

	_, err = st.CreateValidator(alice, uint256.NewInt(999), 10)
	assert.ErrorIs(t, err, reverts.ErrStakeBelowMinimum)

	_, err = st.CreateValidator(alice, uint256.NewInt(2_000_000), 10)
	assert.ErrorIs(t, err, reverts.ErrAllowanceTooLow)

	// nothing was allocated by the failed attempts
	last, err := st.LastValidatorID()
	require.NoError(t, err)
	assert.Equal(t, validation.ID(0), last)
}

func TestStake(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)

	require.NoError(t, st.Stake(bob, id, uint256.NewInt(500), 20))
	assert.Equal(t, M(uint256.NewInt(500), nil), M(st.DelegationBalance(bob, id)))
	assert.Equal(t, M(uint256.NewInt(1500), nil), M(st.TotalStake()))

	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1500), v.ReceivedStake)

	// repeated staking tops up the same delegation
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(100), 21))
	assert.Equal(t, M(uint256.NewInt(600), nil), M(st.DelegationBalance(bob, id)))

	assert.ErrorIs(t, st.Stake(bob, id, uint256.NewInt(0), 22), reverts.ErrZeroAmount)
	assert.ErrorIs(t, st.Stake(bob, 99, uint256.NewInt(1), 22), reverts.ErrUnknownValidator)
}

func TestStakeDelegationLimit(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)

	// cap is selfStake * 16
	assert.ErrorIs(t, st.Stake(bob, id, uint256.NewInt(16_001), 20), reverts.ErrDelegationLimitExceeded)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(16_000), 20))

	// raising the self-stake raises the cap
	require.NoError(t, st.Stake(alice, id, uint256.NewInt(100), 30))
	require.NoError(t, st.Stake(carol, id, uint256.NewInt(1_600), 30))
	assert.ErrorIs(t, st.Stake(carol, id, uint256.NewInt(1), 31), reverts.ErrDelegationLimitExceeded)
}

func TestZeroRatioDisablesDelegation(t *testing.T) {
	params := testParams()
	params.MaxDelegatedRatio = uint256.NewInt(0)
	st, _ := newTestStakingWithParams(t, params)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, st.Stake(bob, id, uint256.NewInt(1), 20), reverts.ErrDelegationLimitExceeded)

	// self-stake is unaffected
	require.NoError(t, st.Stake(alice, id, uint256.NewInt(500), 20))
}

func TestStakeInactiveValidator(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Unstake(alice, id, 1, minStake, 20))

	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.False(t, v.IsActive())
	assert.Equal(t, uint64(20), v.DeactivatedAt)

	assert.ErrorIs(t, st.Stake(bob, id, uint256.NewInt(1), 30), reverts.ErrValidatorInactive)
}

func TestUnstake(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(500), 10))

	require.NoError(t, st.Unstake(bob, id, 1, uint256.NewInt(200), 20))
	assert.Equal(t, M(uint256.NewInt(300), nil), M(st.DelegationBalance(bob, id)))
	assert.Equal(t, M(uint256.NewInt(1300), nil), M(st.TotalStake()))

	req, err := st.UnstakingRequest(bob, id, 1)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(200), req.Amount)
	assert.Equal(t, uint64(20), req.RequestedAt)

	// request IDs must be fresh for the pair
	assert.ErrorIs(t, st.Unstake(bob, id, 1, uint256.NewInt(50), 21), reverts.ErrDuplicateRequest)
	// but another staker may reuse the same ID
	require.NoError(t, st.Unstake(alice, id, 1, uint256.NewInt(0).Set(minStake), 21))

	assert.ErrorIs(t, st.Unstake(bob, id, 2, uint256.NewInt(0), 22), reverts.ErrZeroAmount)
	assert.ErrorIs(t, st.Unstake(bob, id, 2, uint256.NewInt(10_000), 22), reverts.ErrInsufficientStake)
}

func TestUnstakeSelfStakeRules(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, uint256.NewInt(2000), 10)
	require.NoError(t, err)

	// partial self-unstake below the minimum is rejected
	assert.ErrorIs(t, st.Unstake(alice, id, 1, uint256.NewInt(1500), 20), reverts.ErrStakeBelowMinimum)

	// down to exactly the minimum is fine
	require.NoError(t, st.Unstake(alice, id, 1, uint256.NewInt(1000), 20))
	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.True(t, v.IsActive())

	// the full remainder deactivates the validator
	require.NoError(t, st.Unstake(alice, id, 2, uint256.NewInt(1000), 30))
	v, err = st.GetValidator(id)
	require.NoError(t, err)
	assert.False(t, v.IsActive())
	assert.Equal(t, uint64(30), v.DeactivatedAt)
}

// A jailed validator can never return to service, so its auth may unwind
// the self-stake below the minimum in several steps. Merely offline
// validators can come back online and must keep the minimum.
func TestUnstakeSelfStakeAfterRetirement(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, uint256.NewInt(2000), 10)
	require.NoError(t, err)
	require.NoError(t, st.SetOnline(owner, id, false, 15))
	assert.ErrorIs(t, st.Unstake(alice, id, 1, uint256.NewInt(1500), 20), reverts.ErrStakeBelowMinimum)

	require.NoError(t, st.Jail(owner, id, 25))
	require.NoError(t, st.Unstake(alice, id, 1, uint256.NewInt(1500), 30))
	assert.Equal(t, M(uint256.NewInt(500), nil), M(st.DelegationBalance(alice, id)))
}

func TestWithdraw(t *testing.T) {
	st, pool := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(500), 10))
	require.NoError(t, st.Unstake(bob, id, 7, uint256.NewInt(500), 20))

	// still locked
	_, err = st.Withdraw(bob, id, 7, 119)
	assert.ErrorIs(t, err, reverts.ErrNotWithdrawable)

	amount, err := st.Withdraw(bob, id, 7, 120)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), amount)
	assert.Equal(t, M(uint256.NewInt(1_000_000), nil), M(pool.BalanceAvailable(bob)))

	// the request is gone, a second withdraw must not pay twice
	_, err = st.Withdraw(bob, id, 7, 121)
	assert.ErrorIs(t, err, reverts.ErrUnknownRequest)

	_, err = st.Withdraw(bob, id, 8, 121)
	assert.ErrorIs(t, err, reverts.ErrUnknownRequest)
}

func TestWithdrawAfterDeactivation(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(500), 10))

	// the validator deactivated before the request was made, so the lock
	// counts from the deactivation time
	require.NoError(t, st.Unstake(alice, id, 1, uint256.NewInt(0).Set(minStake), 50))
	require.NoError(t, st.Unstake(bob, id, 1, uint256.NewInt(500), 80))

	_, err = st.Withdraw(bob, id, 1, 149)
	assert.ErrorIs(t, err, reverts.ErrNotWithdrawable)
	_, err = st.Withdraw(bob, id, 1, 150)
	require.NoError(t, err)
}

func TestWithdrawSlashedWhileJailed(t *testing.T) {
	st, pool := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(500), 10))
	require.NoError(t, st.Unstake(bob, id, 1, uint256.NewInt(500), 20))

	require.NoError(t, st.Jail(owner, id, 30))

	amount, err := st.Withdraw(bob, id, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), amount)

	// the amount was forfeited, not paid out
	assert.Equal(t, M(uint256.NewInt(999_500), nil), M(pool.BalanceAvailable(bob)))
	assert.Equal(t, M(uint256.NewInt(500), nil), M(st.TotalSlashed()))
}

func TestJailAccessControl(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, st.Jail(alice, id, 20), reverts.ErrAccessDenied)
	require.NoError(t, st.Jail(owner, id, 20))

	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.True(t, v.IsJailed())
	assert.True(t, v.Weight().IsZero())
}

func TestSetOnline(t *testing.T) {
	st, _ := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)

	require.NoError(t, st.SetOnline(owner, id, false, 20))
	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.False(t, v.IsActive())
	assert.True(t, v.Weight().IsZero())

	require.NoError(t, st.SetOnline(owner, id, true, 30))
	v, err = st.GetValidator(id)
	require.NoError(t, err)
	assert.True(t, v.IsActive())
	assert.Equal(t, minStake, v.Weight())
}

func TestWeightNotifications(t *testing.T) {
	st, _ := newTestStaking(t)
	var wlog weightLog
	st.SetWeightSubscriber(&wlog)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(500), 10))
	require.NoError(t, st.Jail(owner, id, 20))

	require.Len(t, wlog.weights, 3)
	assert.Equal(t, uint256.NewInt(1000), wlog.weights[0])
	assert.Equal(t, uint256.NewInt(1500), wlog.weights[1])
	assert.True(t, wlog.weights[2].IsZero())

	// failed operations stay silent
	_ = st.Stake(bob, id, uint256.NewInt(1), 30)
	assert.Len(t, wlog.weights, 3)
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	st, pool := newTestStaking(t)

	// a large self-stake keeps the delegation cap far above bob's balance
	id, err := st.CreateValidator(alice, uint256.NewInt(500_000), 10)
	require.NoError(t, err)
	totalBefore, err := st.TotalStake()
	require.NoError(t, err)

	// fails at the asset transfer, after the ledger was already mutated
	err = st.Stake(bob, id, uint256.NewInt(1_500_000), 20)
	assert.ErrorIs(t, err, reverts.ErrAllowanceTooLow)

	totalAfter, err := st.TotalStake()
	require.NoError(t, err)
	assert.Equal(t, totalBefore, totalAfter)
	assert.Equal(t, M(uint256.NewInt(0), nil), M(st.DelegationBalance(bob, id)))
	assert.Equal(t, M(uint256.NewInt(1_000_000), nil), M(pool.BalanceAvailable(bob)))

	v, err := st.GetValidator(id)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500_000), v.ReceivedStake)
}

// The pool escrow always equals stake plus open requests plus forfeits, no
// matter how operations interleave.
func TestEscrowConservation(t *testing.T) {
	st, pool := newTestStaking(t)

	id, err := st.CreateValidator(alice, minStake, 10)
	require.NoError(t, err)
	require.NoError(t, st.Stake(bob, id, uint256.NewInt(700), 10))
	require.NoError(t, st.Stake(carol, id, uint256.NewInt(300), 11))
	require.NoError(t, st.Unstake(bob, id, 1, uint256.NewInt(200), 20))
	require.NoError(t, st.Jail(owner, id, 25))
	_, err = st.Withdraw(bob, id, 1, 200)
	require.NoError(t, err)

	total, err := st.TotalStake()
	require.NoError(t, err)
	slashed, err := st.TotalSlashed()
	require.NoError(t, err)
	escrowed, err := pool.Escrowed()
	require.NoError(t, err)

	sum := new(uint256.Int).Add(total, slashed)
	assert.Equal(t, escrowed, sum)
}

func TestDefaultParamsScale(t *testing.T) {
	params := DefaultParams()
	expected, err := uint256.FromDecimal("3175000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, expected, params.MinSelfStake)
	assert.Equal(t, uint64(604800), params.UnstakePeriod)
}
