// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/lvldb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/tokenpool"
)

var (
	owner    = common.BytesToAddress([]byte("owner"))
	reserve  = common.BytesToAddress([]byte("reserve"))
	alice    = common.BytesToAddress([]byte("alice"))
	bob      = common.BytesToAddress([]byte("bob"))
	carol    = common.BytesToAddress([]byte("carol"))
	minStake = uint256.NewInt(1000)
)

func M(a ...any) []any {
	return a
}

type fixedOwner struct {
	addr common.Address
}

func (f fixedOwner) CurrentOwner() (common.Address, error) {
	return f.addr, nil
}

type weightLog struct {
	ids     []uint64
	weights []*uint256.Int
}

func (l *weightLog) ValidatorWeightChanged(id validation.ID, weight *uint256.Int) {
	l.ids = append(l.ids, uint64(id))
	l.weights = append(l.weights, weight)
}

func testParams() *Params {
	return &Params{
		MinSelfStake:      minStake,
		MaxDelegatedRatio: new(uint256.Int).Mul(uint256.NewInt(16), stakes.Precision),
		UnstakePeriod:     100,
		RewardReserve:     reserve,
	}
}

func newTestStaking(t *testing.T) (*Staking, *tokenpool.Pool) {
	return newTestStakingWithParams(t, testParams())
}

func newTestStakingWithParams(t *testing.T, params *Params) (*Staking, *tokenpool.Pool) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewStore(db)
	pool := tokenpool.New(store)
	for _, addr := range []common.Address{alice, bob, carol, reserve} {
		require.NoError(t, pool.Credit(addr, uint256.NewInt(1_000_000)))
	}
	require.NoError(t, store.Commit())

	return New(store, pool, fixedOwner{owner}, params), pool
}
