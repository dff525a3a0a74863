// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokenpool

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/lvldb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var holder = common.BytesToAddress([]byte("holder"))

func newTestPool(t *testing.T) (*Pool, *storage.Store) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewStore(db)
	return New(store), store
}

func TestCreditAndTransfer(t *testing.T) {
	pool, _ := newTestPool(t)

	require.NoError(t, pool.Credit(holder, uint256.NewInt(100)))
	balance, err := pool.BalanceAvailable(holder)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), balance)

	require.NoError(t, pool.TransferIn(holder, uint256.NewInt(60)))
	balance, err = pool.BalanceAvailable(holder)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(40), balance)
	escrowed, err := pool.Escrowed()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(60), escrowed)

	require.NoError(t, pool.TransferOut(holder, uint256.NewInt(60)))
	balance, err = pool.BalanceAvailable(holder)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), balance)
	escrowed, err = pool.Escrowed()
	require.NoError(t, err)
	assert.True(t, escrowed.IsZero())
}

func TestTransferLimits(t *testing.T) {
	pool, _ := newTestPool(t)
	require.NoError(t, pool.Credit(holder, uint256.NewInt(10)))

	assert.ErrorIs(t, pool.TransferIn(holder, uint256.NewInt(11)), reverts.ErrAllowanceTooLow)
	assert.ErrorIs(t, pool.TransferOut(holder, uint256.NewInt(1)), reverts.ErrInsufficientRewardPool)
}

func TestRevertUndoesTransfers(t *testing.T) {
	pool, store := newTestPool(t)
	require.NoError(t, pool.Credit(holder, uint256.NewInt(100)))
	require.NoError(t, store.Commit())

	cp := store.NewCheckpoint()
	require.NoError(t, pool.TransferIn(holder, uint256.NewInt(100)))
	store.RevertTo(cp)

	balance, err := pool.BalanceAvailable(holder)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), balance)
	escrowed, err := pool.Escrowed()
	require.NoError(t, err)
	assert.True(t, escrowed.IsZero())
}
