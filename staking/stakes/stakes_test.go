// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
)

var maxUint256 = new(uint256.Int).Sub(uint256.NewInt(0), uint256.NewInt(1))

func TestAdd(t *testing.T) {
	sum, err := Add(uint256.NewInt(1), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3), sum)

	_, err = Add(maxUint256, uint256.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
}

func TestSub(t *testing.T) {
	diff, err := Sub(uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1), diff)

	_, err = Sub(uint256.NewInt(2), uint256.NewInt(3))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
}

func TestMul(t *testing.T) {
	product, err := Mul(uint256.NewInt(6), uint256.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42), product)

	_, err = Mul(maxUint256, uint256.NewInt(2))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
}

func TestMulDiv(t *testing.T) {
	// (10 * Precision) / Precision round-trips
	v, err := MulDiv(uint256.NewInt(10), Precision, Precision)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), v)

	// truncates toward zero
	v, err = MulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), v)

	_, err = MulDiv(uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(0))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)

	_, err = MulDiv(maxUint256, uint256.NewInt(2), uint256.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
}

func TestInputsNotMutated(t *testing.T) {
	a := uint256.NewInt(5)
	b := uint256.NewInt(7)
	_, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(5), a)
	assert.Equal(t, uint256.NewInt(7), b)
}
