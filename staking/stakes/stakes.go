// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes provides overflow-checked fixed-point arithmetic for stake
// and reward amounts. All values are non-negative 256-bit integers; every
// multiply-then-divide is ordered (a*b)/c so repeated divisions do not
// collapse small deltas to zero.
package stakes

import (
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
)

// Precision is the fixed-point scale shared by the reward accumulator and
// the delegation ratio limit.
var Precision = uint256.NewInt(1_000_000_000_000_000_000) // 1e18

// Add returns a+b, failing instead of wrapping on overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing instead of wrapping on underflow.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	return diff, nil
}

// Mul returns a*b, failing instead of wrapping on overflow.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	return product, nil
}

// MulDiv returns (a*b)/c. The product is computed before the division to
// preserve precision; overflow of the intermediate product fails rather
// than wraps. A zero divisor is rejected as an arithmetic fault.
func MulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, reverts.ErrArithmeticOverflow
	}
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow
	}
	return product.Div(product, c), nil
}
