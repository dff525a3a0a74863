// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

// NameToSlot derives the root slot for a named piece of storage.
func NameToSlot(name string) common.Hash {
	return common.BytesToHash([]byte(name))
}

// Blake2b computes the blake2b-256 hash of the concatenation of data.
// Used to derive mapping entry positions from their keys.
func Blake2b(data ...[]byte) common.Hash {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, d := range data {
		hasher.Write(d)
	}
	return common.BytesToHash(hasher.Sum(nil))
}
