// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority keeps the owner account allowed to call administrative
// staking operations.
package authority

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var slotOwner = storage.NameToSlot("authority-owner")

// Authority answers who the current owner is.
type Authority struct {
	store *storage.Store
}

func New(store *storage.Store) *Authority {
	return &Authority{store: store}
}

// CurrentOwner returns the owner account.
func (a *Authority) CurrentOwner() (common.Address, error) {
	raw, err := a.store.Get(slotOwner)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return common.BytesToAddress(raw), nil
}

// Transfer hands ownership to a new account. Only the current owner may
// call it, except for the very first assignment.
func (a *Authority) Transfer(caller, newOwner common.Address) error {
	owner, err := a.CurrentOwner()
	if err != nil {
		return err
	}
	if owner != (common.Address{}) && caller != owner {
		return reverts.ErrAccessDenied
	}
	a.store.Set(slotOwner, newOwner.Bytes())
	return nil
}
