// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokenpool is an in-process token ledger escrowing staked assets.
// It shares the journaled store with the staking ledger, so a reverted
// staking operation also reverts any transfer it triggered.
package tokenpool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var (
	slotBalances = storage.NameToSlot("token-balances")
	slotEscrowed = storage.NameToSlot("token-escrowed")
)

type addrKey common.Address

func (k addrKey) Bytes() []byte {
	return common.Address(k).Bytes()
}

// Pool tracks free account balances and the escrowed total.
type Pool struct {
	balances *storage.Mapping[addrKey, *uint256.Int]
	escrowed *storage.Uint256
}

// New creates a pool over the given store.
func New(store *storage.Store) *Pool {
	return &Pool{
		balances: storage.NewMapping[addrKey, *uint256.Int](store, slotBalances),
		escrowed: storage.NewUint256(store, slotEscrowed),
	}
}

// BalanceAvailable returns the owner's free balance.
func (p *Pool) BalanceAvailable(owner common.Address) (*uint256.Int, error) {
	balance, err := p.balances.Get(addrKey(owner))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return balance, nil
}

// TransferIn moves amount from the owner's free balance into escrow.
func (p *Pool) TransferIn(owner common.Address, amount *uint256.Int) error {
	balance, err := p.BalanceAvailable(owner)
	if err != nil {
		return err
	}
	if amount.Gt(balance) {
		return reverts.ErrAllowanceTooLow
	}
	if balance, err = stakes.Sub(balance, amount); err != nil {
		return err
	}
	if err := p.setBalance(owner, balance); err != nil {
		return err
	}

	escrowed, err := p.escrowed.Get()
	if err != nil {
		return err
	}
	if escrowed, err = stakes.Add(escrowed, amount); err != nil {
		return err
	}
	p.escrowed.Set(escrowed)
	return nil
}

// TransferOut moves amount from escrow back to the recipient's free balance.
func (p *Pool) TransferOut(recipient common.Address, amount *uint256.Int) error {
	escrowed, err := p.escrowed.Get()
	if err != nil {
		return err
	}
	if amount.Gt(escrowed) {
		return reverts.ErrInsufficientRewardPool
	}
	if escrowed, err = stakes.Sub(escrowed, amount); err != nil {
		return err
	}
	p.escrowed.Set(escrowed)

	balance, err := p.BalanceAvailable(recipient)
	if err != nil {
		return err
	}
	if balance, err = stakes.Add(balance, amount); err != nil {
		return err
	}
	return p.setBalance(recipient, balance)
}

// Escrowed returns the total currently held by the pool.
func (p *Pool) Escrowed() (*uint256.Int, error) {
	return p.escrowed.Get()
}

// Credit adds amount to the owner's free balance. It is how bridged
// deposits and the reward reserve are funded.
func (p *Pool) Credit(owner common.Address, amount *uint256.Int) error {
	balance, err := p.BalanceAvailable(owner)
	if err != nil {
		return err
	}
	if balance, err = stakes.Add(balance, amount); err != nil {
		return err
	}
	return p.setBalance(owner, balance)
}

func (p *Pool) setBalance(owner common.Address, balance *uint256.Int) error {
	if balance.IsZero() {
		p.balances.Delete(addrKey(owner))
		return nil
	}
	if err := p.balances.Set(addrKey(owner), balance); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}
