// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accounts exposes token pool balances, plus an on-demand faucet
// for solo deployments.
package accounts

import (
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/restutil"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/tokenpool"
)

// Accounts serves pool balance reads. When a faucet grant is configured it
// also credits callers on demand, which is only meant for dev deployments.
type Accounts struct {
	pool   *tokenpool.Pool
	store  *storage.Store
	faucet *uint256.Int
	mu     *sync.RWMutex
}

func New(pool *tokenpool.Pool, store *storage.Store, faucet *uint256.Int, lock *sync.RWMutex) *Accounts {
	return &Accounts{
		pool:   pool,
		store:  store,
		faucet: faucet,
		mu:     lock,
	}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	balance, err := a.pool.BalanceAvailable(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"balance": balance.Dec()})
}

func (a *Accounts) handlePostFaucet(w http.ResponseWriter, req *http.Request) error {
	if a.faucet == nil || a.faucet.IsZero() {
		return restutil.Forbidden(errors.New("faucet disabled"))
	}
	addr, err := parseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.pool.Credit(addr, a.faucet); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return err
	}
	balance, err := a.pool.BalanceAvailable(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"granted": a.faucet.Dec(),
		"balance": balance.Dec(),
	})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/faucet").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(a.handlePostFaucet))
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, restutil.BadRequest(errors.New("address: invalid"))
	}
	return common.HexToAddress(raw), nil
}
