// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/lvldb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/tokenpool"
)

var (
	owner = common.BytesToAddress([]byte("owner"))
	alice = common.BytesToAddress([]byte("alice"))
	bob   = common.BytesToAddress([]byte("bob"))
)

type fixedOwner struct{}

func (fixedOwner) CurrentOwner() (common.Address, error) { return owner, nil }

func newTestServer(t *testing.T) (*httptest.Server, *Stakers) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewStore(db)
	pool := tokenpool.New(store)
	for _, addr := range []common.Address{alice, bob} {
		require.NoError(t, pool.Credit(addr, uint256.NewInt(1_000_000)))
	}
	require.NoError(t, store.Commit())

	params := &staking.Params{
		MinSelfStake:      uint256.NewInt(1000),
		MaxDelegatedRatio: new(uint256.Int).Mul(uint256.NewInt(16), stakes.Precision),
		UnstakePeriod:     100,
	}
	ledger := staking.New(store, pool, fixedOwner{}, params)

	module := New(ledger, new(sync.RWMutex))
	var clock uint64 = 1000
	module.now = func() uint64 { clock += 10; return clock }

	router := mux.NewRouter()
	module.Mount(router, "/stakers")
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, module
}

func postJSON(t *testing.T, url string, body any) (int, map[string]any) {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return res.StatusCode, decoded
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return res.StatusCode, decoded
}

func TestValidatorEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := postJSON(t, srv.URL+"/stakers", &CreateValidatorRequest{Auth: alice, Stake: "1000"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["id"])

	status, body = getJSON(t, srv.URL+"/stakers/1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1000", body["receivedStake"])
	assert.Equal(t, true, body["active"])

	status, _ = getJSON(t, srv.URL+"/stakers/9")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = getJSON(t, srv.URL+"/stakers/notanumber")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStakeEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	status, _ := postJSON(t, srv.URL+"/stakers", &CreateValidatorRequest{Auth: alice, Stake: "1000"})
	require.Equal(t, http.StatusOK, status)

	status, body := postJSON(t, srv.URL+"/stakers/1/stake", &StakeRequest{Staker: bob, Amount: "500"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "500", body["staked"])

	status, body = getJSON(t, srv.URL+fmt.Sprintf("/stakers/1/delegations/%s", bob.Hex()))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "500", body["balance"])

	// business rejections surface as http conflicts
	status, _ = postJSON(t, srv.URL+"/stakers/1/stake", &StakeRequest{Staker: bob, Amount: "99999999"})
	assert.Equal(t, http.StatusConflict, status)

	// malformed amounts never reach the ledger
	status, _ = postJSON(t, srv.URL+"/stakers/1/stake", &StakeRequest{Staker: bob, Amount: "12x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnstakeWithdrawFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	status, _ := postJSON(t, srv.URL+"/stakers", &CreateValidatorRequest{Auth: alice, Stake: "1000"})
	require.Equal(t, http.StatusOK, status)
	status, _ = postJSON(t, srv.URL+"/stakers/1/stake", &StakeRequest{Staker: bob, Amount: "500"})
	require.Equal(t, http.StatusOK, status)

	status, body := postJSON(t, srv.URL+"/stakers/1/unstake", &UnstakeRequest{Staker: bob, RequestID: 1, Amount: "500"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["requestId"])

	status, body = getJSON(t, srv.URL+fmt.Sprintf("/stakers/1/requests/%s/1", bob.Hex()))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "500", body["amount"])
	assert.Equal(t, false, body["withdrawable"])

	// the clock advances 10s per call, the lock is 100s
	status, _ = postJSON(t, srv.URL+"/stakers/1/withdraw", &WithdrawRequest{Staker: bob, RequestID: 1})
	assert.Equal(t, http.StatusConflict, status)

	for i := 0; i < 10; i++ {
		_, _ = getJSON(t, srv.URL+"/stakers/stats") // reads do not advance ledger time
	}
	var withdrawn map[string]any
	for i := 0; i < 12; i++ {
		status, withdrawn = postJSON(t, srv.URL+"/stakers/1/withdraw", &WithdrawRequest{Staker: bob, RequestID: 1})
		if status == http.StatusOK {
			break
		}
	}
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "500", withdrawn["withdrawn"])
}

func TestAdminEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	status, _ := postJSON(t, srv.URL+"/stakers", &CreateValidatorRequest{Auth: alice, Stake: "1000"})
	require.Equal(t, http.StatusOK, status)

	// only the owner may jail
	status, _ = postJSON(t, srv.URL+"/stakers/1/jail", &AdminRequest{Caller: alice})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = postJSON(t, srv.URL+"/stakers/1/jail", &AdminRequest{Caller: owner})
	require.Equal(t, http.StatusOK, status)

	status, body := getJSON(t, srv.URL+"/stakers/1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["jailed"])

	status, _ = postJSON(t, srv.URL+"/stakers/rate", &AdminRequest{Caller: owner, Rate: "10"})
	require.Equal(t, http.StatusOK, status)

	status, body = getJSON(t, srv.URL+"/stakers/stats")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10", body["rewardRate"])
	assert.Equal(t, "1000", body["totalStake"])
}

// Reads hold the store lock shared while writes hold it exclusively, so
// hammering both concurrently must neither race nor expose mid-operation
// journal state.
func TestConcurrentReadsAndWrites(t *testing.T) {
	srv, _ := newTestServer(t)

	status, _ := postJSON(t, srv.URL+"/stakers", &CreateValidatorRequest{Auth: alice, Stake: "10000"})
	require.Equal(t, http.StatusOK, status)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				status, _ := postJSON(t, srv.URL+"/stakers/1/stake", &StakeRequest{Staker: bob, Amount: "1"})
				assert.Equal(t, http.StatusOK, status)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				status, _ := getJSON(t, srv.URL+"/stakers/stats")
				assert.Equal(t, http.StatusOK, status)
				status, _ = getJSON(t, srv.URL+"/stakers/1")
				assert.Equal(t, http.StatusOK, status)
			}
		}()
	}
	wg.Wait()

	status, body := getJSON(t, srv.URL+"/stakers/stats")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10100", body["totalStake"])
}
