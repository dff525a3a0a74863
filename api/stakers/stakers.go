// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakers exposes the staking ledger over REST.
package stakers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/restutil"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

// Stakers is the route module for the staking ledger. The ledger and its
// store are not goroutine safe, so mutating handlers hold the shared lock
// and read handlers hold it for reading. The lock is shared with every
// other module over the same store.
type Stakers struct {
	ledger *staking.Staking
	mu     *sync.RWMutex
	now    func() uint64
}

func New(ledger *staking.Staking, lock *sync.RWMutex) *Stakers {
	return &Stakers{
		ledger: ledger,
		mu:     lock,
		now:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

func (s *Stakers) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := s.ledger.GetValidator(id)
	if err != nil {
		return restutil.NotFound(err)
	}
	return restutil.WriteJSON(w, convertValidator(id, v))
}

func (s *Stakers) handleGetStats(w http.ResponseWriter, _ *http.Request) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total, err := s.ledger.TotalStake()
	if err != nil {
		return err
	}
	slashed, err := s.ledger.TotalSlashed()
	if err != nil {
		return err
	}
	rate, err := s.ledger.RewardRate()
	if err != nil {
		return err
	}
	lastID, err := s.ledger.LastValidatorID()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Stats{
		TotalStake:   total.Dec(),
		TotalSlashed: slashed.Dec(),
		RewardRate:   rate.Dec(),
		LastID:       uint64(lastID),
	})
}

func (s *Stakers) handleGetDelegation(w http.ResponseWriter, req *http.Request) error {
	id, staker, err := parsePair(req)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, err := s.ledger.DelegationBalance(staker, id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"balance": balance.Dec()})
}

func (s *Stakers) handleGetPendingReward(w http.ResponseWriter, req *http.Request) error {
	id, staker, err := parsePair(req)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	pending, err := s.ledger.PendingReward(staker, id, s.now())
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"pending": pending.Dec()})
}

func (s *Stakers) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	id, staker, err := parsePair(req)
	if err != nil {
		return err
	}
	requestID, err := strconv.ParseUint(mux.Vars(req)["requestId"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "requestId"))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.ledger.UnstakingRequest(staker, id, requestID)
	if err != nil {
		return err
	}
	if r.IsEmpty() {
		return restutil.NotFound(errors.New("request not found"))
	}
	v, err := s.ledger.GetValidator(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"amount":       r.Amount.Dec(),
		"requestedAt":  r.RequestedAt,
		"withdrawable": r.Withdrawable(v.DeactivatedAt, s.ledger.Params().UnstakePeriod, s.now()),
	})
}

func (s *Stakers) handlePostValidator(w http.ResponseWriter, req *http.Request) error {
	var body CreateValidatorRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	stake, err := parseAmount(body.Stake)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "stake"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.ledger.CreateValidator(body.Auth, stake, s.now())
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"id": uint64(id)})
}

func (s *Stakers) handlePostStake(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "amount"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Stake(body.Staker, id, amount, s.now()); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"staked": amount.Dec()})
}

func (s *Stakers) handlePostUnstake(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body UnstakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "amount"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Unstake(body.Staker, id, body.RequestID, amount, s.now()); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"requestId": body.RequestID})
}

func (s *Stakers) handlePostWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body WithdrawRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	amount, err := s.ledger.Withdraw(body.Staker, id, body.RequestID, s.now())
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"withdrawn": amount.Dec()})
}

func (s *Stakers) handlePostClaim(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body ClaimRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	amount, err := s.ledger.ClaimReward(body.Staker, id, s.now())
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"claimed": amount.Dec()})
}

func (s *Stakers) handlePostJail(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body AdminRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Jail(body.Caller, id, s.now()); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"jailed": uint64(id)})
}

func (s *Stakers) handlePostOnline(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body AdminRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Online == nil {
		return restutil.BadRequest(errors.New("online: missing"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.SetOnline(body.Caller, id, *body.Online, s.now()); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"online": *body.Online})
}

func (s *Stakers) handlePostSynced(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body AdminRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.MarkSynced(body.Caller, id, s.now()); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"synced": uint64(id)})
}

func (s *Stakers) handlePostRate(w http.ResponseWriter, req *http.Request) error {
	var body AdminRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	rate, err := parseAmount(body.Rate)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "rate"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.SetRewardRate(body.Caller, rate, s.now()); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"rate": rate.Dec()})
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stats").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStats))
	sub.Path("/rate").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostRate))
	sub.Path("").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostValidator))
	sub.Path("/{id}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetValidator))
	sub.Path("/{id}/stake").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostStake))
	sub.Path("/{id}/unstake").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostUnstake))
	sub.Path("/{id}/withdraw").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostWithdraw))
	sub.Path("/{id}/jail").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostJail))
	sub.Path("/{id}/online").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostOnline))
	sub.Path("/{id}/synced").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostSynced))
	sub.Path("/{id}/delegations/{staker}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetDelegation))
	sub.Path("/{id}/rewards/{staker}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPendingReward))
	sub.Path("/{id}/rewards/claim").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(s.handlePostClaim))
	sub.Path("/{id}/requests/{staker}/{requestId}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRequest))
}

func parseID(raw string) (validation.ID, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return validation.ID(id), nil
}

func parsePair(req *http.Request) (validation.ID, common.Address, error) {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return 0, common.Address{}, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	raw := mux.Vars(req)["staker"]
	if !common.IsHexAddress(raw) {
		return 0, common.Address{}, restutil.BadRequest(errors.New("staker: invalid address"))
	}
	return id, common.HexToAddress(raw), nil
}

func parseAmount(raw string) (*uint256.Int, error) {
	if raw == "" {
		return nil, errors.New("missing")
	}
	return uint256.FromDecimal(raw)
}
