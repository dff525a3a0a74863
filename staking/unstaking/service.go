// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package unstaking owns the time-locked withdrawal requests. Request IDs
// are chosen by the caller and must be unused for the (staker, validator)
// pair; a closed request is fully erased, which makes its ID reusable.
package unstaking

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var slotRequests = storage.NameToSlot("unstaking-requests")

// Request is a pending, time-locked intent to withdraw staked value.
type Request struct {
	Amount      *uint256.Int
	RequestedAt uint64
}

// IsEmpty returns whether the entry can be treated as empty.
func (r *Request) IsEmpty() bool {
	return r.Amount == nil || r.Amount.IsZero()
}

// Withdrawable reports whether the lock has expired at time now.
// The lock counts from the request time, or from the validator's earlier
// deactivation time if it deactivated before the lock would naturally
// expire: a deactivated validator can no longer usefully hold the stake.
func (r *Request) Withdrawable(deactivatedAt, unstakePeriod, now uint64) bool {
	if r.IsEmpty() {
		return false
	}
	reference := r.RequestedAt
	if deactivatedAt != 0 && deactivatedAt < reference {
		reference = deactivatedAt
	}
	return now >= reference+unstakePeriod
}

// key addresses one (staker, validator, requestID) entry.
type key struct {
	staker    common.Address
	id        validation.ID
	requestID uint64
}

func (k key) Bytes() []byte {
	b := append(k.staker.Bytes(), k.id.Bytes()...)
	rid := make([]byte, 8)
	binary.BigEndian.PutUint64(rid, k.requestID)
	return append(b, rid...)
}

// Service owns the withdrawal request table.
type Service struct {
	requests *storage.Mapping[key, *Request]
}

func New(store *storage.Store) *Service {
	return &Service{
		requests: storage.NewMapping[key, *Request](store, slotRequests),
	}
}

// Get returns the request, which is empty if it does not exist.
func (s *Service) Get(staker common.Address, id validation.ID, requestID uint64) (*Request, error) {
	req, err := s.requests.Get(key{staker, id, requestID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unstaking request")
	}
	return req, nil
}

// Open records a new request at the caller-chosen ID.
func (s *Service) Open(staker common.Address, id validation.ID, requestID uint64, amount *uint256.Int, now uint64) error {
	existing, err := s.Get(staker, id, requestID)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return reverts.ErrDuplicateRequest
	}
	if amount.IsZero() {
		return reverts.ErrZeroAmount
	}
	entry := &Request{Amount: amount, RequestedAt: now}
	if err := s.requests.Set(key{staker, id, requestID}, entry); err != nil {
		return errors.Wrap(err, "failed to set unstaking request")
	}
	return nil
}

// Close erases the request and returns its amount for the caller to
// disburse. Withdrawability is checked by the caller beforehand.
func (s *Service) Close(staker common.Address, id validation.ID, requestID uint64) (*uint256.Int, error) {
	req, err := s.Get(staker, id, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, reverts.ErrUnknownRequest
	}
	s.requests.Delete(key{staker, id, requestID})
	return req.Amount, nil
}
