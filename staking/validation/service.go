// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/reverts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/stakes"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
)

var (
	slotValidations  = storage.NameToSlot("validations")
	slotAddressIndex = storage.NameToSlot("validations-address-index")
	slotLastID       = storage.NameToSlot("validations-last-id")
)

// Service owns validator identity, lifecycle status and aggregate stake
// counters.
type Service struct {
	validations  *storage.Mapping[ID, *Validation]
	addressIndex *storage.Mapping[common.Address, ID]
	lastID       *storage.Uint64
}

func New(store *storage.Store) *Service {
	return &Service{
		validations:  storage.NewMapping[ID, *Validation](store, slotValidations),
		addressIndex: storage.NewMapping[common.Address, ID](store, slotAddressIndex),
		lastID:       storage.NewUint64(store, slotLastID),
	}
}

// Register allocates the next sequential ID for auth and creates the
// validator entry. IDs are never reused or reassigned.
func (s *Service) Register(auth common.Address, now uint64) (ID, error) {
	existing, err := s.LookupID(auth)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		return 0, reverts.ErrAlreadyRegistered
	}

	last, err := s.lastID.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get validator counter")
	}
	id := ID(last + 1)
	s.lastID.Set(uint64(id))

	entry := &Validation{
		Auth:          auth,
		Status:        StatusSet{StatusCreated},
		ReceivedStake: uint256.NewInt(0),
		CreatedAt:     now,
	}
	if err := s.validations.Set(id, entry); err != nil {
		return 0, errors.Wrap(err, "failed to set validator")
	}
	if err := s.addressIndex.Set(auth, id); err != nil {
		return 0, errors.Wrap(err, "failed to index validator address")
	}
	return id, nil
}

// Get returns the validator entry, which is empty if the ID is unknown.
func (s *Service) Get(id ID) (*Validation, error) {
	v, err := s.validations.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	if v.ReceivedStake == nil {
		v.ReceivedStake = uint256.NewInt(0)
	}
	return v, nil
}

// GetExisting returns the validator entry, failing if the ID is unknown.
func (s *Service) GetExisting(id ID) (*Validation, error) {
	v, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if v.IsEmpty() {
		return nil, reverts.ErrUnknownValidator
	}
	return v, nil
}

// Exists returns true iff the ID names a registered validator.
func (s *Service) Exists(id ID) (bool, error) {
	v, err := s.Get(id)
	if err != nil {
		return false, err
	}
	return !v.IsEmpty(), nil
}

// LookupID returns the validator ID controlled by auth, 0 if none.
func (s *Service) LookupID(auth common.Address) (ID, error) {
	id, err := s.addressIndex.Get(auth)
	if err != nil {
		return 0, errors.Wrap(err, "failed to look up validator address")
	}
	return id, nil
}

// LastID returns the most recently allocated validator ID.
func (s *Service) LastID() (ID, error) {
	last, err := s.lastID.Get()
	return ID(last), err
}

// Deactivate marks the validator withdrawn and records the deactivation
// time. The transition is one-way; there is no reactivation path.
func (s *Service) Deactivate(id ID, now uint64) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if !v.IsActive() {
		return reverts.ErrAlreadyInactive
	}
	v.Status.Add(StatusWithdrawn)
	v.DeactivatedAt = now
	return s.setValidation(id, v)
}

// AddStatus adds a lifecycle flag to the validator.
func (s *Service) AddStatus(id ID, status Status) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	v.Status.Add(status)
	return s.setValidation(id, v)
}

// RemoveStatus removes a lifecycle flag from the validator.
func (s *Service) RemoveStatus(id ID, status Status) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	v.Status.Remove(status)
	return s.setValidation(id, v)
}

// AddStake increases the validator's received stake.
func (s *Service) AddStake(id ID, amount *uint256.Int) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if v.ReceivedStake, err = stakes.Add(v.ReceivedStake, amount); err != nil {
		return err
	}
	return s.setValidation(id, v)
}

// SubStake decreases the validator's received stake.
func (s *Service) SubStake(id ID, amount *uint256.Int) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if amount.Gt(v.ReceivedStake) {
		return reverts.ErrInsufficientStake
	}
	if v.ReceivedStake, err = stakes.Sub(v.ReceivedStake, amount); err != nil {
		return err
	}
	return s.setValidation(id, v)
}

func (s *Service) setValidation(id ID, v *Validation) error {
	if err := s.validations.Set(id, v); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}
