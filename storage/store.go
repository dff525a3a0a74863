// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/kv"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/stackedmap"
)

// Store is a slot-addressed storage with snapshot-revert support.
// All writes go into an in-memory journal first; Commit flushes the journal
// into the underlying kv store in one batch. Reverting to a checkpoint
// discards every write made after the checkpoint was taken, which gives
// callers all-or-nothing semantics for multi-step operations.
type Store struct {
	db kv.GetPutter
	sm *stackedmap.StackedMap[common.Hash, []byte]
}

// slot entries live in their own key space, so other users of the same
// database cannot collide with slot keys
const slotsBucket = kv.Bucket("s/")

// NewStore creates a store over the given kv store.
func NewStore(db kv.GetPutter) *Store {
	db = slotsBucket.NewStore(db)
	sm := stackedmap.New(func(slot common.Hash) ([]byte, bool, error) {
		val, err := db.Get(slot.Bytes())
		if err != nil {
			if db.IsNotFound(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return val, true, nil
	})
	store := &Store{db: db, sm: sm}
	// base level collects writes until the next Commit
	store.sm.Push()
	return store
}

// Get returns the raw value stored at slot, or nil if the slot is unset.
func (s *Store) Get(slot common.Hash) ([]byte, error) {
	val, _, err := s.sm.Get(slot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read storage slot")
	}
	return val, nil
}

// Set writes the raw value at slot. A nil or empty value erases the slot.
func (s *Store) Set(slot common.Hash, value []byte) {
	s.sm.Put(slot, value)
}

// NewCheckpoint takes a checkpoint of the current journal state.
func (s *Store) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo discards all writes made after the given checkpoint.
func (s *Store) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit flushes the journal into the kv store in a single batch and
// resets the journal.
func (s *Store) Commit() error {
	batch := s.db.NewBatch()
	var batchErr error
	s.sm.Journal(func(slot common.Hash, value []byte) bool {
		if len(value) == 0 {
			batchErr = batch.Delete(slot.Bytes())
		} else {
			batchErr = batch.Put(slot.Bytes(), value)
		}
		return batchErr == nil
	})
	if batchErr != nil {
		return errors.Wrap(batchErr, "failed to stage storage journal")
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "failed to commit storage journal")
	}
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
