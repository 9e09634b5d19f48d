// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"errors"
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/witness"
	"github.com/LukaszRozmej/sovereign/state/cache"
)

// WorkingSet is the view of the state of a single execution. All reads and
// writes are buffered in a cache.Log; the backing storage is consulted at
// most once per key. Freezing the working set yields the log and the
// witness to be committed.
//
// Errors of the backing storage are not reported by the accessors. Like
// the StateDB of an EVM, a working set collects them and reports them on
// Check and Freeze; values returned after an error are to be considered
// invalid. A WorkingSet is not safe for concurrent use.
type WorkingSet struct {
	storage Storage
	log     *cache.Log
	witness witness.Witness
	frozen  bool

	// A list of operations undoing writes if a snapshot revert needs to be performed.
	undo []func()

	// A list of errors encountered during storage interactions.
	errors []error
}

// NewWorkingSet creates a working set recording into a fresh witness.
func NewWorkingSet(storage Storage) *WorkingSet {
	return NewWorkingSetWithWitness(storage, witness.NewArrayWitness())
}

// NewWorkingSetWithWitness creates a working set using the given witness,
// which is replaying if the storage is.
func NewWorkingSetWithWitness(storage Storage, w witness.Witness) *WorkingSet {
	return &WorkingSet{
		storage: storage,
		log:     cache.NewLog(),
		witness: w,
		undo:    make([]func(), 0, 16),
	}
}

func (s *WorkingSet) checkNotFrozen() {
	if s.frozen {
		panic("working set used after it was frozen")
	}
}

// Get returns the value of the key as visible to this execution.
func (s *WorkingSet) Get(key common.StorageKey) (common.StorageValue, bool) {
	s.checkNotFrozen()
	if value, found := s.log.GetValue(key); found {
		return value.Get()
	}
	value, found, err := s.storage.Get(key, s.witness)
	if err != nil {
		s.errors = append(s.errors, fmt.Errorf("failed to read key %v: %w", key, err))
		return common.StorageValue{}, false
	}
	read := cache.None()
	if found {
		read = cache.Some(value)
	}
	if err := s.log.AddRead(key, read); err != nil {
		s.errors = append(s.errors, err)
	}
	return value, found
}

// Set assigns a value to the key.
func (s *WorkingSet) Set(key common.StorageKey, value common.StorageValue) {
	s.write(key, cache.Some(value))
}

// Delete removes the key without reading its previous value.
func (s *WorkingSet) Delete(key common.StorageKey) {
	s.write(key, cache.None())
}

// Remove removes the key and returns the value visible before.
func (s *WorkingSet) Remove(key common.StorageKey) (common.StorageValue, bool) {
	value, found := s.Get(key)
	s.Delete(key)
	return value, found
}

func (s *WorkingSet) write(key common.StorageKey, value cache.Value) {
	s.checkNotFrozen()
	previous, hadWrite := s.log.AddWrite(key, value)
	s.undo = append(s.undo, func() {
		s.log.UndoWrite(key, previous, hadWrite)
	})
}

// Snapshot returns an identifier of the current state of the writes.
func (s *WorkingSet) Snapshot() int {
	s.checkNotFrozen()
	return len(s.undo)
}

// RevertToSnapshot undoes all writes since the given snapshot. Reads are
// kept, since the witness already contains them.
func (s *WorkingSet) RevertToSnapshot(id int) {
	s.checkNotFrozen()
	if id < 0 || len(s.undo) < id {
		s.errors = append(s.errors, fmt.Errorf("failed to revert to invalid snapshot id %d, allowed range 0 - %d", id, len(s.undo)))
		return
	}
	for len(s.undo) > id {
		s.undo[len(s.undo)-1]()
		s.undo = s.undo[:len(s.undo)-1]
	}
}

// Check reports all errors encountered so far. If an error is reported, all
// results since the last successful check need to be considered invalid.
func (s *WorkingSet) Check() error {
	return errors.Join(s.errors...)
}

// Witness returns the witness of this execution.
func (s *WorkingSet) Witness() witness.Witness {
	return s.witness
}

// Freeze ends the execution and returns its log and witness. The working
// set must not be used afterwards. If errors were encountered, they are
// reported instead.
func (s *WorkingSet) Freeze() (*cache.Log, witness.Witness, error) {
	s.checkNotFrozen()
	s.frozen = true
	s.undo = nil
	if err := s.Check(); err != nil {
		return nil, nil, err
	}
	return s.log, s.witness, nil
}
