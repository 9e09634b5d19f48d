// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cache provides the log of all state accesses of a single
// execution.
package cache

import (
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const ErrInconsistentRead = common.ConstError("inconsistent read")

// Value is an optional StorageValue. The absent value denotes a key not
// present in the state, or a key deleted by a write.
type Value struct {
	value   common.StorageValue
	present bool
}

// Some creates a present value.
func Some(value common.StorageValue) Value {
	return Value{value: value, present: true}
}

// None returns the absent value.
func None() Value {
	return Value{}
}

// Get returns the wrapped value and whether it is present.
func (v Value) Get() (common.StorageValue, bool) {
	return v.value, v.present
}

func (v Value) IsPresent() bool {
	return v.present
}

func (v Value) String() string {
	if !v.present {
		return "None"
	}
	return v.value.String()
}

type entry struct {
	read     Value
	hasRead  bool
	write    Value
	hasWrite bool
}

// Entry is a key together with the value read or written.
type Entry struct {
	Key   common.StorageKey
	Value Value
}

// Log records, per key, the first value read from the backing storage and
// the last value written during an execution. Reads of a key served from the
// log never change the recorded first read, and writes never touch it.
//
// A Log is not safe for concurrent use.
type Log struct {
	entries map[common.StorageKey]*entry
}

func NewLog() *Log {
	return &Log{entries: map[common.StorageKey]*entry{}}
}

// GetValue returns the value currently visible for the key: the last write
// if there is one, otherwise the first read. The boolean result is false if
// the key has neither been read nor written.
func (l *Log) GetValue(key common.StorageKey) (Value, bool) {
	cur, found := l.entries[key]
	switch {
	case !found:
		return Value{}, false
	case cur.hasWrite:
		return cur.write, true
	case cur.hasRead:
		return cur.read, true
	}
	return Value{}, false
}

// AddRead records the value read from the backing storage for the key. If a
// read is already recorded it must be equal to the given value, otherwise
// ErrInconsistentRead is returned and the log is left unchanged.
func (l *Log) AddRead(key common.StorageKey, value Value) error {
	cur := l.getOrCreate(key)
	if cur.hasRead {
		if cur.read != value {
			return fmt.Errorf("%w: key %v was read as %v, now %v", ErrInconsistentRead, key, cur.read, value)
		}
		return nil
	}
	cur.read, cur.hasRead = value, true
	return nil
}

// AddWrite records the value written for the key, replacing any previous
// write. The previous write is returned to allow undoing the operation.
func (l *Log) AddWrite(key common.StorageKey, value Value) (previous Value, hadWrite bool) {
	cur := l.getOrCreate(key)
	previous, hadWrite = cur.write, cur.hasWrite
	cur.write, cur.hasWrite = value, true
	return previous, hadWrite
}

// UndoWrite restores the write state of a key as returned by AddWrite.
func (l *Log) UndoWrite(key common.StorageKey, previous Value, hadWrite bool) {
	cur := l.getOrCreate(key)
	cur.write, cur.hasWrite = previous, hadWrite
	if !cur.hasRead && !cur.hasWrite {
		delete(l.entries, key)
	}
}

func (l *Log) getOrCreate(key common.StorageKey) *entry {
	cur, found := l.entries[key]
	if !found {
		cur = &entry{}
		l.entries[key] = cur
	}
	return cur
}

// Split returns the recorded first reads and last writes, each sorted by key.
func (l *Log) Split() (reads, writes []Entry) {
	keys := maps.Keys(l.entries)
	slices.SortFunc(keys, func(a, b common.StorageKey) int { return a.Compare(b) })
	for _, key := range keys {
		cur := l.entries[key]
		if cur.hasRead {
			reads = append(reads, Entry{Key: key, Value: cur.read})
		}
		if cur.hasWrite {
			writes = append(writes, Entry{Key: key, Value: cur.write})
		}
	}
	return reads, writes
}

// Len returns the number of keys accessed.
func (l *Log) Len() int {
	return len(l.entries)
}

// Equal reports whether both logs recorded the same reads and writes.
func (l *Log) Equal(other *Log) bool {
	return maps.EqualFunc(l.entries, other.entries, func(a, b *entry) bool {
		return *a == *b
	})
}
