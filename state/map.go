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
	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/codec"
)

// StateMap is a typed mapping whose entries are stored under the
// concatenation of its prefix and the encoded key.
type StateMap[K any, V any] struct {
	prefix     common.Prefix
	keyCodec   codec.Codec[K]
	valueCodec codec.Codec[V]
}

// NewStateMap creates a map stored under the given prefix.
func NewStateMap[K any, V any](prefix common.Prefix, keyCodec codec.Codec[K], valueCodec codec.Codec[V]) StateMap[K, V] {
	return StateMap[K, V]{
		prefix:     prefix,
		keyCodec:   keyCodec,
		valueCodec: valueCodec,
	}
}

func (m StateMap[K, V]) Prefix() common.Prefix {
	return m.prefix
}

// StorageKey returns the key under which the entry of the given key is stored.
func (m StateMap[K, V]) StorageKey(key K) common.StorageKey {
	return common.NewStorageKey(m.prefix, m.keyCodec.Encode(key))
}

// Set stores the value of the given key.
func (m StateMap[K, V]) Set(key K, value V, ws *WorkingSet) {
	ws.Set(m.StorageKey(key), common.NewStorageValue(m.valueCodec.Encode(value)))
}

// Get returns the value of the given key, if present.
func (m StateMap[K, V]) Get(key K, ws *WorkingSet) (V, bool, error) {
	return decodeValue(m.StorageKey(key), m.valueCodec, ws)
}

// GetOrErr is like Get but reports an absent entry as ErrMissingValue.
func (m StateMap[K, V]) GetOrErr(key K, ws *WorkingSet) (V, error) {
	value, found, err := m.Get(key, ws)
	if err != nil {
		return value, err
	}
	if !found {
		return value, m.missing(key)
	}
	return value, nil
}

// Remove deletes the entry of the given key and returns its previous value.
func (m StateMap[K, V]) Remove(key K, ws *WorkingSet) (V, bool, error) {
	storageKey := m.StorageKey(key)
	value, found, err := decodeValue(storageKey, m.valueCodec, ws)
	ws.Delete(storageKey)
	return value, found, err
}

// RemoveOrErr is like Remove but reports an absent entry as ErrMissingValue.
func (m StateMap[K, V]) RemoveOrErr(key K, ws *WorkingSet) (V, error) {
	value, found, err := m.Remove(key, ws)
	if err != nil {
		return value, err
	}
	if !found {
		return value, m.missing(key)
	}
	return value, nil
}

// Delete removes the entry of the given key without reading it.
func (m StateMap[K, V]) Delete(key K, ws *WorkingSet) {
	ws.Delete(m.StorageKey(key))
}

func (m StateMap[K, V]) missing(key K) error {
	return &MissingValueError{Prefix: m.prefix, Key: m.keyCodec.Encode(key)}
}
