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

// StateValue is a single typed value stored under a fixed prefix.
type StateValue[V any] struct {
	prefix common.Prefix
	codec  codec.Codec[V]
}

// NewStateValue creates a value container stored under the given prefix.
func NewStateValue[V any](prefix common.Prefix, codec codec.Codec[V]) StateValue[V] {
	return StateValue[V]{prefix: prefix, codec: codec}
}

func (v StateValue[V]) Prefix() common.Prefix {
	return v.prefix
}

func (v StateValue[V]) key() common.StorageKey {
	return common.NewStorageKey(v.prefix, nil)
}

// Set stores the value.
func (v StateValue[V]) Set(value V, ws *WorkingSet) {
	ws.Set(v.key(), common.NewStorageValue(v.codec.Encode(value)))
}

// Get returns the stored value, if present. A value the codec can not
// decode is reported as an error.
func (v StateValue[V]) Get(ws *WorkingSet) (V, bool, error) {
	return decodeValue(v.key(), v.codec, ws)
}

// GetOrErr is like Get but reports an absent value as ErrMissingValue.
func (v StateValue[V]) GetOrErr(ws *WorkingSet) (V, error) {
	value, found, err := v.Get(ws)
	if err != nil {
		return value, err
	}
	if !found {
		return value, &MissingValueError{Prefix: v.prefix}
	}
	return value, nil
}

// Remove deletes the value and returns the one stored before.
func (v StateValue[V]) Remove(ws *WorkingSet) (V, bool, error) {
	value, found, err := v.Get(ws)
	ws.Delete(v.key())
	return value, found, err
}

// RemoveOrErr is like Remove but reports an absent value as ErrMissingValue.
func (v StateValue[V]) RemoveOrErr(ws *WorkingSet) (V, error) {
	value, found, err := v.Remove(ws)
	if err != nil {
		return value, err
	}
	if !found {
		return value, &MissingValueError{Prefix: v.prefix}
	}
	return value, nil
}

// Delete removes the value without reading it.
func (v StateValue[V]) Delete(ws *WorkingSet) {
	ws.Delete(v.key())
}

func decodeValue[V any](key common.StorageKey, codec codec.Codec[V], ws *WorkingSet) (V, bool, error) {
	var res V
	raw, found := ws.Get(key)
	if !found {
		return res, false, nil
	}
	res, err := codec.Decode(raw.Bytes())
	if err != nil {
		return res, false, &DecodeError{Key: key, Cause: err}
	}
	return res, true, nil
}
