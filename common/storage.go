// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"

	"github.com/LukaszRozmej/sovereign/common/immutable"
)

// KeyAlignment is the boundary prefixes are padded to when they are
// concatenated with an encoded key. Padding keeps the layout of the encoded
// key independent of the length of the prefix in front of it.
const KeyAlignment = 4

// StorageKey is the immutable address of a single entry in the state. It is
// built from a container prefix followed by the canonical encoding of the
// key within that container. StorageKeys are comparable and can be used as
// map keys; copies share their backing memory.
type StorageKey struct {
	key immutable.Bytes
}

// NewStorageKey concatenates the aligned prefix and the encoded key.
func NewStorageKey(prefix Prefix, encodedKey []byte) StorageKey {
	return StorageKey{immutable.Concat(prefix.Aligned(), encodedKey)}
}

// StorageKeyFromBytes wraps raw key bytes, e.g. recovered from a preimage
// table or provided by an operator.
func StorageKeyFromBytes(key []byte) StorageKey {
	return StorageKey{immutable.NewBytes(key)}
}

// Bytes returns a copy of the key's content.
func (k StorageKey) Bytes() []byte {
	return k.key.ToBytes()
}

func (k StorageKey) Len() int {
	return k.key.Len()
}

func (k StorageKey) Compare(other StorageKey) int {
	return k.key.Compare(other.key)
}

// HashWith computes the index of this key in the state tree.
func (k StorageKey) HashWith(hasher Hasher) Hash {
	return hasher.Hash(k.key.ToBytes())
}

func (k StorageKey) String() string {
	return k.key.String()
}

// StorageValue is an immutable, encoded state value. Updating a value always
// creates a new StorageValue; existing instances are never modified.
type StorageValue struct {
	value immutable.Bytes
}

func NewStorageValue(value []byte) StorageValue {
	return StorageValue{immutable.NewBytes(value)}
}

// Bytes returns a copy of the value's content.
func (v StorageValue) Bytes() []byte {
	return v.value.ToBytes()
}

func (v StorageValue) Len() int {
	return v.value.Len()
}

func (v StorageValue) String() string {
	return v.value.String()
}

// Prefix is the namespace of a state container. Keys of distinct
// containers never overlap as long as their prefixes do not.
type Prefix struct {
	prefix immutable.Bytes
}

// NewPrefix wraps raw prefix bytes.
func NewPrefix(prefix []byte) Prefix {
	return Prefix{immutable.NewBytes(prefix)}
}

// NewStoragePrefix derives the prefix of a container stored in the given
// field of a module type, e.g. "bank/Bank/balances/".
func NewStoragePrefix(modulePath, typeName, field string) (Prefix, error) {
	return joinPrefix(modulePath, typeName, field)
}

// NewModulePrefix derives the prefix shared by all containers of a module,
// e.g. "bank/Bank/".
func NewModulePrefix(modulePath, typeName string) (Prefix, error) {
	return joinPrefix(modulePath, typeName)
}

func joinPrefix(components ...string) (Prefix, error) {
	size := 0
	for _, c := range components {
		if err := checkPrefixComponent(c); err != nil {
			return Prefix{}, err
		}
		size += len(c) + 1
	}
	res := make([]byte, 0, size)
	for _, c := range components {
		res = append(res, c...)
		res = append(res, '/')
	}
	return NewPrefix(res), nil
}

func checkPrefixComponent(component string) error {
	if len(component) == 0 {
		return fmt.Errorf("%w: empty component", ErrInvalidPrefix)
	}
	for i := 0; i < len(component); i++ {
		if component[i] == '/' || component[i] == 0 {
			return fmt.Errorf("%w: component %q contains a separator", ErrInvalidPrefix, component)
		}
	}
	return nil
}

// Bytes returns a copy of the unpadded prefix.
func (p Prefix) Bytes() []byte {
	return p.prefix.ToBytes()
}

func (p Prefix) Len() int {
	return p.prefix.Len()
}

// Aligned returns the prefix zero-padded to a multiple of KeyAlignment.
func (p Prefix) Aligned() []byte {
	size := p.prefix.Len()
	if rem := size % KeyAlignment; rem != 0 {
		size += KeyAlignment - rem
	}
	res := make([]byte, size)
	copy(res, p.prefix.ToBytes())
	return res
}

// Overlaps reports whether one of the prefixes is a byte-prefix of the other.
func (p Prefix) Overlaps(other Prefix) bool {
	return p.prefix.HasPrefix(other.prefix) || other.prefix.HasPrefix(p.prefix)
}

func (p Prefix) String() string {
	return string(p.prefix.ToBytes())
}
