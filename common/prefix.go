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
	"sync"
)

const (
	ErrInvalidPrefix   = ConstError("invalid prefix")
	ErrPrefixCollision = ConstError("prefix collision")
)

// PrefixRegistry tracks the prefixes handed out to state containers and
// rejects any registration that could make two containers share keys.
// Registration is expected to happen once at startup; a collision is a
// configuration error of the module layout.
type PrefixRegistry struct {
	mutex    sync.Mutex
	prefixes []Prefix
}

func NewPrefixRegistry() *PrefixRegistry {
	return &PrefixRegistry{}
}

// Register adds the given prefix. It fails with ErrPrefixCollision if the
// prefix equals or overlaps with a previously registered one.
func (r *PrefixRegistry) Register(prefix Prefix) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, cur := range r.prefixes {
		if cur.Overlaps(prefix) {
			return fmt.Errorf("%w: %q overlaps %q", ErrPrefixCollision, prefix, cur)
		}
	}
	r.prefixes = append(r.prefixes, prefix)
	return nil
}

// RegisterStorage derives and registers the prefix of a container field.
func (r *PrefixRegistry) RegisterStorage(modulePath, typeName, field string) (Prefix, error) {
	prefix, err := NewStoragePrefix(modulePath, typeName, field)
	if err != nil {
		return Prefix{}, err
	}
	return prefix, r.Register(prefix)
}

// Len returns the number of registered prefixes.
func (r *PrefixRegistry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.prefixes)
}
