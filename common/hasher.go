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
	"hash"
	"sync"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hasher computes the digests used to address keys and to commit to tree
// nodes. Implementations must be safe for concurrent use.
type Hasher interface {
	// Hash computes the digest of the concatenation of the given slices.
	Hash(data ...[]byte) Hash
	// Name is the identifier used in configurations.
	Name() string
}

const (
	Sha256Name    = "sha256"
	Keccak256Name = "keccak256"
	Blake2bName   = "blake2b"

	ErrUnknownHasher = ConstError("unknown hasher")
)

var (
	Sha256    Hasher = newPooledHasher(Sha256Name, sha256.New)
	Keccak256 Hasher = newPooledHasher(Keccak256Name, sha3.NewLegacyKeccak256)
	Blake2b   Hasher = newPooledHasher(Blake2bName, func() hash.Hash {
		h, _ := blake2b.New256(nil) // only fails for oversized keys
		return h
	})
)

// GetHasher resolves a hasher by its configuration name. The empty name
// selects the default SHA-256 hasher.
func GetHasher(name string) (Hasher, error) {
	switch name {
	case "", Sha256Name:
		return Sha256, nil
	case Keccak256Name:
		return Keccak256, nil
	case Blake2bName:
		return Blake2b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
}

// pooledHasher reuses hash.Hash instances across calls, since creating a
// fresh one per node dominates the cost of hashing small inputs.
type pooledHasher struct {
	name string
	pool sync.Pool
}

func newPooledHasher(name string, factory func() hash.Hash) *pooledHasher {
	return &pooledHasher{
		name: name,
		pool: sync.Pool{New: func() any { return factory() }},
	}
}

func (h *pooledHasher) Hash(data ...[]byte) Hash {
	hasher := h.pool.Get().(hash.Hash)
	hasher.Reset()
	for _, cur := range data {
		hasher.Write(cur)
	}
	var res Hash
	hasher.Sum(res[:0])
	h.pool.Put(hasher)
	return res
}

func (h *pooledHasher) Name() string {
	return h.name
}
