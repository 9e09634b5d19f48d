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
	"bytes"
	"fmt"
)

// HashSize is the number of bytes of a Hash.
const HashSize = 32

// Hash is the 32-byte digest used for tree nodes, key hashes and roots.
type Hash [HashSize]byte

// ZeroHash is the hash of an empty subtree and the root of an empty tree.
var ZeroHash Hash

// HashFromBytes converts the given slice into a hash. The slice must be
// exactly HashSize bytes long.
func HashFromBytes(data []byte) (Hash, error) {
	var res Hash
	if len(data) != HashSize {
		return res, fmt.Errorf("invalid hash length %d, expected %d", len(data), HashSize)
	}
	copy(res[:], data)
	return res, nil
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Compare orders hashes by their big-endian byte representation.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// Bit returns the i-th bit of the hash counting from the most significant
// bit of the first byte.
func (h Hash) Bit(i int) bool {
	return h[i/8]&(0x80>>(i%8)) != 0
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}
